package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "salesdash/internal/errors"
	"salesdash/internal/ledger"
	"salesdash/internal/services"
)

// dateLayout is the query-string date format for filter bounds.
const dateLayout = "2006-01-02"

// DashboardHandler handles dashboard rollup requests with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dashboard routes with proper chi patterns
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/options", h.GetOptions)
	r.Get("/timeline", h.GetTimeline)
	r.Get("/projects", h.GetProjects)
	r.Get("/bedrooms", h.GetBedrooms)
	r.Get("/map", h.GetMap)

	return r
}

// filterQuery is the bound and validated query-string filter.
type filterQuery struct {
	Start    string `validate:"omitempty,datetime=2006-01-02"`
	End      string `validate:"omitempty,datetime=2006-01-02"`
	PriceMin string `validate:"omitempty,numeric"`
	PriceMax string `validate:"omitempty,numeric"`
	Project  string
	Bedrooms string
}

// bindFilter parses the shared filter query parameters into a FilterSpec.
func (h *DashboardHandler) bindFilter(r *http.Request) (ledger.FilterSpec, error) {
	q := r.URL.Query()
	fq := filterQuery{
		Start:    q.Get("start"),
		End:      q.Get("end"),
		PriceMin: q.Get("price_min"),
		PriceMax: q.Get("price_max"),
		Project:  q.Get("project"),
		Bedrooms: q.Get("bedrooms"),
	}

	if err := h.validate.Struct(fq); err != nil {
		var fields []apierrors.ValidationError
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				fields = append(fields, apierrors.ValidationError{
					Field:   queryParamName(ve.Field()),
					Message: fmt.Sprintf("invalid value for %s", queryParamName(ve.Field())),
				})
			}
			return ledger.FilterSpec{}, apierrors.NewValidationErrors(fields)
		}
		return ledger.FilterSpec{}, apierrors.InvalidRequestWithError(err)
	}

	var spec ledger.FilterSpec

	if fq.Start != "" {
		t, _ := time.Parse(dateLayout, fq.Start)
		spec.Start = &t
	}
	if fq.End != "" {
		t, _ := time.Parse(dateLayout, fq.End)
		spec.End = &t
	}
	if spec.Start != nil && spec.End != nil && spec.End.Before(*spec.Start) {
		return ledger.FilterSpec{}, apierrors.ErrValidation("end", "end date must not precede start date")
	}

	if fq.PriceMin != "" {
		v, err := strconv.ParseFloat(fq.PriceMin, 64)
		if err != nil || v < 0 {
			return ledger.FilterSpec{}, apierrors.ErrValidation("price_min", "must be a non-negative number")
		}
		spec.PriceMin = &v
	}
	if fq.PriceMax != "" {
		v, err := strconv.ParseFloat(fq.PriceMax, 64)
		if err != nil || v < 0 {
			return ledger.FilterSpec{}, apierrors.ErrValidation("price_max", "must be a non-negative number")
		}
		spec.PriceMax = &v
	}
	if spec.PriceMin != nil && spec.PriceMax != nil && *spec.PriceMax < *spec.PriceMin {
		return ledger.FilterSpec{}, apierrors.ErrValidation("price_max", "price_max must not be below price_min")
	}

	if fq.Project != "" {
		spec.Project = &fq.Project
	}
	if fq.Bedrooms != "" {
		spec.Bedrooms = &fq.Bedrooms
	}

	return spec, nil
}

// queryParamName maps struct field names back to their query parameters.
func queryParamName(field string) string {
	switch field {
	case "Start":
		return "start"
	case "End":
		return "end"
	case "PriceMin":
		return "price_min"
	case "PriceMax":
		return "price_max"
	case "Project":
		return "project"
	case "Bedrooms":
		return "bedrooms"
	}
	return field
}

// renderRollup writes the standard success envelope around a rollup.
func renderRollup(w http.ResponseWriter, r *http.Request, data interface{}, m services.Meta) {
	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"data":     data,
		"count":    m.Count,
		"filtered": m.Filtered,
		"empty":    m.Empty,
	})
}

// GetOptions handles GET /api/dashboard/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching filter options",
		slog.String("path", r.URL.Path))

	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   opts,
		"count":  opts.TotalUnits,
	})
}

// GetTimeline handles GET /api/dashboard/timeline
func (h *DashboardHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	spec, err := h.bindFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Timeline(r.Context(), spec)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	renderRollup(w, r, res.Buckets, res.Meta)
}

// GetProjects handles GET /api/dashboard/projects
func (h *DashboardHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	spec, err := h.bindFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Projects(r.Context(), spec)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	renderRollup(w, r, res.Projects, res.Meta)
}

// GetBedrooms handles GET /api/dashboard/bedrooms
func (h *DashboardHandler) GetBedrooms(w http.ResponseWriter, r *http.Request) {
	spec, err := h.bindFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Bedrooms(r.Context(), spec)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	renderRollup(w, r, res.Bedrooms, res.Meta)
}

// GetMap handles GET /api/dashboard/map
func (h *DashboardHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	spec, err := h.bindFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Map(r.Context(), spec)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	renderRollup(w, r, res.Points, res.Meta)
}
