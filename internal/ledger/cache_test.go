package ledger

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadOnce(t *testing.T) {
	ctx := context.Background()
	path := writeLedgerCSV(t, ledgerHeader+"A-1,Seaview,15/03/2024,100000,2,,,,,\n")
	store := NewStore(NewLoader(slog.Default()))

	first, err := store.Load(ctx, path)
	require.NoError(t, err)

	second, err := store.Load(ctx, path)
	require.NoError(t, err)

	// Same snapshot, not a re-parse.
	assert.Same(t, first, second)
	assert.Equal(t, first.Version, second.Version)
}

func TestStore_ConcurrentLoadSharesSnapshot(t *testing.T) {
	ctx := context.Background()
	path := writeLedgerCSV(t, ledgerHeader+"A-1,Seaview,15/03/2024,100000,2,,,,,\n")
	store := NewStore(NewLoader(slog.Default()))

	const callers = 16
	results := make([]*Dataset, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			ds, err := store.Load(ctx, path)
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestStore_FailedLoadIsNotCached(t *testing.T) {
	ctx := context.Background()
	path := writeLedgerCSV(t, ledgerHeader+"A-1,Seaview,not a date,100000,2,,,,,\n")
	store := NewStore(NewLoader(slog.Default()))

	_, err := store.Load(ctx, path)
	require.Error(t, err)

	// Fix the file and retry on the same path.
	require.NoError(t, os.WriteFile(path, []byte(ledgerHeader+"A-1,Seaview,15/03/2024,100000,2,,,,,\n"), 0644))

	ds, err := store.Load(ctx, path)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
}

func TestStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	path := writeLedgerCSV(t, ledgerHeader+"A-1,Seaview,15/03/2024,100000,2,,,,,\n")
	store := NewStore(NewLoader(slog.Default()))

	first, err := store.Load(ctx, path)
	require.NoError(t, err)

	store.Invalidate(path)
	_, ok := store.Cached(path)
	assert.False(t, ok)

	second, err := store.Load(ctx, path)
	require.NoError(t, err)
	assert.NotEqual(t, first.Version, second.Version)
}
