package films

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// failingStore fails every upsert of the titles in fail.
type failingStore struct {
	Store
	fail map[string]bool
}

var errDiskFull = errors.New("disk full")

func (s failingStore) Upsert(ctx context.Context, film Film) error {
	if s.fail[film.Title] {
		return errDiskFull
	}
	return s.Store.Upsert(ctx, film)
}

func TestReconcileLastDuplicateWins(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	report := Reconcile(context.Background(), store, []Film{
		{Title: "Moana", Year: "2016", WorldwideGross: 600000000},
		frozen2,
		{Title: "Moana", Year: "2016", WorldwideGross: 687229620},
	})
	require.Equal(t, 3, report.Upserted)
	require.Equal(t, 1, report.Duplicates)
	require.Empty(t, report.Failed)

	films, err := store.FindAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Film{frozen2, moana}, films)
}

func TestReconcileContinuesPastFailures(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	report := Reconcile(context.Background(), failingStore{
		Store: store,
		fail:  map[string]bool{"Frozen": true},
	}, []Film{frozen2, frozen, moana})

	require.Equal(t, 2, report.Upserted)
	require.Len(t, report.Failed, 1)
	require.Equal(t, "Frozen", report.Failed[0].Title)
	require.ErrorIs(t, report.Failed[0], errDiskFull)

	films, err := store.FindAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Film{frozen2, moana}, films)
}

func TestReconcileEmptyBatch(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	report := Reconcile(context.Background(), store, nil)
	require.Equal(t, ReconcileReport{}, report)
}
