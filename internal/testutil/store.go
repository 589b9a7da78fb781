package testutil

import (
	"testing"

	"github.com/HerbHall/lankaportal/internal/store"
)

// NewStore opens an in-memory SQLite store that is closed when t finishes.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("testutil.NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
