package testsupport

import (
	"testing"

	"udalist/internal/config"
	"udalist/internal/history"
)

// MustOpenHistory opens the history store configured in cfg and registers
// cleanup with the test.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("history.Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
