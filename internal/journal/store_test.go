package journal

import (
	"path/filepath"
	"testing"

	"kernelgate/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "kernelgate.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	store, err := NewStore(gdb)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)

	if err := store.Record(KindStarted, 8888, "pid 4242"); err != nil {
		t.Fatalf("record started: %v", err)
	}
	if err := store.Record(KindReady, 8888, ""); err != nil {
		t.Fatalf("record ready: %v", err)
	}
	if err := store.Record(KindClosed, 8888, ""); err != nil {
		t.Fatalf("record closed: %v", err)
	}

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" {
			t.Fatalf("entry missing id: %+v", e)
		}
		if e.Port != 8888 {
			t.Fatalf("entry missing port: %+v", e)
		}
	}
}

func TestRecent_NewestFirstForBackToBackEvents(t *testing.T) {
	store := newTestStore(t)
	kinds := []string{KindStarted, KindReady, KindClosed}
	for _, k := range kinds {
		if err := store.Record(k, 8888, ""); err != nil {
			t.Fatalf("record %s: %v", k, err)
		}
	}

	entries, err := store.Recent(len(kinds))
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != len(kinds) {
		t.Fatalf("expected %d entries, got %d", len(kinds), len(entries))
	}
	for i, e := range entries {
		if want := kinds[len(kinds)-1-i]; e.Kind != want {
			t.Fatalf("entry %d: expected %s, got %s", i, want, e.Kind)
		}
	}
}

func TestRecent_LimitApplied(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		if err := store.Record(KindExited, 8888, "signal: killed"); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	entries, err := store.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit 2 applied, got %d", len(entries))
	}
}

func TestRecord_RejectsEmptyKind(t *testing.T) {
	store := newTestStore(t)
	if err := store.Record("  ", 8888, ""); err == nil {
		t.Fatalf("expected error for blank kind")
	}
}

func TestNewStore_RequiresDB(t *testing.T) {
	if _, err := NewStore(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
