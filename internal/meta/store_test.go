package meta

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/termtap/termtap/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "meta.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Set(ctx, "dev-server", model.TaskBackground, "vite dev server"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	md, err := s.Get(ctx, "dev-server")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if md.SessionName != "dev-server" {
		t.Errorf("session_name: got %q, want %q", md.SessionName, "dev-server")
	}
	if md.TaskType != model.TaskBackground {
		t.Errorf("task_type: got %q, want %q", md.TaskType, model.TaskBackground)
	}
	if md.Description != "vite dev server" {
		t.Errorf("description: got %q", md.Description)
	}
	if md.CreatedAt.IsZero() || md.UpdatedAt.IsZero() {
		t.Error("timestamps must be set")
	}
}

func TestSet_RejectsInvalidTaskType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Set(ctx, "sess", model.TaskType("daemon"), ""); err == nil {
		t.Fatal("expected error for invalid task type")
	}

	// The rejection must leave no record behind.
	if _, err := s.Get(ctx, "sess"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound after rejected write", err)
	}
}

func TestSet_UpdatePreservesDescription(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Set(ctx, "sess", model.TaskOneshot, "build worker"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Changing only the task type must not erase the description.
	if err := s.Set(ctx, "sess", model.TaskWatcher, ""); err != nil {
		t.Fatalf("Set update: %v", err)
	}

	md, err := s.Get(ctx, "sess")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if md.TaskType != model.TaskWatcher {
		t.Errorf("task_type: got %q, want %q", md.TaskType, model.TaskWatcher)
	}
	if md.Description != "build worker" {
		t.Errorf("description erased: got %q", md.Description)
	}
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestSetLastMarker_CreatesDefaultRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// A session whose first contact is exec (no explicit metadata) gets a
	// default oneshot record carrying the marker.
	if err := s.SetLastMarker(ctx, "adhoc", "abc123", "/tmp/adhoc.log"); err != nil {
		t.Fatalf("SetLastMarker: %v", err)
	}

	md, err := s.Get(ctx, "adhoc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if md.TaskType != model.TaskOneshot {
		t.Errorf("task_type: got %q, want oneshot default", md.TaskType)
	}
	if md.LastMarker != "abc123" {
		t.Errorf("last_marker: got %q, want %q", md.LastMarker, "abc123")
	}
	if md.LogPath != "/tmp/adhoc.log" {
		t.Errorf("log_path: got %q", md.LogPath)
	}
}

func TestSetLastMarker_KeepsTaskType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Set(ctx, "server", model.TaskBackground, "api server"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.SetLastMarker(ctx, "server", "m1", "/tmp/server.log"); err != nil {
		t.Fatalf("SetLastMarker: %v", err)
	}

	md, err := s.Get(ctx, "server")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if md.TaskType != model.TaskBackground {
		t.Errorf("task_type overwritten: got %q, want background", md.TaskType)
	}
	if md.LastMarker != "m1" {
		t.Errorf("last_marker: got %q, want m1", md.LastMarker)
	}
}

func TestSetLastMarker_Overwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SetLastMarker(ctx, "sess", "first", "/tmp/s.log"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLastMarker(ctx, "sess", "second", "/tmp/s.log"); err != nil {
		t.Fatal(err)
	}

	md, err := s.Get(ctx, "sess")
	if err != nil {
		t.Fatal(err)
	}
	if md.LastMarker != "second" {
		t.Errorf("last_marker: got %q, want second", md.LastMarker)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Set(ctx, "sess", model.TaskOneshot, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "sess"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "sess"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound after delete", err)
	}

	// Deleting again is a no-op.
	if err := s.Delete(ctx, "sess"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestList_OrderedByName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.Set(ctx, name, model.TaskOneshot, ""); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].SessionName != want[i] {
			t.Errorf("record %d: got %q, want %q", i, got[i].SessionName, want[i])
		}
	}
}

func TestDefaultPath(t *testing.T) {
	got := DefaultPath("/home/u/.termtap/logs")
	want := "/home/u/.termtap/meta.db"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
