package schedule

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

func TestStoreLoadTemplateReturnsDefaultWhenMissing(t *testing.T) {
	store := newTestStore(t)

	tmpl, err := store.LoadTemplate(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if tmpl.Version != "1.0.0" {
		t.Fatalf("expected default template, got version %s", tmpl.Version)
	}
	mon, ok := tmpl.Day(Monday)
	if !ok || !mon.Working {
		t.Fatal("default template should have a working Monday")
	}
}

func TestStoreSaveAndLoadTemplate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tmpl := DefaultTemplate()
	tmpl, err := tmpl.AddException(Exception{
		Date: "2025-12-25", Type: ExceptionHoliday, Reason: "Christmas",
	}, "alice")
	if err != nil {
		t.Fatalf("AddException: %v", err)
	}

	if err := store.SaveTemplate(ctx, "res-1", tmpl); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}

	loaded, err := store.LoadTemplate(ctx, "res-1")
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if loaded.Version != tmpl.Version {
		t.Errorf("version mismatch: got %s want %s", loaded.Version, tmpl.Version)
	}
	if len(loaded.Exceptions) != 1 || loaded.Exceptions[0].Reason != "Christmas" {
		t.Errorf("exception not round-tripped: %+v", loaded.Exceptions)
	}

	// Templates are stored per resource.
	other, err := store.LoadTemplate(ctx, "res-2")
	if err != nil {
		t.Fatalf("LoadTemplate res-2: %v", err)
	}
	if len(other.Exceptions) != 0 {
		t.Error("res-2 should get the default template")
	}
}

func TestStoreOverride(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	missing, err := store.LoadOverride(ctx, "res-1", "loc-2")
	if err != nil {
		t.Fatalf("LoadOverride: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil override when none stored")
	}

	override := BranchOverride{
		LocationID: "loc-2",
		Days: map[Weekday]DaySchedule{
			Monday: {Weekday: Monday, Working: true, Blocks: []TimeBlock{{Start: "12:00", End: "20:00"}}},
		},
	}
	if err := store.SaveOverride(ctx, "res-1", override); err != nil {
		t.Fatalf("SaveOverride: %v", err)
	}

	loaded, err := store.LoadOverride(ctx, "res-1", "loc-2")
	if err != nil {
		t.Fatalf("LoadOverride: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected override")
	}
	day, ok := loaded.Days[Monday]
	if !ok || day.Blocks[0].Start != "12:00" {
		t.Fatalf("override not round-tripped: %+v", loaded)
	}
}
