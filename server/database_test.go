package main

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	if v := db.GetSetting("missing"); v != "" {
		t.Errorf("missing setting = %q", v)
	}
	if err := db.SetSetting("k", "one"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetSetting("k", "two"); err != nil {
		t.Fatal(err)
	}
	if v := db.GetSetting("k"); v != "two" {
		t.Errorf("setting = %q, want two", v)
	}
}

func TestAnalyticsPersistsSectorEvents(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)

	s := NewSector("belt", "Belt", 1, a)
	spawnCollision(t, s)
	s.update()
	a.Stop()
	// Stop is idempotent
	a.Stop()

	counts, err := a.EventCounts("belt")
	if err != nil {
		t.Fatal(err)
	}
	if counts[EvtSpawn] != 3 || counts[EvtDestroy] != 1 {
		t.Errorf("counts = %v, want 3 spawns and 1 destroy", counts)
	}

	rows, err := db.RecentEvents("belt", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID < rows[1].ID {
		t.Error("events should be newest first")
	}
	if rows[0].SectorID != "belt" || rows[0].Data == "" || rows[0].EntityID == 0 {
		t.Errorf("row = %+v", rows[0])
	}

	if other, _ := db.RecentEvents("elsewhere", 10); len(other) != 0 {
		t.Error("events should be scoped by sector")
	}
	if a.Dropped() != 0 {
		t.Errorf("dropped = %d", a.Dropped())
	}
}

func TestAnalyticsDropsWhenFull(t *testing.T) {
	a := &Analytics{events: make(chan AnalyticsEvent, 1), stop: make(chan struct{})}
	a.Track(EvtSpawn, 1, "s", "")
	a.Track(EvtSpawn, 2, "s", "")
	a.Track(EvtSpawn, 3, "s", "")
	if a.Dropped() != 2 {
		t.Errorf("dropped = %d, want 2", a.Dropped())
	}
}

func TestAnalyticsWithoutDB(t *testing.T) {
	a := NewAnalytics(nil)
	a.Track(EvtSpawn, 1, "s", "")
	a.Stop()
	counts, err := a.EventCounts("s")
	if err != nil || counts != nil {
		t.Errorf("EventCounts without db = %v, %v", counts, err)
	}
}
