package audit

import (
	"fmt"
	"testing"
	"time"

	"icuwatch/internal/model"
)

func event(i int, ts time.Time) model.TransitionEvent {
	return model.TransitionEvent{
		ID:        fmt.Sprintf("ev-%d", i),
		PatientID: "30000025",
		Previous:  model.StatusNormal,
		New:       model.StatusRapidIncrease,
		Timestamp: ts,
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore(3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Record(event(i, base.Add(time.Duration(i)*time.Minute)))
	}
	got := s.List(0)
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i, ev := range got {
		want := fmt.Sprintf("ev-%d", i+2)
		if ev.ID != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, ev.ID)
		}
	}
}

func TestStoreListLimit(t *testing.T) {
	s := NewStore(10)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		s.Record(event(i, base.Add(time.Duration(i)*time.Minute)))
	}
	got := s.List(2)
	if len(got) != 2 || got[0].ID != "ev-4" || got[1].ID != "ev-5" {
		t.Fatalf("expected the two newest events, got %v", got)
	}
}

func TestStoreSince(t *testing.T) {
	s := NewStore(10)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.Record(event(i, base.Add(time.Duration(i)*time.Minute)))
	}
	got := s.Since(base.Add(2 * time.Minute))
	if len(got) != 2 || got[0].ID != "ev-2" {
		t.Fatalf("expected events at or after cutoff, got %v", got)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore(5)
	s.Record(event(0, time.Now().UTC()))
	s.Clear()
	if got := s.List(0); len(got) != 0 {
		t.Fatalf("expected empty store after clear, got %d events", len(got))
	}
}
