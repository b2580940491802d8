package monitor

import "testing"

func TestSeriesAppendWithinCapacity(t *testing.T) {
	s := NewSeries[int](5)
	for i := 1; i <= 3; i++ {
		s.Append(i)
	}
	if s.Len() != 3 {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
	for i := 0; i < 3; i++ {
		if s.At(i) != i+1 {
			t.Fatalf("expected %d at index %d, got %d", i+1, i, s.At(i))
		}
	}
}

func TestSeriesEvictsOldest(t *testing.T) {
	s := NewSeries[int](3)
	for i := 1; i <= 4; i++ {
		s.Append(i)
	}
	if s.Len() != 3 {
		t.Fatalf("expected len 3 after overflow, got %d", s.Len())
	}
	got := s.Points()
	want := []int{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSeriesManyAppendsKeepMostRecent(t *testing.T) {
	s := NewSeries[int](10)
	for i := 0; i < 1000; i++ {
		s.Append(i)
	}
	if s.Len() != 10 {
		t.Fatalf("expected len 10, got %d", s.Len())
	}
	points := s.Points()
	for i, v := range points {
		if v != 990+i {
			t.Fatalf("expected %d at index %d, got %d", 990+i, i, v)
		}
	}
	last, ok := s.Last()
	if !ok || last != 999 {
		t.Fatalf("expected last 999, got %d ok=%v", last, ok)
	}
}

func TestSeriesEmpty(t *testing.T) {
	s := NewSeries[int](4)
	if s.Len() != 0 {
		t.Fatalf("expected empty series")
	}
	if _, ok := s.Last(); ok {
		t.Fatalf("expected no last element")
	}
	if pts := s.Points(); len(pts) != 0 {
		t.Fatalf("expected no points, got %v", pts)
	}
}
