package discovery

import (
	"fmt"
	"testing"
)

func TestSessionMemoryRememberAndSeen(t *testing.T) {
	s := NewSessionMemory()

	if s.Seen("1", "Abbey Road") {
		t.Error("fresh session must not have seen anything")
	}

	s.Remember("1", "Abbey Road")

	if !s.Seen("1", "") {
		t.Error("expected id to be seen")
	}
	if !s.Seen("", "ABBEY ROAD") {
		t.Error("title check must be normalization-insensitive")
	}
	if s.Seen("2", "Revolver") {
		t.Error("unseen entry reported as seen")
	}
}

func TestSessionMemoryReset(t *testing.T) {
	s := NewSessionMemory()
	s.Remember("1", "Abbey Road")
	s.Reset()

	if s.Seen("1", "Abbey Road") {
		t.Error("reset must clear the session")
	}
	if s.Len() != 0 {
		t.Errorf("Len after reset = %d, want 0", s.Len())
	}
}

func TestSessionMemoryRecentTitles(t *testing.T) {
	s := NewSessionMemory()
	for i := 0; i < 5; i++ {
		s.Remember(fmt.Sprintf("%d", i), fmt.Sprintf("Album %d", i))
	}

	recent := s.RecentTitles(3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 recent titles, got %d", len(recent))
	}
	if recent[0] != "Album 2" || recent[2] != "Album 4" {
		t.Errorf("unexpected recent window %v", recent)
	}

	all := s.RecentTitles(100)
	if len(all) != 5 {
		t.Errorf("expected all 5 titles, got %d", len(all))
	}
	if got := s.RecentTitles(0); got != nil {
		t.Errorf("zero cap should return nil, got %v", got)
	}
}

func TestSessionMemoryDuplicateTitles(t *testing.T) {
	s := NewSessionMemory()
	s.Remember("1", "Abbey Road")
	s.Remember("1", "abbey road")

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1 for normalized duplicates", s.Len())
	}
	if got := len(s.RecentTitles(10)); got != 1 {
		t.Errorf("recent titles = %d entries, want 1", got)
	}
}
