package discovery

import (
	"testing"

	"liquidshuffle/model"
)

func sampleAlbum() *model.Album {
	return &model.Album{
		ID:          "1",
		Name:        "Abbey Road",
		Artist:      "The Beatles",
		ReleaseYear: 1969,
		Genre:       "Rock",
	}
}

func TestMatchesNoFilters(t *testing.T) {
	if !Matches(sampleAlbum(), model.Filters{}) {
		t.Error("empty filters must match any album")
	}
}

func TestMatchesYear(t *testing.T) {
	if !Matches(sampleAlbum(), model.Filters{Year: "1969"}) {
		t.Error("expected match for year 1969")
	}
	if Matches(sampleAlbum(), model.Filters{Year: "1975"}) {
		t.Error("expected mismatch for year 1975")
	}
}

func TestMatchesDecade(t *testing.T) {
	testCases := []struct {
		decade   string
		expected bool
	}{
		{"1960s", true},
		{"1960", true},
		{"60s", true},
		{"1970s", false},
		{"garbage", false},
	}

	for _, tc := range testCases {
		if got := Matches(sampleAlbum(), model.Filters{Decade: tc.decade}); got != tc.expected {
			t.Errorf("decade %q: Matches = %v, want %v", tc.decade, got, tc.expected)
		}
	}
}

func TestMatchesGenre(t *testing.T) {
	if !Matches(sampleAlbum(), model.Filters{Genre: "rock"}) {
		t.Error("genre containment should be case-insensitive")
	}
	if Matches(sampleAlbum(), model.Filters{Genre: "Jazz"}) {
		t.Error("expected mismatch for Jazz")
	}
}

func TestMatchesArtistEitherDirection(t *testing.T) {
	if !Matches(sampleAlbum(), model.Filters{Artist: "Beatles"}) {
		t.Error("filter contained in album artist should match")
	}
	if !Matches(sampleAlbum(), model.Filters{Artist: "The Beatles Band"}) {
		t.Error("album artist contained in filter should match")
	}
	if Matches(sampleAlbum(), model.Filters{Artist: "Pink Floyd"}) {
		t.Error("expected mismatch for unrelated artist")
	}
}

func TestMatchesAllFieldsAnded(t *testing.T) {
	filters := model.Filters{Year: "1969", Genre: "Rock", Artist: "beatles"}
	if !Matches(sampleAlbum(), filters) {
		t.Error("expected all-field match")
	}
	filters.Year = "1970"
	if Matches(sampleAlbum(), filters) {
		t.Error("one failing field must fail the whole predicate")
	}
}

func TestMatchesMonthIgnored(t *testing.T) {
	if !Matches(sampleAlbum(), model.Filters{Month: "September"}) {
		t.Error("month carries no album counterpart and must not constrain")
	}
}
