package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const lookupBody = `{
	"resultCount": 3,
	"results": [
		{
			"wrapperType": "collection",
			"collectionId": 401186200,
			"collectionName": "Abbey Road",
			"artistName": "The Beatles",
			"artworkUrl100": "https://example.com/art/100x100bb.jpg",
			"releaseDate": "1969-09-26T07:00:00Z",
			"primaryGenreName": "Rock",
			"collectionViewUrl": "https://example.com/album/401186200",
			"trackCount": 17
		},
		{
			"wrapperType": "track",
			"trackId": 1,
			"trackName": "Come Together",
			"trackNumber": 1,
			"trackTimeMillis": 259946
		},
		{
			"wrapperType": "track",
			"trackId": 2,
			"trackName": "Something",
			"trackNumber": 2,
			"trackTimeMillis": 182293
		}
	]
}`

func TestLookupByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "401186200" {
			t.Errorf("unexpected id %s", got)
		}
		if got := r.URL.Query().Get("entity"); got != "song" {
			t.Errorf("unexpected entity %s", got)
		}
		w.Write([]byte(lookupBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	rec, err := client.LookupByID(context.Background(), "401186200")
	if err != nil {
		t.Fatalf("LookupByID failed: %v", err)
	}

	if rec.ID != "401186200" {
		t.Errorf("ID = %q, want 401186200", rec.ID)
	}
	if rec.Name != "Abbey Road" {
		t.Errorf("Name = %q, want Abbey Road", rec.Name)
	}
	if rec.ReleaseDate.Year() != 1969 {
		t.Errorf("ReleaseDate year = %d, want 1969", rec.ReleaseDate.Year())
	}
	if rec.ArtworkURL != "https://example.com/art/1200x1200bb.jpg" {
		t.Errorf("artwork not upscaled: %q", rec.ArtworkURL)
	}
	if len(rec.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(rec.Tracks))
	}
	if rec.Tracks[0].Name != "Come Together" || rec.Tracks[0].TrackNumber != 1 {
		t.Errorf("unexpected first track %+v", rec.Tracks[0])
	}
}

func TestLookupByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCount": 0, "results": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.LookupByID(context.Background(), "999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCount": 0, "results": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	records, err := client.Search(context.Background(), "does not exist", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Search(context.Background(), "anything", 5)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestSearchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"resultCount": 0, "results": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 20*time.Millisecond)
	_, err := client.Search(context.Background(), "slow", 5)
	if !errors.Is(err, ErrGatewayTimeout) {
		t.Errorf("expected ErrGatewayTimeout, got %v", err)
	}
}

func TestRecordValid(t *testing.T) {
	testCases := []struct {
		name     string
		record   Record
		expected bool
	}{
		{"complete", Record{ID: "1", Genre: "Rock"}, true},
		{"missing id", Record{Genre: "Rock"}, false},
		{"karaoke", Record{ID: "1", Genre: "Karaoke"}, false},
		{"fitness", Record{ID: "1", Genre: "Fitness & Workout"}, false},
		{"spoken word", Record{ID: "1", Genre: "Spoken Word"}, false},
	}

	for _, tc := range testCases {
		if got := tc.record.Valid(); got != tc.expected {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.expected)
		}
	}
}
