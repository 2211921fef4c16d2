package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"liquidshuffle/cache"
	"liquidshuffle/core/catalog"
	"liquidshuffle/model"
)

func newTestEngine(gw *fakeGateway) *Engine {
	store := cache.NewMemoryStore()
	engine := NewEngine(NewHydrator(gw, store, 5), gw, store, NewSessionMemory(), 18)
	engine.randIntN = func(n int) int { return 0 }
	return engine
}

func beatlesPool() ([]model.LibraryEntry, *fakeGateway) {
	gw := &fakeGateway{lookups: map[string]catalog.Record{
		"1": {ID: "1", Name: "Abbey Road", Artist: "The Beatles", Genre: "Rock",
			ReleaseDate: time.Date(1969, 9, 26, 0, 0, 0, 0, time.UTC), TrackCount: 17},
		"2": {ID: "2", Name: "Revolver", Artist: "The Beatles", Genre: "Rock",
			ReleaseDate: time.Date(1966, 8, 5, 0, 0, 0, 0, time.UTC), TrackCount: 14},
		"3": {ID: "3", Name: "Rubber Soul", Artist: "The Beatles", Genre: "Rock",
			ReleaseDate: time.Date(1965, 12, 3, 0, 0, 0, 0, time.UTC), TrackCount: 14},
	}}
	pool := []model.LibraryEntry{
		{Title: "Abbey Road", Artist: "The Beatles", CatalogIDs: "1", Visible: true},
		{Title: "Revolver", Artist: "The Beatles", CatalogIDs: "2", Visible: true},
		{Title: "Rubber Soul", Artist: "The Beatles", CatalogIDs: "3", Visible: true},
	}
	return pool, gw
}

func TestPickRandomResolvesAndRemembers(t *testing.T) {
	pool := []model.LibraryEntry{
		{Title: "Abbey Road", Artist: "The Beatles", CatalogIDs: "1", Visible: true},
	}
	gw := &fakeGateway{lookups: map[string]catalog.Record{
		"1": {ID: "1", Name: "Abbey Road", Artist: "The Beatles", Genre: "Rock",
			ReleaseDate: time.Date(1969, 9, 26, 0, 0, 0, 0, time.UTC)},
	}}
	engine := newTestEngine(gw)

	album, err := engine.PickRandom(context.Background(), pool, model.Filters{})
	if err != nil {
		t.Fatalf("PickRandom failed: %v", err)
	}
	if album.Name != "Abbey Road" || album.Artist != "The Beatles" || album.ReleaseYear != 1969 {
		t.Errorf("unexpected album %+v", album)
	}
	if !engine.session.Seen("1", "") {
		t.Error("session memory must record the surfaced id")
	}
}

func TestPickRandomExhaustionAllowsRepeats(t *testing.T) {
	pool := []model.LibraryEntry{
		{Title: "Abbey Road", Artist: "The Beatles", CatalogIDs: "1", Visible: true},
	}
	gw := &fakeGateway{lookups: map[string]catalog.Record{
		"1": {ID: "1", Name: "Abbey Road", Artist: "The Beatles", Genre: "Rock",
			ReleaseDate: time.Date(1969, 9, 26, 0, 0, 0, 0, time.UTC)},
	}}
	engine := newTestEngine(gw)

	first, err := engine.PickRandom(context.Background(), pool, model.Filters{})
	if err != nil {
		t.Fatalf("first pick failed: %v", err)
	}

	// The only entry is now session-seen; the second pick must reset the
	// session and surface the same album again rather than dead-ending.
	second, err := engine.PickRandom(context.Background(), pool, model.Filters{})
	if err != nil {
		t.Fatalf("second pick failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same album after exhaustion reset, got %s then %s", first.ID, second.ID)
	}
}

func TestPickRandomAllDistinctBeforeRepeat(t *testing.T) {
	pool, gw := beatlesPool()
	engine := newTestEngine(gw)

	seen := make(map[string]bool)
	for i := 0; i < len(pool); i++ {
		album, err := engine.PickRandom(context.Background(), pool, model.Filters{})
		if err != nil {
			t.Fatalf("pick %d failed: %v", i, err)
		}
		if seen[album.ID] {
			t.Fatalf("album %s repeated before the pool was exhausted", album.ID)
		}
		seen[album.ID] = true
	}
	if len(seen) != len(pool) {
		t.Errorf("surfaced %d distinct albums, want %d", len(seen), len(pool))
	}
}

func TestPickRandomNoFilterMatch(t *testing.T) {
	pool := []model.LibraryEntry{
		{Title: "Abbey Road", Artist: "The Beatles", CatalogIDs: "1", Visible: true},
	}
	gw := &fakeGateway{lookups: map[string]catalog.Record{
		"1": {ID: "1", Name: "Abbey Road", Artist: "The Beatles", Genre: "Rock",
			ReleaseDate: time.Date(1969, 9, 26, 0, 0, 0, 0, time.UTC)},
	}}
	engine := newTestEngine(gw)

	_, err := engine.PickRandom(context.Background(), pool, model.Filters{Year: "1975"})
	if !errors.Is(err, ErrNoFilterMatch) {
		t.Errorf("expected ErrNoFilterMatch, got %v", err)
	}
}

func TestPickRandomExcludesFailingEntries(t *testing.T) {
	// Two entries resolve, one always fails hydration; the loop must skip
	// the broken one and still find a match.
	pool, gw := beatlesPool()
	pool = append([]model.LibraryEntry{
		{Title: "Ghost Record", CatalogIDs: "404", Visible: true},
	}, pool...)
	engine := newTestEngine(gw)

	album, err := engine.PickRandom(context.Background(), pool, model.Filters{})
	if err != nil {
		t.Fatalf("PickRandom failed: %v", err)
	}
	if album == nil || album.ID == "" {
		t.Error("expected a resolved album despite the broken entry")
	}
}

func TestPickRandomSkipsInvisibleEntries(t *testing.T) {
	pool := []model.LibraryEntry{
		{Title: "Hidden", CatalogIDs: "1", Visible: false},
	}
	gw := &fakeGateway{}
	engine := newTestEngine(gw)

	_, err := engine.PickRandom(context.Background(), pool, model.Filters{})
	if !errors.Is(err, ErrEmptyPool) {
		t.Errorf("expected ErrEmptyPool, got %v", err)
	}
}

func TestPickRandomArtistNarrowingDegradesGracefully(t *testing.T) {
	// The raw entry text never mentions the artist, so narrowing empties
	// the pool; the engine must fall back to the full pool and let the
	// filter predicate decide on the resolved album.
	pool := []model.LibraryEntry{
		{Title: "LP1", CatalogIDs: "1", Visible: true},
	}
	gw := &fakeGateway{lookups: map[string]catalog.Record{
		"1": {ID: "1", Name: "LP1", Artist: "The Beatles", Genre: "Rock",
			ReleaseDate: time.Date(1969, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	engine := newTestEngine(gw)

	album, err := engine.PickRandom(context.Background(), pool, model.Filters{Artist: "beatles", Year: "1969"})
	if err != nil {
		t.Fatalf("PickRandom failed: %v", err)
	}
	if album.ID != "1" {
		t.Errorf("resolved %s, want 1", album.ID)
	}
}

func TestPickRandomArtistRouletteFallback(t *testing.T) {
	// No library entry satisfies the artist filter, but the catalog knows
	// the artist's albums.
	pool := []model.LibraryEntry{
		{Title: "Unrelated", CatalogIDs: "9", Visible: true},
	}
	gw := &fakeGateway{
		lookups: map[string]catalog.Record{
			"9": {ID: "9", Name: "Unrelated", Artist: "Someone Else", Genre: "Pop",
				ReleaseDate: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		artistList: []catalog.Record{
			{ID: "10", Name: "Blue Train", Artist: "John Coltrane", Genre: "Jazz",
				ReleaseDate: time.Date(1958, 1, 1, 0, 0, 0, 0, time.UTC), TrackCount: 5},
		},
	}
	engine := newTestEngine(gw)

	album, err := engine.PickRandom(context.Background(), pool, model.Filters{Artist: "John Coltrane"})
	if err != nil {
		t.Fatalf("PickRandom failed: %v", err)
	}
	if album.ID != "10" {
		t.Errorf("expected the artist roulette album, got %+v", album)
	}
}

func TestPickRandomHonorsCancellation(t *testing.T) {
	pool, gw := beatlesPool()
	engine := newTestEngine(gw)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.PickRandom(ctx, pool, model.Filters{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRefreshOverwritesWholesale(t *testing.T) {
	gw := &fakeGateway{
		searches: map[string][]catalog.Record{
			"The Beatles Abbey Road": {{ID: "1", Name: "Abbey Road (Remastered)", Artist: "The Beatles",
				Genre: "Rock", ReleaseDate: time.Date(1969, 9, 26, 0, 0, 0, 0, time.UTC), TrackCount: 17}},
		},
	}
	engine := newTestEngine(gw)

	stale := &model.Album{ID: "1", OriginalName: "Abbey Road", Name: "Abbey Road", Artist: "The Beatles"}
	refreshed, err := engine.Refresh(context.Background(), stale, model.Filters{})
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.Name != "Abbey Road (Remastered)" {
		t.Errorf("refresh did not re-resolve: %q", refreshed.Name)
	}
	if refreshed.OriginalName != "Abbey Road" {
		t.Errorf("refresh must key off the source title, got %q", refreshed.OriginalName)
	}
}

type fakeSuggester struct {
	title, artist string
	err           error
	gotExclude    []string
}

func (f *fakeSuggester) Suggest(ctx context.Context, filters model.Filters, mode string, exclude []string) (string, string, error) {
	f.gotExclude = exclude
	return f.title, f.artist, f.err
}

func TestSuggestAlbumFeedsFreeTextPath(t *testing.T) {
	gw := &fakeGateway{
		searches: map[string][]catalog.Record{
			"John Coltrane Blue Train": {{ID: "10", Name: "Blue Train", Artist: "John Coltrane",
				Genre: "Jazz", ReleaseDate: time.Date(1958, 1, 1, 0, 0, 0, 0, time.UTC), TrackCount: 5}},
		},
	}
	engine := newTestEngine(gw)
	for i := 0; i < 3; i++ {
		engine.session.Remember(fmt.Sprintf("%d", i), fmt.Sprintf("Old Pick %d", i))
	}

	suggester := &fakeSuggester{title: "Blue Train", artist: "John Coltrane"}
	album, err := engine.SuggestAlbum(context.Background(), suggester, model.Filters{}, model.ModeDiscovery)
	if err != nil {
		t.Fatalf("SuggestAlbum failed: %v", err)
	}
	if album.ID != "10" {
		t.Errorf("resolved %s, want 10", album.ID)
	}
	if len(suggester.gotExclude) != 3 {
		t.Errorf("expected 3 excluded titles, got %v", suggester.gotExclude)
	}
	if !engine.session.Seen("10", "") {
		t.Error("suggestion result must enter session memory")
	}
}

func TestSuggestAlbumSurfacesCatalogMiss(t *testing.T) {
	gw := &fakeGateway{}
	engine := newTestEngine(gw)

	suggester := &fakeSuggester{title: "Imaginary Album That Does Not Exist", artist: "Nobody"}
	_, err := engine.SuggestAlbum(context.Background(), suggester, model.Filters{}, model.ModeTaste)
	if !errors.Is(err, ErrCatalogMiss) {
		t.Errorf("expected ErrCatalogMiss, got %v", err)
	}
}
