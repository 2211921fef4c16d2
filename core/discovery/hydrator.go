package discovery

import (
	"context"
	"fmt"
	"strings"

	"liquidshuffle/cache"
	"liquidshuffle/core/catalog"
	"liquidshuffle/core/match"
	"liquidshuffle/logger"
	"liquidshuffle/model"
)

// truncatedTermLen bounds the last-resort search term for long titles.
const truncatedTermLen = 15

// Hydrator resolves one library entry into a canonical album: cache hit
// short-circuits, otherwise the catalog is consulted (exact-id lookup first,
// free-text search fallback) and the result is written through to the cache.
type Hydrator struct {
	gateway     catalog.Gateway
	store       cache.Store
	searchLimit int
}

// NewHydrator creates a hydrator. searchLimit is the batch size requested
// from free-text searches.
func NewHydrator(gateway catalog.Gateway, store cache.Store, searchLimit int) *Hydrator {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &Hydrator{
		gateway:     gateway,
		store:       store,
		searchLimit: searchLimit,
	}
}

// Hydrate resolves entry into a canonical Album. Transient gateway errors
// are not retried here; the orchestrator recovers by shrinking its pool.
func (h *Hydrator) Hydrate(ctx context.Context, entry model.LibraryEntry, filters model.Filters) (*model.Album, error) {
	id := entry.FirstCatalogID()
	artistHint := entry.Artist
	if artistHint == "" {
		artistHint = filters.Artist
	}

	if album := h.fromCache(ctx, id, entry.Title, artistHint); album != nil {
		album.OriginalName = entry.Title
		return album, nil
	}

	var record *catalog.Record
	if id != "" {
		rec, err := h.gateway.LookupByID(ctx, id)
		if err != nil {
			// NotFound and transport failures alike fall through to search.
			logger.Warn("catalog id lookup failed, falling back to search",
				logger.String("id", id),
				logger.String("title", entry.Title),
				logger.ErrorField(err))
		} else {
			record = rec
		}
	}

	if record == nil {
		rec, err := h.searchBest(ctx, entry.Title, artistHint)
		if err != nil {
			return nil, err
		}
		record = rec
	}

	album := record.ToAlbum(entry.Title)
	h.writeThrough(ctx, id, entry.Title, artistHint, album)
	return album, nil
}

// ResolveFresh forces a gateway search for the given source title, skipping
// the cache on the way in and overwriting it wholesale on the way out. Used
// by the explicit refresh operation.
func (h *Hydrator) ResolveFresh(ctx context.Context, title, artistHint string) (*model.Album, error) {
	record, err := h.searchBest(ctx, title, artistHint)
	if err != nil {
		return nil, err
	}

	album := record.ToAlbum(title)
	entries := map[string]*model.Album{
		cache.IDKey(album.ID):             album,
		cache.TitleKey(title, artistHint): album,
	}
	if err := h.store.PutMany(ctx, entries); err != nil {
		logger.Warn("failed to overwrite cache on refresh", logger.ErrorField(err))
	}
	return album, nil
}

// fromCache probes the candidate keys for this entry. When more than one
// key hits, an entry with an enriched track list wins over one without.
func (h *Hydrator) fromCache(ctx context.Context, id, title, artistHint string) *model.Album {
	keys := make([]string, 0, 3)
	if id != "" {
		keys = append(keys, cache.IDKey(id))
	}
	keys = append(keys, cache.TitleKey(title, artistHint))
	if artistHint != "" {
		// Entries cached before an artist hint was known live under the
		// bare-title key.
		keys = append(keys, cache.TitleKey(title, ""))
	}

	var hit *model.Album
	for _, key := range keys {
		album, err := h.store.Get(ctx, key)
		if err != nil {
			logger.Warn("cache read failed", logger.String("key", key), logger.ErrorField(err))
			continue
		}
		if album == nil {
			continue
		}
		if album.HasTracks() {
			return album
		}
		if hit == nil {
			hit = album
		}
	}
	return hit
}

// searchBest runs the progressive free-text search: artist plus title, bare
// title, then a truncated title for long names. The first batch with a
// viable candidate wins.
func (h *Hydrator) searchBest(ctx context.Context, title, artistHint string) (*catalog.Record, error) {
	cleanTitle := stripQuotes(title)
	cleanArtist := stripQuotes(artistHint)

	terms := make([]string, 0, 3)
	if cleanArtist != "" {
		terms = append(terms, cleanArtist+" "+cleanTitle)
	}
	terms = append(terms, cleanTitle)
	if runes := []rune(cleanTitle); len(runes) > 10 {
		end := truncatedTermLen
		if end > len(runes) {
			end = len(runes)
		}
		terms = append(terms, strings.TrimSpace(string(runes[:end])))
	}

	for _, term := range terms {
		if term == "" {
			continue
		}
		results, err := h.gateway.Search(ctx, term, h.searchLimit)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", term, err)
		}
		if len(results) == 0 {
			continue
		}
		best, err := match.SelectBest(results, title, artistHint)
		if err != nil {
			// Every result in this batch was structurally unusable; a
			// broader term may still find the release.
			continue
		}
		return best, nil
	}

	return nil, fmt.Errorf("%q: %w", title, ErrCatalogMiss)
}

// writeThrough caches the resolved album under every key a future lookup
// for this entry could use. An already-cached track list is carried over so
// a search result never downgrades an id-enriched entry.
func (h *Hydrator) writeThrough(ctx context.Context, id, title, artistHint string, album *model.Album) {
	if !album.HasTracks() {
		if existing, err := h.store.Get(ctx, cache.IDKey(album.ID)); err == nil &&
			existing != nil && existing.ID == album.ID && existing.HasTracks() {
			album.Tracks = existing.Tracks
		}
	}

	entries := map[string]*model.Album{
		cache.IDKey(album.ID): album,
	}
	if id == "" {
		entries[cache.TitleKey(title, artistHint)] = album
	}

	if err := h.store.PutMany(ctx, entries); err != nil {
		// A cache write failure is not a hydration failure.
		logger.Warn("cache write-through failed",
			logger.String("album", album.ID),
			logger.ErrorField(err))
	}
}

// stripQuotes drops quote characters that confuse the catalog search.
func stripQuotes(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '"' || r == '\'' {
			return -1
		}
		return r
	}, s))
}
