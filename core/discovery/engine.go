// Package discovery holds the randomized discovery engine: on-demand
// hydration of library entries, filter checks, session-level dedup and the
// bounded random-sampling loop that ties them together.
package discovery

import (
	"context"
	"fmt"
	"math/rand"

	"liquidshuffle/cache"
	"liquidshuffle/core/catalog"
	"liquidshuffle/core/textnorm"
	"liquidshuffle/logger"
	"liquidshuffle/model"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/google/uuid"
)

// artistPoolLimit caps the artist-roulette fallback fetch.
const artistPoolLimit = 50

// excludedTitleCap bounds the AI exclusion list so prompts stay small.
const excludedTitleCap = 12

// Suggester asks a generative service for one album guess. Implemented by
// the agent package.
type Suggester interface {
	Suggest(ctx context.Context, filters model.Filters, mode string, exclude []string) (title, artist string, err error)
}

// Engine is the discovery orchestrator. State (cache store, session memory)
// is constructor-injected so instances stay independent and testable.
type Engine struct {
	hydrator *Hydrator
	gateway  catalog.Gateway
	store    cache.Store
	session  *SessionMemory
	attempts int

	// randIntN is swapped for a deterministic source in tests.
	randIntN func(n int) int
}

// NewEngine creates a discovery engine. attempts bounds the sampling loop;
// values below one fall back to the default budget of 18.
func NewEngine(hydrator *Hydrator, gateway catalog.Gateway, store cache.Store, session *SessionMemory, attempts int) *Engine {
	if attempts < 1 {
		attempts = 18
	}
	return &Engine{
		hydrator: hydrator,
		gateway:  gateway,
		store:    store,
		session:  session,
		attempts: attempts,
		randIntN: rand.Intn,
	}
}

// Hydrate resolves a single entry through the engine's hydrator.
func (e *Engine) Hydrate(ctx context.Context, entry model.LibraryEntry, filters model.Filters) (*model.Album, error) {
	return e.hydrator.Hydrate(ctx, entry, filters)
}

// ResetSession clears the already-surfaced memory.
func (e *Engine) ResetSession() {
	e.session.Reset()
}

// PickRandom samples the pool until an album satisfies the filters, the
// attempt budget runs out, or the working pool empties. Entries that fail
// hydration or the filters are excluded from the working copy and never
// retried within the call; the caller's pool is left untouched.
func (e *Engine) PickRandom(ctx context.Context, pool []model.LibraryEntry, filters model.Filters) (*model.Album, error) {
	requestID := uuid.NewString()

	visible := make([]model.LibraryEntry, 0, len(pool))
	for _, entry := range pool {
		if entry.Visible {
			visible = append(visible, entry)
		}
	}
	if len(visible) == 0 {
		return nil, ErrEmptyPool
	}

	narrowed := e.narrowByArtist(visible, filters.Artist)
	fresh := e.excludeSeen(narrowed)

	// Exhaustion policy: once every candidate has been shown, allow repeats
	// instead of dead-ending.
	if len(fresh) == 0 {
		logger.Info("candidate pool exhausted, resetting session memory",
			logger.String("requestId", requestID),
			logger.Int("poolSize", len(narrowed)))
		e.session.Reset()
		fresh = append([]model.LibraryEntry(nil), narrowed...)
	}

	working := fresh
	for attempt := 0; attempt < e.attempts && len(working) > 0; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		idx := e.randIntN(len(working))
		entry := working[idx]

		album, err := e.hydrator.Hydrate(ctx, entry, filters)
		if err != nil {
			logger.Debug("hydration failed, excluding entry",
				logger.String("requestId", requestID),
				logger.String("title", entry.Title),
				logger.ErrorField(err))
			working = removeAt(working, idx)
			continue
		}

		if !Matches(album, filters) {
			working = removeAt(working, idx)
			continue
		}

		e.session.Remember(album.ID, album.OriginalName)
		logger.Info("discovery pick resolved",
			logger.String("requestId", requestID),
			logger.String("album", album.Name),
			logger.String("artist", album.Artist),
			logger.Int("attempt", attempt+1))
		return album, nil
	}

	// Artist-only filters get one more chance through the artist's own
	// catalog listing before the request fails.
	if album, ok := e.artistRoulette(ctx, filters); ok {
		return album, nil
	}

	return nil, ErrNoFilterMatch
}

// Refresh forces a fresh gateway search keyed on the album's source title
// and overwrites the cached entry wholesale.
func (e *Engine) Refresh(ctx context.Context, album *model.Album, filters model.Filters) (*model.Album, error) {
	artistHint := album.Artist
	if artistHint == "" {
		artistHint = filters.Artist
	}
	return e.hydrator.ResolveFresh(ctx, album.OriginalName, artistHint)
}

// SuggestAlbum asks the AI service for a guess and feeds it through the
// free-text hydration path, exactly as an id-less library entry would be.
func (e *Engine) SuggestAlbum(ctx context.Context, suggester Suggester, filters model.Filters, mode string) (*model.Album, error) {
	exclude := e.session.RecentTitles(excludedTitleCap)

	title, artist, err := suggester.Suggest(ctx, filters, mode, exclude)
	if err != nil {
		return nil, err
	}

	album, err := e.hydrator.Hydrate(ctx, model.LibraryEntry{
		Title:   title,
		Artist:  artist,
		Visible: true,
	}, filters)
	if err != nil {
		return nil, fmt.Errorf("suggestion %q by %q: %w", title, artist, err)
	}

	similarity := strutil.Similarity(
		textnorm.Normalize(artist+" "+title),
		textnorm.Normalize(album.Artist+" "+album.Name),
		metrics.NewJaroWinkler(),
	)
	if similarity < 0.5 {
		logger.Warn("resolved album drifted far from the suggestion",
			logger.String("suggested", title),
			logger.String("resolved", album.Name),
			logger.Float64("similarity", similarity))
	}

	e.session.Remember(album.ID, album.OriginalName)
	return album, nil
}

// narrowByArtist keeps entries whose raw title or artist loosely contains
// the artist filter. An over-specific filter that empties the pool degrades
// gracefully back to the full pool.
func (e *Engine) narrowByArtist(pool []model.LibraryEntry, artist string) []model.LibraryEntry {
	if artist == "" {
		return pool
	}

	narrowed := make([]model.LibraryEntry, 0, len(pool))
	for _, entry := range pool {
		if textnorm.Contains(entry.Artist, artist) || textnorm.Contains(entry.Title, artist) {
			narrowed = append(narrowed, entry)
		}
	}
	if len(narrowed) == 0 {
		return pool
	}
	return narrowed
}

// excludeSeen drops entries already surfaced this session.
func (e *Engine) excludeSeen(pool []model.LibraryEntry) []model.LibraryEntry {
	fresh := make([]model.LibraryEntry, 0, len(pool))
	for _, entry := range pool {
		if !e.session.Seen(entry.FirstCatalogID(), entry.Title) {
			fresh = append(fresh, entry)
		}
	}
	return fresh
}

// artistRoulette resolves a random album straight from the artist's catalog
// listing when the artist filter is the only constraint. Fetched records
// are cached in bulk for later lookups.
func (e *Engine) artistRoulette(ctx context.Context, filters model.Filters) (*model.Album, bool) {
	if filters.Artist == "" || filters.Year != "" || filters.Decade != "" || filters.Genre != "" {
		return nil, false
	}

	records, err := e.gateway.ArtistAlbums(ctx, filters.Artist, artistPoolLimit)
	if err != nil || len(records) == 0 {
		return nil, false
	}

	entries := make(map[string]*model.Album, len(records))
	for _, rec := range records {
		entries[cache.IDKey(rec.ID)] = rec.ToAlbum("")
	}
	if err := e.store.PutMany(ctx, entries); err != nil {
		logger.Warn("failed to bulk-cache artist albums", logger.ErrorField(err))
	}

	chosen := records[e.randIntN(len(records))].ToAlbum("")
	if !Matches(chosen, filters) {
		return nil, false
	}

	e.session.Remember(chosen.ID, chosen.OriginalName)
	logger.Info("artist roulette resolved",
		logger.String("artist", filters.Artist),
		logger.String("album", chosen.Name))
	return chosen, true
}

// removeAt drops index i without preserving order; the next pick is random
// anyway.
func removeAt(entries []model.LibraryEntry, i int) []model.LibraryEntry {
	entries[i] = entries[len(entries)-1]
	return entries[:len(entries)-1]
}
