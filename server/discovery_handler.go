package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"liquidshuffle/core/agent"
	"liquidshuffle/core/catalog"
	"liquidshuffle/core/discovery"
	"liquidshuffle/core/library"
	"liquidshuffle/logger"
	"liquidshuffle/model"
)

// DiscoveryHandler exposes the discovery engine over HTTP.
type DiscoveryHandler struct {
	engine    *discovery.Engine
	pool      *library.Pool
	suggester discovery.Suggester
}

// NewDiscoveryHandler creates a discovery handler. suggester may be nil when
// no AI backend is configured; the suggest endpoint then reports 503.
func NewDiscoveryHandler(engine *discovery.Engine, pool *library.Pool, suggester discovery.Suggester) *DiscoveryHandler {
	return &DiscoveryHandler{
		engine:    engine,
		pool:      pool,
		suggester: suggester,
	}
}

type shuffleRequest struct {
	Filters model.Filters `json:"filters"`
}

type hydrateRequest struct {
	Entry   model.LibraryEntry `json:"entry"`
	Filters model.Filters      `json:"filters"`
}

type refreshRequest struct {
	Album   model.Album   `json:"album"`
	Filters model.Filters `json:"filters"`
}

type suggestRequest struct {
	Filters model.Filters `json:"filters"`
	Mode    string        `json:"mode"`
}

// ShuffleHandler picks a random album from the library pool.
func (h *DiscoveryHandler) ShuffleHandler(w http.ResponseWriter, r *http.Request) {
	var req shuffleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	album, err := h.engine.PickRandom(r.Context(), h.pool.Entries(), req.Filters)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, album)
}

// HydrateHandler resolves a single library entry into a canonical album.
func (h *DiscoveryHandler) HydrateHandler(w http.ResponseWriter, r *http.Request) {
	var req hydrateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Entry.Title == "" && req.Entry.CatalogIDs == "" {
		respondWithError(w, http.StatusBadRequest, "entry requires a title or a catalog id")
		return
	}

	album, err := h.engine.Hydrate(r.Context(), req.Entry, req.Filters)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, album)
}

// RefreshHandler forces a fresh catalog resolution for an album.
func (h *DiscoveryHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Album.OriginalName == "" {
		respondWithError(w, http.StatusBadRequest, "album requires its source title")
		return
	}

	album, err := h.engine.Refresh(r.Context(), &req.Album, req.Filters)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, album)
}

// ResetSessionHandler clears the session memory so all albums become
// eligible again.
func (h *DiscoveryHandler) ResetSessionHandler(w http.ResponseWriter, r *http.Request) {
	h.engine.ResetSession()
	w.WriteHeader(http.StatusNoContent)
}

// SuggestHandler asks the AI backend for an album and resolves it through
// the catalog.
func (h *DiscoveryHandler) SuggestHandler(w http.ResponseWriter, r *http.Request) {
	if h.suggester == nil {
		respondWithError(w, http.StatusServiceUnavailable, "no suggestion backend configured")
		return
	}

	var req suggestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	album, err := h.engine.SuggestAlbum(r.Context(), h.suggester, req.Filters, req.Mode)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, album)
}

// LibraryHandler lists the current candidate pool.
func (h *DiscoveryHandler) LibraryHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.pool.Entries())
}

// ReloadLibraryHandler re-reads the library source.
func (h *DiscoveryHandler) ReloadLibraryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Load(r.Context()); err != nil {
		logger.Error("library reload failed", logger.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "failed to reload library")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"entries": h.pool.Len()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		// An empty body means no filters.
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeDiscoveryError maps engine errors onto HTTP statuses.
func writeDiscoveryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, discovery.ErrEmptyPool):
		respondWithError(w, http.StatusNotFound, "library pool is empty")
	case errors.Is(err, discovery.ErrNoFilterMatch):
		respondWithError(w, http.StatusNotFound, "no album matches the filters")
	case errors.Is(err, discovery.ErrCatalogMiss):
		respondWithError(w, http.StatusNotFound, "album not found in the catalog")
	case errors.Is(err, agent.ErrMalformedResponse):
		respondWithError(w, http.StatusBadGateway, "suggestion backend returned an unusable reply")
	case errors.Is(err, catalog.ErrGatewayTimeout), errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, "catalog gateway timed out")
	case errors.Is(err, catalog.ErrGatewayUnavailable):
		respondWithError(w, http.StatusBadGateway, "catalog gateway unavailable")
	default:
		logger.Error("discovery request failed", logger.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}
