// Package catalog talks to the external album catalog (the iTunes Search
// API). It performs exact-id lookups and free-text searches and returns
// typed, validated candidate records.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"liquidshuffle/logger"
	"liquidshuffle/model"
)

var (
	// ErrNotFound means an exact-id lookup had no record.
	ErrNotFound = errors.New("catalog record not found")
	// ErrGatewayTimeout means the catalog service did not answer in time.
	ErrGatewayTimeout = errors.New("catalog gateway timeout")
	// ErrGatewayUnavailable means the catalog service answered with a
	// transport or server level failure.
	ErrGatewayUnavailable = errors.New("catalog gateway unavailable")
)

// Gateway is the catalog service contract consumed by the hydrator.
// Search never fails on zero results; it returns an empty slice.
type Gateway interface {
	LookupByID(ctx context.Context, id string) (*Record, error)
	Search(ctx context.Context, term string, limit int) ([]Record, error)
	ArtistAlbums(ctx context.Context, artist string, limit int) ([]Record, error)
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client. timeout bounds every request; an
// expired deadline surfaces as ErrGatewayTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// itunesResult is the wire shape shared by the search and lookup endpoints.
type itunesResult struct {
	WrapperType       string  `json:"wrapperType"`
	CollectionID      int64   `json:"collectionId"`
	CollectionName    string  `json:"collectionName"`
	ArtistName        string  `json:"artistName"`
	ArtworkURL100     string  `json:"artworkUrl100"`
	ReleaseDate       string  `json:"releaseDate"`
	PrimaryGenreName  string  `json:"primaryGenreName"`
	CollectionViewURL string  `json:"collectionViewUrl"`
	TrackCount        int     `json:"trackCount"`
	TrackID           int64   `json:"trackId"`
	TrackName         string  `json:"trackName"`
	TrackNumber       int     `json:"trackNumber"`
	TrackTimeMillis   int     `json:"trackTimeMillis"`
}

type itunesResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

// LookupByID resolves one collection by its catalog id. The lookup asks for
// the collection's songs too, so id-resolved albums come back with an
// enriched track list.
func (c *Client) LookupByID(ctx context.Context, id string) (*Record, error) {
	params := url.Values{}
	params.Set("id", id)
	params.Set("entity", "song")

	resp, err := c.get(ctx, fmt.Sprintf("%s/lookup?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var collection *Record
	var tracks []model.Track
	for _, r := range resp.Results {
		switch r.WrapperType {
		case "collection":
			rec := mapResult(r)
			collection = &rec
		case "track":
			tracks = append(tracks, model.Track{
				ID:          strconv.FormatInt(r.TrackID, 10),
				Name:        r.TrackName,
				DurationMs:  r.TrackTimeMillis,
				TrackNumber: r.TrackNumber,
			})
		}
	}

	if collection == nil {
		return nil, fmt.Errorf("lookup id %s: %w", id, ErrNotFound)
	}
	collection.Tracks = tracks

	logger.Debug("catalog lookup resolved",
		logger.String("id", id),
		logger.String("name", collection.Name),
		logger.Int("tracks", len(tracks)))

	return collection, nil
}

// Search performs a free-text album search. Zero results is not an error.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("entity", "album")
	params.Set("limit", strconv.Itoa(limit))

	resp, err := c.get(ctx, fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, mapResult(r))
	}

	logger.Debug("catalog search completed",
		logger.String("term", term),
		logger.Int("count", len(records)))

	return records, nil
}

// ArtistAlbums fetches an artist's album list via an attribute-scoped
// search. Invalid records are already filtered out.
func (c *Client) ArtistAlbums(ctx context.Context, artist string, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("term", artist)
	params.Set("entity", "album")
	params.Set("attribute", "artistTerm")
	params.Set("limit", strconv.Itoa(limit))

	resp, err := c.get(ctx, fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(resp.Results))
	for _, r := range resp.Results {
		rec := mapResult(r)
		if rec.Valid() {
			records = append(records, rec)
		}
	}

	return records, nil
}

// get issues one GET request and decodes the catalog response envelope.
func (c *Client) get(ctx context.Context, requestURL string) (*itunesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("catalog request %s: %w", requestURL, ErrGatewayTimeout)
		}
		return nil, fmt.Errorf("catalog request %s: %w", requestURL, ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d: %w", resp.StatusCode, ErrGatewayUnavailable)
	}

	var decoded itunesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return &decoded, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// mapResult converts one wire result into a Record, applying the artwork
// upscale and the placeholder fallback.
func mapResult(r itunesResult) Record {
	id := ""
	if r.CollectionID != 0 {
		id = strconv.FormatInt(r.CollectionID, 10)
	}

	artwork := upscaleArtwork(r.ArtworkURL100)
	if artwork == "" && id != "" {
		artwork = placeholderArtwork(id)
	}

	released, _ := time.Parse(time.RFC3339, r.ReleaseDate)

	return Record{
		ID:          id,
		Name:        r.CollectionName,
		Artist:      r.ArtistName,
		ArtworkURL:  artwork,
		ReleaseDate: released,
		Genre:       r.PrimaryGenreName,
		ExternalURL: r.CollectionViewURL,
		TrackCount:  r.TrackCount,
	}
}
