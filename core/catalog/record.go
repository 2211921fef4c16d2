package catalog

import (
	"fmt"
	"strings"
	"time"

	"liquidshuffle/model"
)

// Record is a raw, unverified album candidate returned by the catalog
// service. Validation happens at this boundary so missing-field cases never
// leak into the engine.
type Record struct {
	ID          string
	Name        string
	Artist      string
	ArtworkURL  string
	ReleaseDate time.Time
	Genre       string
	ExternalURL string
	TrackCount  int
	Tracks      []model.Track
}

// Genres the engine never resolves to. These look like album matches but are
// compilations of the wrong release type.
var forbiddenGenres = []string{"karaoke", "fitness", "spoken word"}

// Valid reports whether the record is structurally usable: it must carry a
// catalog id and must not belong to a forbidden genre.
func (r Record) Valid() bool {
	if r.ID == "" {
		return false
	}
	genre := strings.ToLower(r.Genre)
	for _, g := range forbiddenGenres {
		if strings.Contains(genre, g) {
			return false
		}
	}
	return true
}

// ToAlbum converts the record to a canonical Album. originalName is the
// exact source string the library entry used; when empty the catalog title
// stands in for it.
func (r Record) ToAlbum(originalName string) *model.Album {
	if originalName == "" {
		originalName = r.Name
	}
	return &model.Album{
		ID:           r.ID,
		OriginalName: originalName,
		Name:         r.Name,
		Artist:       r.Artist,
		ArtworkURL:   r.ArtworkURL,
		ReleaseYear:  r.ReleaseDate.Year(),
		Genre:        r.Genre,
		ExternalURL:  r.ExternalURL,
		Tracks:       r.Tracks,
	}
}

// upscaleArtwork swaps the catalog's thumbnail size for a display size.
func upscaleArtwork(url string) string {
	return strings.Replace(url, "100x100bb", "1200x1200bb", 1)
}

// placeholderArtwork returns a deterministic stand-in image URL for records
// without artwork, seeded by the catalog id.
func placeholderArtwork(id string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/1200/1200", id)
}
