package model

// Album is a canonical, catalog-confirmed album record.
//
// ID is the catalog identifier and is stable and unique per release.
// OriginalName preserves the exact title string the library entry used, so
// re-resolution and session dedup key off the source string even when the
// catalog's canonical title differs.
type Album struct {
	ID           string  `json:"id"`
	OriginalName string  `json:"originalName"`
	Name         string  `json:"name"`
	Artist       string  `json:"artist"`
	ArtworkURL   string  `json:"artworkUrl"`
	ReleaseYear  int     `json:"releaseYear"`
	Genre        string  `json:"genre"`
	ExternalURL  string  `json:"externalUrl"`
	Description  string  `json:"description,omitempty"`
	Tracks       []Track `json:"tracks,omitempty"`
}

// Track is a single track of an album. It never exists on its own.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DurationMs  int    `json:"durationMs"`
	TrackNumber int    `json:"trackNumber"`
}

// HasTracks reports whether the album carries an enriched track list.
func (a *Album) HasTracks() bool {
	return a != nil && len(a.Tracks) > 0
}
