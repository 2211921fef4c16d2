package model

// Filters constrains a discovery request. Empty fields mean "no constraint".
// Month has no counterpart on a resolved Album; it only steers the AI
// suggestion prompt.
type Filters struct {
	Decade string `json:"decade,omitempty"`
	Year   string `json:"year,omitempty"`
	Month  string `json:"month,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Artist string `json:"artist,omitempty"`
}

// IsEmpty reports whether no filter field is set.
func (f Filters) IsEmpty() bool {
	return f.Decade == "" && f.Year == "" && f.Month == "" && f.Genre == "" && f.Artist == ""
}

// Discovery modes for the AI suggestion path.
const (
	ModeLibrary   = "library"
	ModeDiscovery = "discovery"
	ModeTaste     = "taste"
)
