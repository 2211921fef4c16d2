package discovery

import (
	"strconv"
	"strings"

	"liquidshuffle/core/textnorm"
	"liquidshuffle/model"
)

// Matches reports whether the album satisfies every supplied filter field.
// Unset fields never constrain; no fields set means any album passes. Month
// is not checked: a resolved album carries no release month.
func Matches(album *model.Album, filters model.Filters) bool {
	if album == nil {
		return false
	}

	if filters.Year != "" {
		if strconv.Itoa(album.ReleaseYear) != filters.Year {
			return false
		}
	}

	if filters.Decade != "" {
		start, ok := decadeStart(filters.Decade)
		if !ok || album.ReleaseYear < start || album.ReleaseYear >= start+10 {
			return false
		}
	}

	if filters.Genre != "" {
		if !textnorm.Contains(album.Genre, filters.Genre) {
			return false
		}
	}

	if filters.Artist != "" {
		if !textnorm.ContainsEither(album.Artist, filters.Artist) {
			return false
		}
	}

	return true
}

// decadeStart parses "1990s", "1990" or "90s" style decade values into the
// decade's first year.
func decadeStart(decade string) (int, bool) {
	digits := strings.TrimRight(strings.TrimSpace(decade), "sS")
	year, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	if year < 100 {
		// Two-digit shorthand: 90s means the 1990s.
		year += 1900
	}
	return year - year%10, true
}
