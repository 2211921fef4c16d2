// Package match scores raw catalog candidates against a target title and
// optional artist, and selects the best one. The weights are empirically
// tuned; behavior parity matters more than re-derivation, so change them
// only with before/after comparisons on a real library.
package match

import (
	"errors"
	"sort"
	"strings"

	"liquidshuffle/core/catalog"
	"liquidshuffle/core/textnorm"
	"liquidshuffle/logger"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// ErrNoMatch means no structurally valid candidate survived filtering.
var ErrNoMatch = errors.New("no viable candidate")

const (
	weightTitleExact     = 100
	weightTitleSubstring = 40
	weightArtistExact    = 80
	weightArtistSubstr   = 30

	// A single/remix/edit/live candidate against a plain target looks like a
	// title match but is the wrong release type, the most damaging false
	// positive there is.
	penaltyUnwantedVariant = 150
	penaltyMissingVariant  = 50

	// Small bonus for full releases over fragments when all else ties.
	bonusFullLength    = 10
	fullLengthMinTrack = 4
)

// variantMarkers flag alternate release types in canonical titles.
var variantMarkers = []string{"single", "remix", "edit", "live"}

// hasVariantMarker reports whether the normalized title contains a variant
// marker as its own word. Tokenizing keeps "edition" from matching "edit".
func hasVariantMarker(title string) bool {
	norm := textnorm.Normalize(title)
	tokens := strings.FieldsFunc(norm, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	for _, tok := range tokens {
		for _, marker := range variantMarkers {
			if tok == marker {
				return true
			}
		}
	}
	return false
}

// Score rates one candidate against the target. Higher is better; negative
// scores are possible and still rank.
func Score(c catalog.Record, targetTitle, targetArtist string) int {
	score := 0

	candTitle := textnorm.Normalize(c.Name)
	wantTitle := textnorm.Normalize(targetTitle)

	switch {
	case candTitle == wantTitle:
		score += weightTitleExact
	case candTitle != "" && wantTitle != "" &&
		(strings.Contains(candTitle, wantTitle) || strings.Contains(wantTitle, candTitle)):
		score += weightTitleSubstring
	}

	if targetArtist != "" {
		candArtist := textnorm.Normalize(c.Artist)
		wantArtist := textnorm.Normalize(targetArtist)
		switch {
		case candArtist == wantArtist:
			score += weightArtistExact
		case candArtist != "" &&
			(strings.Contains(candArtist, wantArtist) || strings.Contains(wantArtist, candArtist)):
			score += weightArtistSubstr
		}
	}

	candVariant := hasVariantMarker(c.Name)
	wantVariant := hasVariantMarker(targetTitle)
	if candVariant && !wantVariant {
		score -= penaltyUnwantedVariant
	} else if !candVariant && wantVariant {
		score -= penaltyMissingVariant
	}

	if c.TrackCount >= fullLengthMinTrack {
		score += bonusFullLength
	}

	return score
}

// SelectBest filters structurally invalid candidates, scores the rest and
// returns the highest scorer. Ties keep the original result order.
func SelectBest(candidates []catalog.Record, targetTitle, targetArtist string) (*catalog.Record, error) {
	viable := make([]catalog.Record, 0, len(candidates))
	for _, c := range candidates {
		if c.Valid() {
			viable = append(viable, c)
		}
	}
	if len(viable) == 0 {
		return nil, ErrNoMatch
	}

	scores := make([]int, len(viable))
	for i, c := range viable {
		scores[i] = Score(c, targetTitle, targetArtist)
	}

	order := make([]int, len(viable))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	best := viable[order[0]]

	similarity := strutil.Similarity(
		textnorm.Normalize(targetArtist+" "+targetTitle),
		textnorm.Normalize(best.Artist+" "+best.Name),
		metrics.NewJaroWinkler(),
	)
	logger.Debug("selected best candidate",
		logger.String("target", targetTitle),
		logger.String("chosen", best.Name),
		logger.Int("score", scores[order[0]]),
		logger.Float64("similarity", similarity))

	return &best, nil
}
