// Package match ranks catalog colours by perceptual distance to query colours.
package match

import (
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/spraydex/internal/catalog"
	"github.com/jmylchreest/spraydex/internal/colour"
)

// Match is a catalog colour ranked against a query colour.
type Match struct {
	QueryHex   string        `json:"queryHex"`
	Color      catalog.Color `json:"color"`
	Distance   float64       `json:"distance"`
	Similarity int           `json:"similarity"`
}

// Matcher ranks candidates against query colours. It holds no mutable state
// and is safe for concurrent use.
type Matcher struct {
	logger hclog.Logger
}

// New creates a Matcher. A nil logger disables logging.
func New(logger hclog.Logger) *Matcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Matcher{logger: logger}
}

var defaultMatcher = New(nil)

// FindClosest is Matcher.FindClosest on a matcher without logging.
func FindClosest(queryHex string, candidates []catalog.Color) (Match, bool, error) {
	return defaultMatcher.FindClosest(queryHex, candidates)
}

// FindClosestK is Matcher.FindClosestK on a matcher without logging.
func FindClosestK(queryHex string, candidates []catalog.Color, k int) ([]Match, error) {
	return defaultMatcher.FindClosestK(queryHex, candidates, k)
}

// MatchPalette is Matcher.MatchPalette on a matcher without logging.
func MatchPalette(queryHexes []string, candidates []catalog.Color) ([]Match, error) {
	return defaultMatcher.MatchPalette(queryHexes, candidates)
}

// FindClosest returns the candidate nearest to queryHex. The boolean is false
// only when candidates is empty. On equal distance the earlier candidate wins.
// An invalid query returns *colour.InvalidColorError.
func (m *Matcher) FindClosest(queryHex string, candidates []catalog.Color) (Match, bool, error) {
	query, err := colour.HexToLab(queryHex)
	if err != nil {
		return Match{}, false, err
	}
	if len(candidates) == 0 {
		return Match{}, false, nil
	}

	best := -1
	bestDist := 0.0
	for i, c := range candidates {
		d, err := distanceTo(query, c)
		if err != nil {
			return Match{}, false, err
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}

	result := newMatch(queryHex, candidates[best], bestDist)
	m.logger.Trace("closest colour", "query", queryHex, "color", result.Color.ID, "similarity", result.Similarity)
	return result, true, nil
}

// FindClosestK returns up to k candidates ordered by ascending distance, ties
// kept in candidate order. k <= 0 returns an empty slice.
func (m *Matcher) FindClosestK(queryHex string, candidates []catalog.Color, k int) ([]Match, error) {
	query, err := colour.HexToLab(queryHex)
	if err != nil {
		return nil, err
	}
	if k <= 0 || len(candidates) == 0 {
		return []Match{}, nil
	}

	ranked := make([]Match, len(candidates))
	for i, c := range candidates {
		d, err := distanceTo(query, c)
		if err != nil {
			return nil, err
		}
		ranked[i] = newMatch(queryHex, c, d)
	}

	slices.SortStableFunc(ranked, func(a, b Match) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	m.logger.Trace("ranked colours", "query", queryHex, "candidates", len(candidates), "returned", len(ranked))
	return ranked, nil
}

// MatchPalette runs FindClosest for every query in order. Queries without a
// match (empty candidates) are omitted. The first invalid query aborts with
// its error.
func (m *Matcher) MatchPalette(queryHexes []string, candidates []catalog.Color) ([]Match, error) {
	out := make([]Match, 0, len(queryHexes))
	for _, q := range queryHexes {
		result, ok, err := m.FindClosest(q, candidates)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, result)
		}
	}
	m.logger.Debug("matched palette", "queries", len(queryHexes), "matches", len(out), "candidates", len(candidates))
	return out, nil
}

// distanceTo uses the candidate's precomputed Lab when present.
func distanceTo(query colour.Lab, c catalog.Color) (float64, error) {
	lab, err := c.LabValue()
	if err != nil {
		return 0, err
	}
	return colour.LabDistance(query, lab), nil
}

func newMatch(queryHex string, c catalog.Color, distance float64) Match {
	return Match{
		QueryHex:   queryHex,
		Color:      c,
		Distance:   distance,
		Similarity: colour.Similarity(distance),
	}
}
