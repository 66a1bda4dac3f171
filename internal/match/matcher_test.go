package match

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/spraydex/internal/catalog"
	"github.com/jmylchreest/spraydex/internal/colour"
)

func scenarioIndex(t *testing.T) *catalog.Index {
	t.Helper()
	idx, err := catalog.Build(
		[]catalog.Brand{{ID: "B1", Name: "Brand One"}},
		[]catalog.Series{{ID: "S1", BrandID: "B1", Name: "Series One"}},
		[]catalog.Color{
			{ID: "white", SeriesID: "S1", Hex: "#FFFFFF", Code: "W1"},
			{ID: "black", SeriesID: "S1", Hex: "#000000", Code: "B1C"},
		},
	)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return idx
}

func colors(hexes ...string) []catalog.Color {
	out := make([]catalog.Color, len(hexes))
	for i, h := range hexes {
		out[i] = catalog.Color{ID: h + "-" + string(rune('a'+i)), SeriesID: "S", Hex: h, Code: h}
	}
	return out
}

func TestFindClosestScenario(t *testing.T) {
	idx := scenarioIndex(t)

	got, ok, err := FindClosest("#FEFEFE", idx.ColorsBySeries("S1"))
	if err != nil {
		t.Fatalf("FindClosest() error: %v", err)
	}
	if !ok {
		t.Fatal("FindClosest() found nothing")
	}
	if got.Color.Hex != "#FFFFFF" || got.Color.Code != "W1" {
		t.Errorf("FindClosest() = %s (%s), want #FFFFFF (W1)", got.Color.Hex, got.Color.Code)
	}
	if got.Similarity < 99 {
		t.Errorf("FindClosest() similarity = %d, want >= 99", got.Similarity)
	}
	if got.QueryHex != "#FEFEFE" {
		t.Errorf("QueryHex = %q, want #FEFEFE", got.QueryHex)
	}
}

func TestFindClosestEmpty(t *testing.T) {
	for _, h := range []string{"#000000", "#fff", "123456"} {
		_, ok, err := FindClosest(h, nil)
		if err != nil {
			t.Errorf("FindClosest(%q, nil) error: %v", h, err)
		}
		if ok {
			t.Errorf("FindClosest(%q, nil) found a match", h)
		}
		_, ok, _ = FindClosest(h, []catalog.Color{})
		if ok {
			t.Errorf("FindClosest(%q, []) found a match", h)
		}
	}
}

func TestFindClosestIsMinimum(t *testing.T) {
	candidates := colors("#ff0000", "#00ff00", "#0000ff", "#ffff00", "#808080", "#102030", "#fedcba", "#7f7f7f")
	queries := []string{"#ff1010", "#0a0a0a", "#80807f", "#abcdef", "#00fe00"}

	for _, q := range queries {
		got, ok, err := FindClosest(q, candidates)
		if err != nil || !ok {
			t.Fatalf("FindClosest(%q) = %v, %v", q, ok, err)
		}
		for _, c := range candidates {
			d, err := colour.PerceptualDistance(q, c.Hex)
			if err != nil {
				t.Fatalf("PerceptualDistance error: %v", err)
			}
			if got.Distance > d+1e-12 {
				t.Errorf("FindClosest(%q) = %s at %v, but %s is closer at %v", q, got.Color.Hex, got.Distance, c.Hex, d)
			}
		}
	}
}

func TestFindClosestExactMatch(t *testing.T) {
	got, _, err := FindClosest("#808080", colors("#000000", "#808080", "#ffffff"))
	if err != nil {
		t.Fatalf("FindClosest() error: %v", err)
	}
	if got.Distance != 0 || got.Similarity != 100 {
		t.Errorf("exact match distance = %v, similarity = %d; want 0, 100", got.Distance, got.Similarity)
	}
}

func TestFindClosestTieBreak(t *testing.T) {
	candidates := []catalog.Color{
		{ID: "first", SeriesID: "S", Hex: "#404040", Code: "A"},
		{ID: "second", SeriesID: "S", Hex: "#404040", Code: "B"},
	}

	got, _, err := FindClosest("#414141", candidates)
	if err != nil {
		t.Fatalf("FindClosest() error: %v", err)
	}
	if got.Color.ID != "first" {
		t.Errorf("tie broken in favour of %s, want first", got.Color.ID)
	}
}

func TestFindClosestUsesPrecomputedLab(t *testing.T) {
	// The stored Lab deliberately disagrees with the hex so the path taken is visible.
	white := colour.Lab{L: 100}
	candidates := []catalog.Color{
		{ID: "labelled-black", SeriesID: "S", Hex: "#000000", Code: "X", Lab: &white},
		{ID: "grey", SeriesID: "S", Hex: "#808080", Code: "Y"},
	}

	got, _, err := FindClosest("#ffffff", candidates)
	if err != nil {
		t.Fatalf("FindClosest() error: %v", err)
	}
	if got.Color.ID != "labelled-black" {
		t.Errorf("FindClosest() = %s, want precomputed Lab to be used", got.Color.ID)
	}
}

func TestPrecomputedAndConvertedAgree(t *testing.T) {
	b, s := []catalog.Brand{{ID: "B", Name: "B"}}, []catalog.Series{{ID: "S", BrandID: "B", Name: "S"}}
	raw := colors("#ff0000", "#00ff00", "#0000ff", "#c0ffee", "#7f7f7f")

	plain, err := catalog.Build(b, s, raw)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	cached, err := catalog.Build(b, s, raw, catalog.WithPrecomputedLab())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	for _, q := range []string{"#808080", "#ff00ff", "#123456"} {
		a, err := FindClosestK(q, plain.Colors(), 5)
		if err != nil {
			t.Fatalf("FindClosestK() error: %v", err)
		}
		c, err := FindClosestK(q, cached.Colors(), 5)
		if err != nil {
			t.Fatalf("FindClosestK() error: %v", err)
		}
		for i := range a {
			if a[i].Color.ID != c[i].Color.ID || a[i].Similarity != c[i].Similarity {
				t.Errorf("query %s rank %d: converted %s/%d, precomputed %s/%d",
					q, i, a[i].Color.ID, a[i].Similarity, c[i].Color.ID, c[i].Similarity)
			}
		}
	}
}

func TestFindClosestKScenario(t *testing.T) {
	candidates := []catalog.Color{
		{ID: "colorA", SeriesID: "S", Hex: "#7F7F7F", Code: "A"},
		{ID: "colorB", SeriesID: "S", Hex: "#000000", Code: "B"},
		{ID: "colorC", SeriesID: "S", Hex: "#FFFFFF", Code: "C"},
	}

	got, err := FindClosestK("#808080", candidates, 2)
	if err != nil {
		t.Fatalf("FindClosestK() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindClosestK() len = %d, want 2", len(got))
	}
	if got[0].Color.ID != "colorA" {
		t.Errorf("FindClosestK()[0] = %s, want colorA", got[0].Color.ID)
	}
	if got[1].Color.ID != "colorB" && got[1].Color.ID != "colorC" {
		t.Errorf("FindClosestK()[1] = %s, want colorB or colorC", got[1].Color.ID)
	}
}

func TestFindClosestK(t *testing.T) {
	candidates := colors("#ffffff", "#000000", "#ff0000", "#fe0000", "#00ff00", "#0000ff")

	tests := []struct {
		name    string
		k       int
		wantLen int
	}{
		{name: "zero", k: 0, wantLen: 0},
		{name: "negative", k: -3, wantLen: 0},
		{name: "one", k: 1, wantLen: 1},
		{name: "three", k: 3, wantLen: 3},
		{name: "exact", k: 6, wantLen: 6},
		{name: "more than candidates", k: 50, wantLen: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindClosestK("#f01010", candidates, tt.k)
			if err != nil {
				t.Fatalf("FindClosestK() error: %v", err)
			}
			if got == nil {
				t.Fatal("FindClosestK() returned nil, want empty slice")
			}
			if len(got) != tt.wantLen {
				t.Fatalf("FindClosestK(k=%d) len = %d, want %d", tt.k, len(got), tt.wantLen)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Distance < got[i-1].Distance {
					t.Errorf("FindClosestK() not sorted at %d: %v < %v", i, got[i].Distance, got[i-1].Distance)
				}
			}
			if tt.wantLen > 0 {
				closest, _, _ := FindClosest("#f01010", candidates)
				if got[0].Color.ID != closest.Color.ID {
					t.Errorf("FindClosestK()[0] = %s, FindClosest() = %s", got[0].Color.ID, closest.Color.ID)
				}
			}
		})
	}

	if got, err := FindClosestK("#f01010", nil, 3); err != nil || len(got) != 0 {
		t.Errorf("FindClosestK() on empty candidates = %v, %v", got, err)
	}
}

func TestFindClosestKStableTies(t *testing.T) {
	candidates := []catalog.Color{
		{ID: "far", SeriesID: "S", Hex: "#000000", Code: "F"},
		{ID: "tie-1", SeriesID: "S", Hex: "#aaaaaa", Code: "T1"},
		{ID: "tie-2", SeriesID: "S", Hex: "#AAAAAA", Code: "T2"},
		{ID: "tie-3", SeriesID: "S", Hex: "#aaa", Code: "T3"},
	}

	got, err := FindClosestK("#ababab", candidates, 4)
	if err != nil {
		t.Fatalf("FindClosestK() error: %v", err)
	}
	wantOrder := []string{"tie-1", "tie-2", "tie-3", "far"}
	for i, id := range wantOrder {
		if got[i].Color.ID != id {
			t.Errorf("FindClosestK()[%d] = %s, want %s", i, got[i].Color.ID, id)
		}
	}
}

func TestMatchPalette(t *testing.T) {
	idx := scenarioIndex(t)

	got, err := MatchPalette([]string{"#010101", "#fefefe", "#111"}, idx.ColorsBySeries("S1"))
	if err != nil {
		t.Fatalf("MatchPalette() error: %v", err)
	}
	want := []string{"black", "white", "black"}
	if len(got) != len(want) {
		t.Fatalf("MatchPalette() len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].Color.ID != id {
			t.Errorf("MatchPalette()[%d] = %s, want %s", i, got[i].Color.ID, id)
		}
	}
	if got[2].QueryHex != "#111" {
		t.Errorf("MatchPalette()[2].QueryHex = %q, want query order preserved", got[2].QueryHex)
	}

	empty, err := MatchPalette([]string{"#010101", "#fefefe"}, nil)
	if err != nil {
		t.Fatalf("MatchPalette() with no candidates error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("MatchPalette() with no candidates = %v, want empty", empty)
	}
}

func TestInvalidQueryPropagates(t *testing.T) {
	candidates := colors("#ffffff")

	var invalid *colour.InvalidColorError

	if _, _, err := FindClosest("#nope", candidates); !errors.As(err, &invalid) {
		t.Errorf("FindClosest() error = %v, want InvalidColorError", err)
	}
	if _, err := FindClosestK("#nope", candidates, 1); !errors.As(err, &invalid) {
		t.Errorf("FindClosestK() error = %v, want InvalidColorError", err)
	}
	if _, err := MatchPalette([]string{"#ffffff", "#nope"}, candidates); !errors.As(err, &invalid) {
		t.Errorf("MatchPalette() error = %v, want InvalidColorError", err)
	}
	if invalid == nil || invalid.Value != "#nope" {
		t.Errorf("InvalidColorError.Value = %v, want #nope", invalid)
	}
}

func TestMatcherLogging(t *testing.T) {
	var buf bytes.Buffer
	m := New(hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Trace}))

	if _, err := m.MatchPalette([]string{"#fefefe"}, colors("#ffffff")); err != nil {
		t.Fatalf("MatchPalette() error: %v", err)
	}
	if !strings.Contains(buf.String(), "matched palette") || !strings.Contains(buf.String(), "closest colour") {
		t.Errorf("expected trace and debug log lines, got %q", buf.String())
	}
}

func TestMatcherConcurrentUse(t *testing.T) {
	candidates := colors("#ff0000", "#00ff00", "#0000ff", "#ffffff", "#000000")
	want, _, _ := FindClosest("#fa0505", candidates)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, _, err := FindClosest("#fa0505", candidates)
				if err != nil || got.Color.ID != want.Color.ID {
					t.Errorf("concurrent FindClosest() = %s, %v", got.Color.ID, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
