package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jmylchreest/spraydex/internal/config"
)

const (
	testBrands = `[
  {"id": "B1", "name": "Montana", "description": {"en": "Made in Germany", "es": "Hecho en Alemania"}},
  {"id": "B2", "name": "Loop"}
]`
	testSeries = `[
  {"id": "S1", "brandId": "B1", "name": "Black", "finishType": "matt", "pressureType": "high"},
  {"id": "S2", "brandId": "B2", "name": "Loop Colors", "finishType": "gloss"}
]`
	testColors = `[
  {"id": "C1", "seriesId": "S1", "hex": "#ffffff", "code": "W1", "name": {"en": "White", "es": "Blanco"}},
  {"id": "C2", "seriesId": "S1", "hex": "#000000", "code": "K1", "name": "Black"},
  {"id": "C3", "seriesId": "S1", "hex": "#7f7f7f", "code": "G5", "name": "Grey"},
  {"id": "C4", "seriesId": "S2", "hex": "#ff8800", "code": "LP-12", "name": "Orange"}
]`
)

// writeCatalog creates a catalog directory and returns its path.
func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"brands.json": testBrands,
		"series.json": testSeries,
		"colors.json": testColors,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// writeTestPNG writes a 20x20 image of a single colour.
func writeTestPNG(t *testing.T, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := range 20 {
		for x := range 20 {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "wall.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// run executes the CLI with a clean environment and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runWithInput(t, "", args...)
}

func runWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{
		config.EnvCatalog, config.EnvAnalyzer, config.EnvLanguage,
		config.EnvTopK, config.EnvPreview, config.EnvIntegrity,
	} {
		t.Setenv(key, "")
	}

	cmd, err := newRootCmd()
	if err != nil {
		t.Fatalf("newRootCmd() error = %v", err)
	}
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--preview", "never"}, args...))

	err = cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestBrandsCommand(t *testing.T) {
	dir := writeCatalog(t)

	out, _, err := run(t, "--catalog", dir, "brands")
	if err != nil {
		t.Fatalf("brands error = %v", err)
	}
	for _, want := range []string{"Montana", "Loop", "Made in Germany"} {
		if !strings.Contains(out, want) {
			t.Errorf("brands output missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, "--catalog", dir, "--lang", "es", "brands", "--format", "json")
	if err != nil {
		t.Fatalf("brands json error = %v", err)
	}
	var views []brandView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(views) != 2 {
		t.Fatalf("got %d brands, want 2", len(views))
	}
	if views[0].Description != "Hecho en Alemania" || views[0].Colors != 3 || views[0].Series != 1 {
		t.Errorf("brand view = %+v", views[0])
	}
}

func TestSeriesCommand(t *testing.T) {
	dir := writeCatalog(t)

	out, _, err := run(t, "--catalog", dir, "series", "--brand", "B2", "-f", "json")
	if err != nil {
		t.Fatalf("series error = %v", err)
	}
	var views []seriesView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(views) != 1 || views[0].ID != "S2" || views[0].BrandName != "Loop" || views[0].Colors != 1 {
		t.Errorf("series views = %+v", views)
	}

	if _, _, err := run(t, "--catalog", dir, "series", "--brand", "B9"); err == nil {
		t.Error("series with unknown brand expected error")
	}
}

func TestColorsCommand(t *testing.T) {
	dir := writeCatalog(t)

	out, _, err := run(t, "--catalog", dir, "colours", "S1")
	if err != nil {
		t.Fatalf("colours error = %v", err)
	}
	for _, want := range []string{"W1", "White", "#FFFFFF", "G5"} {
		if !strings.Contains(out, want) {
			t.Errorf("colours output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "LP-12") {
		t.Errorf("colours output contains colour of another series:\n%s", out)
	}

	if _, _, err := run(t, "--catalog", dir, "colors", "S9"); err == nil {
		t.Error("colors with unknown series expected error")
	}
}

func TestStatsCommand(t *testing.T) {
	dir := writeCatalog(t)

	out, _, err := run(t, "--catalog", dir, "stats", "-f", "json")
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	var stats struct {
		Brands, Series, Colors, Excluded int
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if stats.Brands != 2 || stats.Series != 2 || stats.Colors != 4 || stats.Excluded != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMatchCommand(t *testing.T) {
	dir := writeCatalog(t)

	out, _, err := run(t, "--catalog", dir, "match", "#FEFEFE", "--series", "S1", "-k", "2", "-f", "json")
	if err != nil {
		t.Fatalf("match error = %v", err)
	}
	var results []queryResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(results) != 1 || len(results[0].Matches) != 2 {
		t.Fatalf("results = %+v", results)
	}
	best := results[0].Matches[0]
	if best.Hex != "#FFFFFF" || best.Code != "W1" || best.BrandName != "Montana" {
		t.Errorf("best match = %+v", best)
	}
	if best.Similarity < 99 {
		t.Errorf("similarity = %d, want >= 99", best.Similarity)
	}
	if results[0].Matches[1].Code != "G5" {
		t.Errorf("second match = %+v, want G5", results[0].Matches[1])
	}

	out, _, err = run(t, "--catalog", dir, "match", "ff9900", "-k", "1")
	if err != nil {
		t.Fatalf("match text error = %v", err)
	}
	if !strings.Contains(out, "#FF9900") || !strings.Contains(out, "LP-12") {
		t.Errorf("match text output:\n%s", out)
	}
}

func TestMatchCommandErrors(t *testing.T) {
	dir := writeCatalog(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "invalid colour", args: []string{"match", "#nope"}, want: "#nope"},
		{name: "unknown series", args: []string{"match", "#ffffff", "--series", "S1,S7"}, want: "S7"},
		{name: "invalid format", args: []string{"match", "#ffffff", "--format", "yaml"}, want: "invalid format"},
		{name: "missing catalog", args: []string{"--catalog", filepath.Join(dir, "missing"), "match", "#ffffff"}, want: "catalog"},
		{name: "invalid preview", args: []string{"--preview", "sometimes", "stats"}, want: "preview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--catalog", dir}, tt.args...)
			_, _, err := run(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestMatchCommandNoCandidates(t *testing.T) {
	dir := writeCatalog(t)

	out, _, err := run(t, "--catalog", dir, "match", "#123456", "-k", "0")
	if err != nil {
		t.Fatalf("match error = %v", err)
	}
	if !strings.Contains(out, "no matches") {
		t.Errorf("output = %q, want no matches", out)
	}
}

func TestPaletteCommandReport(t *testing.T) {
	dir := writeCatalog(t)
	report := filepath.Join(t.TempDir(), "report.json")
	content := `{"dominant": "#fefefe", "vibrant": "#FEFEFE", "muted": "#010101", "detail": "bogus"}`
	if err := os.WriteFile(report, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	out, _, err := run(t, "--catalog", dir, "palette", "--report", report, "--series", "S1", "-f", "json")
	if err != nil {
		t.Fatalf("palette error = %v", err)
	}
	var got paletteOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got.Palette) != 2 || got.Palette[0] != "#fefefe" || got.Palette[1] != "#010101" {
		t.Errorf("palette = %v", got.Palette)
	}
	if len(got.Best) != 2 || got.Best[0].Code != "W1" || got.Best[1].Code != "K1" {
		t.Errorf("best = %+v", got.Best)
	}
	if len(got.Results) != 2 || got.Results[0].Channel != "dominant" || got.Results[1].Channel != "muted" {
		t.Errorf("results = %+v", got.Results)
	}
}

func TestPaletteCommandStdin(t *testing.T) {
	dir := writeCatalog(t)

	out, _, err := runWithInput(t, `{"background": "#ff8000"}`, "--catalog", dir, "palette", "--report", "-", "-k", "1")
	if err != nil {
		t.Fatalf("palette error = %v", err)
	}
	if !strings.Contains(out, "background") || !strings.Contains(out, "LP-12") {
		t.Errorf("palette output:\n%s", out)
	}
}

func TestPaletteCommandImage(t *testing.T) {
	dir := writeCatalog(t)

	path := writeTestPNG(t, color.RGBA{R: 250, G: 250, B: 250, A: 255})

	out, _, err := run(t, "--catalog", dir, "palette", "--image", path, "-f", "json")
	if err != nil {
		t.Fatalf("palette error = %v", err)
	}
	var got paletteOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got.Palette) != 1 || got.Palette[0] != "#fafafa" {
		t.Errorf("palette = %v, want [#fafafa]", got.Palette)
	}
	if len(got.Best) != 1 || got.Best[0].Code != "W1" {
		t.Errorf("best = %+v", got.Best)
	}
}

func TestPaletteCommandExternalAnalyzer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script analyzer")
	}
	dir := writeCatalog(t)

	analyzer := filepath.Join(t.TempDir(), "analyzer.sh")
	script := `#!/bin/sh
if [ "$1" = "--plugin-info" ]; then
  echo '{"name": "sh", "type": "analyzer", "version": "0.1.0", "protocol_version": "1.0.0", "plugin_protocol": "json-stdio"}'
  exit 0
fi
cat >/dev/null
echo '{"dominant": "#FF8000", "background": "#010101"}'
`
	if err := os.WriteFile(analyzer, []byte(script), 0o755); err != nil { // #nosec G306 -- test script must be executable
		t.Fatalf("failed to write analyzer: %v", err)
	}
	img := writeTestPNG(t, color.RGBA{A: 255})

	out, _, err := run(t, "--catalog", dir, "--analyzer", analyzer, "palette", "--image", img, "-f", "json")
	if err != nil {
		t.Fatalf("palette error = %v", err)
	}
	var got paletteOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got.Best) != 2 || got.Best[0].Code != "LP-12" || got.Best[1].Code != "K1" {
		t.Errorf("best = %+v", got.Best)
	}
}

func TestPaletteCommandFlags(t *testing.T) {
	dir := writeCatalog(t)

	if _, _, err := run(t, "--catalog", dir, "palette"); err == nil {
		t.Error("palette without input expected error")
	}
	if _, _, err := run(t, "--catalog", dir, "palette", "--report", "a.json", "--image", "b.png"); err == nil {
		t.Error("palette with both inputs expected error")
	}
	if _, _, err := run(t, "--catalog", dir, "palette", "--image", filepath.Join(dir, "missing.png")); err == nil {
		t.Error("palette with missing image expected error")
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "spraydex") {
		t.Errorf("version output = %q", out)
	}

	out, _, err = run(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version json error = %v", err)
	}
	var info struct {
		Version          string `json:"version"`
		AnalyzerProtocol string `json:"analyzerProtocol"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if info.Version == "" || info.AnalyzerProtocol == "" {
		t.Errorf("version info = %+v", info)
	}
}
