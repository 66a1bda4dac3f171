package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmylchreest/spraydex/internal/compression"
)

// Catalog file base names inside a catalog directory.
const (
	BrandsFile = "brands.json"
	SeriesFile = "series.json"
	ColorsFile = "colors.json"
)

// Bundle is the single-file catalog layout: all three collections in one object.
type Bundle struct {
	Brands []Brand  `json:"brands"`
	Series []Series `json:"series"`
	Colors []Color  `json:"colors"`
}

// DecodeBrands decodes a JSON array of brands.
func DecodeBrands(r io.Reader) ([]Brand, error) {
	return decodeRecords[Brand](r)
}

// DecodeSeries decodes a JSON array of series.
func DecodeSeries(r io.Reader) ([]Series, error) {
	return decodeRecords[Series](r)
}

// DecodeColors decodes a JSON array of colours.
func DecodeColors(r io.Reader) ([]Color, error) {
	return decodeRecords[Color](r)
}

func decodeRecords[T any](r io.Reader) ([]T, error) {
	var records []T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// Load reads brands.json, series.json and colors.json from dir and builds an
// Index. Each file may be compressed (.xz, .gz, .bz2 appended to the name).
func Load(ctx context.Context, dir string, opts ...Option) (*Index, error) {
	o := newOptions(opts)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access catalog directory: %w", err)
	}
	if !info.IsDir() {
		return LoadBundle(ctx, dir, opts...)
	}

	var brands []Brand
	var series []Series
	var colors []Color

	steps := []struct {
		base   string
		decode func(io.Reader) error
	}{
		{BrandsFile, func(r io.Reader) (err error) { brands, err = DecodeBrands(r); return err }},
		{SeriesFile, func(r io.Reader) (err error) { series, err = DecodeSeries(r); return err }},
		{ColorsFile, func(r io.Reader) (err error) { colors, err = DecodeColors(r); return err }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := findCatalogFile(dir, step.base)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("reading catalog file", "path", path)

		if err := readFile(path, step.decode); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	return Build(brands, series, colors, opts...)
}

// LoadBundle reads a single-file catalog (see Bundle), optionally compressed.
func LoadBundle(ctx context.Context, path string, opts ...Option) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bundle Bundle
	err := readFile(path, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&bundle)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Build(bundle.Brands, bundle.Series, bundle.Colors, opts...)
}

// findCatalogFile returns the first existing variant of base in dir.
func findCatalogFile(dir, base string) (string, error) {
	for _, ext := range compression.Extensions() {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("catalog file not found: %s (in %s)", base, dir)
}

func readFile(path string, decode func(io.Reader) error) error {
	f, err := os.Open(path) // #nosec G304 - catalog path is supplied by the operator
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := compression.NewReader(path, f)
	if err != nil {
		return err
	}
	defer r.Close()

	return decode(r)
}
