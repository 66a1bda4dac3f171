package catalog

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/spraydex/internal/colour"
)

// IntegrityPolicy decides what Build does with records that fail integrity checks.
type IntegrityPolicy int

const (
	// PolicyStrict rejects the whole catalog and reports every offending record.
	PolicyStrict IntegrityPolicy = iota

	// PolicyExclude drops offending records from every lookup and aggregate and
	// logs each one at warn level.
	PolicyExclude
)

// String returns the policy name.
func (p IntegrityPolicy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyExclude:
		return "exclude"
	default:
		return fmt.Sprintf("IntegrityPolicy(%d)", int(p))
	}
}

// ParseIntegrityPolicy parses "strict" or "exclude".
func ParseIntegrityPolicy(s string) (IntegrityPolicy, error) {
	switch s {
	case "strict", "":
		return PolicyStrict, nil
	case "exclude":
		return PolicyExclude, nil
	default:
		return PolicyStrict, fmt.Errorf("unknown integrity policy: %s (valid: strict, exclude)", s)
	}
}

type options struct {
	logger        hclog.Logger
	policy        IntegrityPolicy
	precomputeLab bool
}

// Option configures Build and Load.
type Option func(*options)

// WithLogger sets the logger used for integrity warnings and build statistics.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithIntegrityPolicy sets how dangling, duplicate or malformed records are handled.
func WithIntegrityPolicy(p IntegrityPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithPrecomputedLab fills in Lab values for colours that do not carry one,
// so matching never converts catalog colours at query time.
func WithPrecomputedLab() Option {
	return func(o *options) {
		o.precomputeLab = true
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger: hclog.NewNullLogger(),
		policy: PolicyStrict,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BrandCount is a brand with its total number of colours.
type BrandCount struct {
	Brand      Brand
	ColorCount int
}

// SeriesCount is a series with its number of colours and the owning brand's name.
type SeriesCount struct {
	Series     Series
	ColorCount int
	BrandName  string
}

// Stats summarises an index.
type Stats struct {
	Brands   int `json:"brands"`
	Series   int `json:"series"`
	Colors   int `json:"colors"`
	Excluded int `json:"excluded"`
}

// LabTolerance is the largest ΔE76 accepted between a catalog-supplied Lab
// value and the Lab converted from the colour's hex.
const LabTolerance = 0.5

// Index is an immutable, concurrency-safe view over a catalog.
// All accessors return deep copies; nothing reachable from an Index is mutated
// after Build returns.
type Index struct {
	brands []Brand
	series []Series
	colors []Color

	brandByID  map[string]int
	seriesByID map[string]int
	colorByID  map[string]int

	seriesByBrand  map[string][]Series
	colorsBySeries map[string][]Color

	colorCountBySeries map[string]int
	colorCountByBrand  map[string]int

	excluded int
}

// integrity collects problems according to the configured policy.
type integrity struct {
	opts     options
	errs     []error
	excluded int
}

func (c *integrity) report(err error) {
	if c.opts.policy == PolicyStrict {
		c.errs = append(c.errs, err)
		return
	}
	c.exclude(err)
}

// cascade drops a record whose parent was itself rejected. Strict mode
// already reports the parent, so only exclusion counts it.
func (c *integrity) cascade(err error) {
	if c.opts.policy == PolicyStrict {
		return
	}
	c.exclude(err)
}

func (c *integrity) exclude(err error) {
	c.excluded++
	c.opts.logger.Warn("excluding catalog record", "error", err)
}

// Build validates the records and constructs an Index. Input slices are not
// retained. Under PolicyStrict every problem is returned joined in one error.
func Build(brands []Brand, series []Series, colors []Color, opts ...Option) (*Index, error) {
	o := newOptions(opts)
	check := &integrity{opts: o}

	idx := &Index{
		brandByID:          make(map[string]int, len(brands)),
		seriesByID:         make(map[string]int, len(series)),
		colorByID:          make(map[string]int, len(colors)),
		seriesByBrand:      make(map[string][]Series),
		colorsBySeries:     make(map[string][]Color),
		colorCountBySeries: make(map[string]int, len(series)),
		colorCountByBrand:  make(map[string]int, len(brands)),
	}

	for _, b := range brands {
		b = b.clone()
		switch {
		case b.ID == "":
			check.report(&InvalidRecordError{Kind: KindBrand, ID: b.ID, Err: errors.New("empty id")})
			continue
		case idx.hasBrand(b.ID):
			check.report(&DuplicateIDError{Kind: KindBrand, ID: b.ID})
			continue
		}
		idx.brandByID[b.ID] = len(idx.brands)
		idx.brands = append(idx.brands, b)
	}

	rejectedSeries := make(map[string]struct{})
	for _, s := range series {
		s = s.clone()
		switch {
		case s.ID == "":
			check.report(&InvalidRecordError{Kind: KindSeries, ID: s.ID, Err: errors.New("empty id")})
			continue
		case idx.hasSeries(s.ID):
			check.report(&DuplicateIDError{Kind: KindSeries, ID: s.ID})
			continue
		case !idx.hasBrand(s.BrandID):
			check.report(&DanglingReferenceError{Kind: KindSeries, ID: s.ID, ParentKind: KindBrand, ParentID: s.BrandID})
			rejectedSeries[s.ID] = struct{}{}
			continue
		}
		if !s.FinishType.Known() || !s.PressureType.Known() {
			o.logger.Warn("unknown series attribute", "series", s.ID, "finish", s.FinishType, "pressure", s.PressureType)
		}
		idx.seriesByID[s.ID] = len(idx.series)
		idx.series = append(idx.series, s)
		idx.seriesByBrand[s.BrandID] = append(idx.seriesByBrand[s.BrandID], s)
	}

	for _, c := range colors {
		c = c.clone()
		switch {
		case c.ID == "":
			check.report(&InvalidRecordError{Kind: KindColor, ID: c.ID, Err: errors.New("empty id")})
			continue
		case idx.hasColor(c.ID):
			check.report(&DuplicateIDError{Kind: KindColor, ID: c.ID})
			continue
		case !idx.hasSeries(c.SeriesID):
			if _, rejected := rejectedSeries[c.SeriesID]; rejected {
				check.cascade(&DanglingReferenceError{Kind: KindColor, ID: c.ID, ParentKind: KindSeries, ParentID: c.SeriesID, ParentExcluded: true})
				continue
			}
			check.report(&DanglingReferenceError{Kind: KindColor, ID: c.ID, ParentKind: KindSeries, ParentID: c.SeriesID})
			continue
		}

		hex, err := colour.CanonicalHex(c.Hex)
		if err != nil {
			check.report(&InvalidRecordError{Kind: KindColor, ID: c.ID, Err: err})
			continue
		}
		c.Hex = hex

		switch {
		case c.Lab != nil:
			want := colour.RGBToLab(colour.MustParseHex(hex))
			if d := colour.DeltaE76(*c.Lab, want); d > LabTolerance {
				check.report(&InvalidRecordError{Kind: KindColor, ID: c.ID,
					Err: fmt.Errorf("lab %s disagrees with hex %s (ΔE %.2f)", c.Lab, hex, d)})
				continue
			}
		case o.precomputeLab:
			lab := colour.RGBToLab(colour.MustParseHex(hex))
			c.Lab = &lab
		}

		idx.colorByID[c.ID] = len(idx.colors)
		idx.colors = append(idx.colors, c)
		idx.colorsBySeries[c.SeriesID] = append(idx.colorsBySeries[c.SeriesID], c)
	}

	if len(check.errs) > 0 {
		return nil, fmt.Errorf("catalog integrity check failed: %w", errors.Join(check.errs...))
	}

	// Aggregates: one pass over colours, then one over series.
	for _, c := range idx.colors {
		idx.colorCountBySeries[c.SeriesID]++
	}
	for _, s := range idx.series {
		idx.colorCountByBrand[s.BrandID] += idx.colorCountBySeries[s.ID]
	}

	idx.excluded = check.excluded
	o.logger.Debug("catalog index built",
		"brands", len(idx.brands),
		"series", len(idx.series),
		"colors", len(idx.colors),
		"excluded", idx.excluded,
		"policy", o.policy.String())

	return idx, nil
}

func (idx *Index) hasBrand(id string) bool {
	_, ok := idx.brandByID[id]
	return ok
}

func (idx *Index) hasSeries(id string) bool {
	_, ok := idx.seriesByID[id]
	return ok
}

func (idx *Index) hasColor(id string) bool {
	_, ok := idx.colorByID[id]
	return ok
}

// Brand returns the brand with the given id.
func (idx *Index) Brand(id string) (Brand, bool) {
	i, ok := idx.brandByID[id]
	if !ok {
		return Brand{}, false
	}
	return idx.brands[i].clone(), true
}

// Series returns the series with the given id.
func (idx *Index) Series(id string) (Series, bool) {
	i, ok := idx.seriesByID[id]
	if !ok {
		return Series{}, false
	}
	return idx.series[i].clone(), true
}

// Color returns the colour with the given id.
func (idx *Index) Color(id string) (Color, bool) {
	i, ok := idx.colorByID[id]
	if !ok {
		return Color{}, false
	}
	return idx.colors[i].clone(), true
}

// Brands returns all brands in load order.
func (idx *Index) Brands() []Brand {
	return cloneAll(idx.brands)
}

// AllSeries returns all series in load order.
func (idx *Index) AllSeries() []Series {
	return cloneAll(idx.series)
}

// Colors returns all colours in load order.
func (idx *Index) Colors() []Color {
	return cloneAll(idx.colors)
}

// SeriesByBrand returns the series of a brand in load order.
func (idx *Index) SeriesByBrand(brandID string) []Series {
	return cloneAll(idx.seriesByBrand[brandID])
}

// ColorsBySeries returns the colours of a series in load order.
func (idx *Index) ColorsBySeries(seriesID string) []Color {
	return cloneAll(idx.colorsBySeries[seriesID])
}

// ColorsForSeries concatenates the colours of several series in the order the
// ids are given. Repeated and unknown ids contribute nothing.
func (idx *Index) ColorsForSeries(seriesIDs ...string) []Color {
	seen := make(map[string]struct{}, len(seriesIDs))
	var out []Color
	for _, id := range seriesIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, cloneAll(idx.colorsBySeries[id])...)
	}
	return out
}

// ColorCountBySeries returns the number of colours in a series.
func (idx *Index) ColorCountBySeries(seriesID string) int {
	return idx.colorCountBySeries[seriesID]
}

// ColorCountByBrand returns the number of colours across all series of a brand.
func (idx *Index) ColorCountByBrand(brandID string) int {
	return idx.colorCountByBrand[brandID]
}

// BrandsWithCount returns every brand with its colour count, in load order.
func (idx *Index) BrandsWithCount() []BrandCount {
	out := make([]BrandCount, len(idx.brands))
	for i, b := range idx.brands {
		out[i] = BrandCount{Brand: b.clone(), ColorCount: idx.colorCountByBrand[b.ID]}
	}
	return out
}

// SeriesWithCount returns series with colour counts and brand names. An empty
// brandID returns the series of all brands in load order.
func (idx *Index) SeriesWithCount(brandID string) []SeriesCount {
	series := idx.series
	if brandID != "" {
		series = idx.seriesByBrand[brandID]
	}

	out := make([]SeriesCount, len(series))
	for i, s := range series {
		brand, _ := idx.Brand(s.BrandID)
		out[i] = SeriesCount{
			Series:     s.clone(),
			ColorCount: idx.colorCountBySeries[s.ID],
			BrandName:  brand.Name,
		}
	}
	return out
}

// cloneAll deep-copies records so callers cannot reach index state.
func cloneAll[T interface{ clone() T }](records []T) []T {
	if records == nil {
		return nil
	}
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = r.clone()
	}
	return out
}

// Stats returns record counts for the index.
func (idx *Index) Stats() Stats {
	return Stats{
		Brands:   len(idx.brands),
		Series:   len(idx.series),
		Colors:   len(idx.colors),
		Excluded: idx.excluded,
	}
}
