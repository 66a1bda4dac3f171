// Package catalog holds the read-only brand, series and colour catalog and the
// index built over it.
package catalog

import (
	"github.com/jmylchreest/spraydex/internal/colour"
)

// FinishType is the surface finish of a paint series.
type FinishType string

// Known finish types. Catalogs may carry others; they are kept verbatim.
const (
	FinishMatt        FinishType = "matt"
	FinishSatin       FinishType = "satin"
	FinishGloss       FinishType = "gloss"
	FinishMetallic    FinishType = "metallic"
	FinishFluorescent FinishType = "fluorescent"
	FinishChrome      FinishType = "chrome"
	FinishTransparent FinishType = "transparent"
)

// Known reports whether f is one of the declared finish types. Empty is known.
func (f FinishType) Known() bool {
	switch f {
	case "", FinishMatt, FinishSatin, FinishGloss, FinishMetallic, FinishFluorescent, FinishChrome, FinishTransparent:
		return true
	}
	return false
}

// PressureType is the can pressure of a paint series.
type PressureType string

// Known pressure types.
const (
	PressureLow    PressureType = "low"
	PressureMedium PressureType = "medium"
	PressureHigh   PressureType = "high"
)

// Known reports whether p is one of the declared pressure types. Empty is known.
func (p PressureType) Known() bool {
	switch p {
	case "", PressureLow, PressureMedium, PressureHigh:
		return true
	}
	return false
}

// Brand is a paint manufacturer.
type Brand struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description LocalizedText `json:"description,omitzero"`
}

// Series is a product line of a brand.
type Series struct {
	ID           string        `json:"id"`
	BrandID      string        `json:"brandId"`
	Name         string        `json:"name"`
	FinishType   FinishType    `json:"finishType,omitempty"`
	PressureType PressureType  `json:"pressureType,omitempty"`
	Description  LocalizedText `json:"description,omitzero"`
}

// Color is a single catalog colour. Hex is canonical ("#RRGGBB") once the
// colour has passed through Build.
type Color struct {
	ID       string        `json:"id"`
	SeriesID string        `json:"seriesId"`
	Hex      string        `json:"hex"`
	Code     string        `json:"code"`
	Name     LocalizedText `json:"name,omitzero"`
	Lab      *colour.Lab   `json:"lab,omitempty"`
}

func (b Brand) clone() Brand {
	b.Description = b.Description.clone()
	return b
}

func (s Series) clone() Series {
	s.Description = s.Description.clone()
	return s
}

// clone copies the colour, including its Lab value and translations.
func (c Color) clone() Color {
	c.Name = c.Name.clone()
	if c.Lab != nil {
		lab := *c.Lab
		c.Lab = &lab
	}
	return c
}

// DisplayName returns the colour name in lang, falling back to the catalog code.
func (c Color) DisplayName(lang string) string {
	if name := c.Name.Resolve(lang); name != "" {
		return name
	}
	return c.Code
}

// RGB returns the colour's RGB value. Invalid hex yields black.
func (c Color) RGB() colour.RGB {
	rgb, _ := colour.ParseHex(c.Hex)
	return rgb
}

// LabValue returns the precomputed Lab value when present, otherwise converts Hex.
func (c Color) LabValue() (colour.Lab, error) {
	if c.Lab != nil {
		return *c.Lab, nil
	}
	return colour.HexToLab(c.Hex)
}
