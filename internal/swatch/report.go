// Package swatch turns an image-analysis report into an ordered palette of
// unique hex colours suitable as match queries.
package swatch

import (
	"encoding/json"
	"fmt"
	"io"
)

// Report is the output of an external image analyzer: a fixed set of named
// colour channels, each holding a hex string or empty when absent.
type Report struct {
	Dominant     string `json:"dominant,omitempty"`
	Average      string `json:"average,omitempty"`
	Vibrant      string `json:"vibrant,omitempty"`
	DarkVibrant  string `json:"darkVibrant,omitempty"`
	LightVibrant string `json:"lightVibrant,omitempty"`
	Muted        string `json:"muted,omitempty"`
	DarkMuted    string `json:"darkMuted,omitempty"`
	LightMuted   string `json:"lightMuted,omitempty"`
	Primary      string `json:"primary,omitempty"`
	Secondary    string `json:"secondary,omitempty"`
	Background   string `json:"background,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// Channel is a named accessor for one report field.
type Channel struct {
	Name  string
	Value func(Report) string
}

// channels lists every report channel in extraction priority order.
var channels = []Channel{
	{Name: "dominant", Value: func(r Report) string { return r.Dominant }},
	{Name: "average", Value: func(r Report) string { return r.Average }},
	{Name: "vibrant", Value: func(r Report) string { return r.Vibrant }},
	{Name: "darkVibrant", Value: func(r Report) string { return r.DarkVibrant }},
	{Name: "lightVibrant", Value: func(r Report) string { return r.LightVibrant }},
	{Name: "muted", Value: func(r Report) string { return r.Muted }},
	{Name: "darkMuted", Value: func(r Report) string { return r.DarkMuted }},
	{Name: "lightMuted", Value: func(r Report) string { return r.LightMuted }},
	{Name: "primary", Value: func(r Report) string { return r.Primary }},
	{Name: "secondary", Value: func(r Report) string { return r.Secondary }},
	{Name: "background", Value: func(r Report) string { return r.Background }},
	{Name: "detail", Value: func(r Report) string { return r.Detail }},
}

// Channels returns the report channels in priority order.
func Channels() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

// ChannelNames returns the channel names in priority order.
func ChannelNames() []string {
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name
	}
	return names
}

// Get returns the value of the named channel.
func (r Report) Get(name string) (string, bool) {
	for _, ch := range channels {
		if ch.Name == name {
			return ch.Value(r), true
		}
	}
	return "", false
}

// IsEmpty reports whether no channel holds a value.
func (r Report) IsEmpty() bool {
	return r == Report{}
}

// ParseReport decodes a JSON report. Unknown fields are rejected so a typo in
// a channel name does not silently drop a colour.
func ParseReport(rd io.Reader) (Report, error) {
	var r Report
	dec := json.NewDecoder(rd)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Report{}, fmt.Errorf("failed to parse colour report: %w", err)
	}
	return r, nil
}
