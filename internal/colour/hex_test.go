package colour

import (
	"errors"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "six digit with hash", input: "#ff8000", want: RGB{R: 255, G: 128, B: 0}},
		{name: "six digit upper case", input: "#FF8000", want: RGB{R: 255, G: 128, B: 0}},
		{name: "six digit without hash", input: "1a2b3c", want: RGB{R: 0x1a, G: 0x2b, B: 0x3c}},
		{name: "three digit", input: "#fff", want: RGB{R: 255, G: 255, B: 255}},
		{name: "three digit mixed case", input: "aBc", want: RGB{R: 0xaa, G: 0xbb, B: 0xcc}},
		{name: "empty", input: "", wantErr: true},
		{name: "hash only", input: "#", wantErr: true},
		{name: "four digits", input: "#abcd", wantErr: true},
		{name: "eight digits", input: "#11223344", wantErr: true},
		{name: "non hex character", input: "#12345g", wantErr: true},
		{name: "double hash", input: "##123456", wantErr: true},
		{name: "sign prefix", input: "+12345", wantErr: true},
		{name: "whitespace", input: " #123456", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHex(%q) expected error, got %+v", tt.input, got)
				}
				var invalid *InvalidColorError
				if !errors.As(err, &invalid) {
					t.Errorf("ParseHex(%q) error = %T, want *InvalidColorError", tt.input, err)
				} else if invalid.Value != tt.input {
					t.Errorf("InvalidColorError.Value = %q, want %q", invalid.Value, tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalHex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#ffffff", "#FFFFFF"},
		{"ffffff", "#FFFFFF"},
		{"#abc", "#AABBCC"},
		{"7f7f7f", "#7F7F7F"},
	}

	for _, tt := range tests {
		got, err := CanonicalHex(tt.input)
		if err != nil {
			t.Errorf("CanonicalHex(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CanonicalHex(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if _, err := CanonicalHex("nope"); err == nil {
		t.Error("CanonicalHex(\"nope\") expected error")
	}
}

func TestRGBHex(t *testing.T) {
	tests := []struct {
		rgb  RGB
		want string
	}{
		{RGB{R: 255, G: 0, B: 0}, "#ff0000"},
		{RGB{R: 0, G: 0, B: 0}, "#000000"},
		{RGB{R: 128, G: 128, B: 128}, "#808080"},
	}

	for _, tt := range tests {
		if got := tt.rgb.Hex(); got != tt.want {
			t.Errorf("%v.Hex() = %q, want %q", tt.rgb, got, tt.want)
		}
	}
}
