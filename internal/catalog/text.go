package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Translation is a single language entry of a LocalizedText.
type Translation struct {
	Lang string
	Text string
}

// LocalizedText is either a plain string or an ordered set of translations
// keyed by language code. The zero value is empty.
type LocalizedText struct {
	plain        string
	translations []Translation
}

// Plain returns a LocalizedText holding a single untranslated string.
func Plain(s string) LocalizedText {
	return LocalizedText{plain: s}
}

// ByLanguage returns a LocalizedText holding translations in the given order.
// Later entries for a language already present are ignored.
func ByLanguage(entries ...Translation) LocalizedText {
	t := LocalizedText{}
	for _, e := range entries {
		if t.lookup(e.Lang) >= 0 {
			continue
		}
		t.translations = append(t.translations, e)
	}
	return t
}

func (t LocalizedText) clone() LocalizedText {
	t.translations = slices.Clone(t.translations)
	return t
}

// IsZero reports whether the text holds no content.
func (t LocalizedText) IsZero() bool {
	return t.plain == "" && len(t.translations) == 0
}

// IsPlain reports whether the text is an untranslated string.
func (t LocalizedText) IsPlain() bool {
	return len(t.translations) == 0
}

// Languages returns the language codes in declaration order.
func (t LocalizedText) Languages() []string {
	langs := make([]string, len(t.translations))
	for i, tr := range t.translations {
		langs[i] = tr.Lang
	}
	return langs
}

// Resolve returns the text for lang. Lookup order: exact language code
// (case-insensitive), base language ("pt" for "pt-BR"), then the first
// declared translation. Plain text is returned for any language.
func (t LocalizedText) Resolve(lang string) string {
	if t.IsPlain() {
		return t.plain
	}

	if lang != "" {
		if i := t.lookup(lang); i >= 0 {
			return t.translations[i].Text
		}
		if base, _, found := strings.Cut(strings.ReplaceAll(lang, "_", "-"), "-"); found {
			if i := t.lookup(base); i >= 0 {
				return t.translations[i].Text
			}
		}
	}

	for _, tr := range t.translations {
		if tr.Text != "" {
			return tr.Text
		}
	}
	return ""
}

// String returns the text resolved without a language preference.
func (t LocalizedText) String() string {
	return t.Resolve("")
}

func (t LocalizedText) lookup(lang string) int {
	for i, tr := range t.translations {
		if strings.EqualFold(tr.Lang, lang) {
			return i
		}
	}
	return -1
}

// UnmarshalJSON accepts a JSON string, an object of language code to string,
// or null. Object key order is preserved.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = LocalizedText{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &t.plain)
	case data[0] != '{':
		return fmt.Errorf("localized text must be a string or an object, got %s", data)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}

	var entries []Translation
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		lang, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected localized text key %v", tok)
		}

		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("localized text for %q: %w", lang, err)
		}
		entries = append(entries, Translation{Lang: lang, Text: text})
	}

	*t = ByLanguage(entries...)
	return nil
}

// MarshalJSON writes plain text as a string and translations as an object
// in declaration order.
func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if t.IsPlain() {
		return json.Marshal(t.plain)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tr := range t.translations {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(tr.Lang)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(tr.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
