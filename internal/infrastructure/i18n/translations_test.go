package i18n

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestTranslate(t *testing.T) {
	tr := NewTranslator("en")
	tests := []struct {
		locale, key string
		data        map[string]any
		want        string
	}{
		{"en", "draft.step.title", nil, "(1/4) Insert the title of the event"},
		{"it", "ui.rsvp.confirmed", nil, "Partecipo"},
		{"fr", "rsvp.header.confirmed", map[string]any{"Total": 3}, "Participants confirmés (3)"},
		{"de", "draft.created", nil, "Yeah!!! Event created"},
		{"en", "reminder.set", map[string]any{"Title": "Party", "Hours": 2}, `Reminder set for "Party" every 2 hour(s)`},
		{"en", "no.such.key", nil, "no.such.key"},
	}
	for _, tt := range tests {
		if got := tr.T(tt.locale, tt.key, tt.data); got != tt.want {
			t.Errorf("T(%s, %s) = %q, want %q", tt.locale, tt.key, got, tt.want)
		}
	}
}

func TestDefaultLocaleFallback(t *testing.T) {
	tr := NewTranslator("it")
	if got := tr.T("", "draft.created", nil); got != "Evvai!!! Evento creato" {
		t.Errorf("T = %q", got)
	}
}

// Every catalog carries the same keys as the English one.
func TestCatalogsComplete(t *testing.T) {
	load := func(locale string) map[string]any {
		b, err := localeFS.ReadFile("active." + locale + ".toml")
		if err != nil {
			t.Fatal(err)
		}
		var m map[string]any
		if err := toml.NewDecoder(bytes.NewReader(b)).Decode(&m); err != nil {
			t.Fatalf("%s: %v", locale, err)
		}
		return m
	}
	en := load("en")
	for _, locale := range Locales[1:] {
		other := load(locale)
		var missing []string
		for key := range en {
			if _, ok := other[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			t.Errorf("%s misses %s", locale, strings.Join(missing, ", "))
		}
	}
}
