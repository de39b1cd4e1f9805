package i18n

import (
	"io"
	"log/slog"
	"testing"

	"golang.org/x/text/language"
)

func newTestTranslator(locale string) *Translator {
	return NewTranslator(locale, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTranslator_T(t *testing.T) {
	tr := newTestTranslator("fr")

	tests := []struct {
		name   string
		accept string
		key    string
		data   map[string]any
		want   string
	}{
		{"default locale", "", EventFull, nil, "Cet événement est complet"},
		{"english", "en", EventFull, nil, "This event is fully booked"},
		{"accept-language header", "en-US,en;q=0.9,fr;q=0.8", NotFound, nil, "Resource not found"},
		{"unsupported falls back", "de", NotFound, nil, "Ressource introuvable"},
		{"template data", "en", InvalidArgument, map[string]any{"Detail": "email is required"}, "Invalid request: email is required"},
		{"unknown key", "en", "no_such_key", nil, "no_such_key"},
		{"empty key", "en", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.T(tt.accept, tt.key, tt.data); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.accept, tt.key, got, tt.want)
			}
		})
	}
}

func TestTranslator_EveryKeyInBothLocales(t *testing.T) {
	tr := newTestTranslator("fr")
	keys := []string{
		NotFound, EventFull, AlreadyRegistered, InvalidArgument, InvalidBody, Forbidden,
		AlreadyExists, CapacityBelowCount, Unauthorized, TokenExpired, TokenMalformed, Internal,
	}
	for _, locale := range []string{"fr", "en"} {
		for _, key := range keys {
			if got := tr.T(locale, key, map[string]any{"Detail": "x"}); got == key {
				t.Errorf("missing %s translation for %q", locale, key)
			}
		}
	}
}

func TestNewTranslator_InvalidDefaultLocale(t *testing.T) {
	tr := newTestTranslator("not a locale!")
	if tr.DefaultLanguage() != language.French {
		t.Errorf("DefaultLanguage() = %v, want fr", tr.DefaultLanguage())
	}
}
