// Package i18n renders the API's user-facing messages in the caller's language.
package i18n

import (
	"embed"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Message ids shared with the handlers.
const (
	NotFound           = "not_found"
	EventFull          = "event_full"
	AlreadyRegistered  = "already_registered"
	InvalidArgument    = "invalid_argument"
	InvalidBody        = "invalid_body"
	Forbidden          = "forbidden"
	AlreadyExists      = "already_exists"
	CapacityBelowCount = "capacity_below_count"
	Unauthorized       = "unauthorized"
	TokenExpired       = "token_expired"
	TokenMalformed     = "token_malformed"
	Internal           = "internal"
)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *slog.Logger
}

// NewTranslator builds a Translator using the given default locale (e.g. "fr").
// Translations are loaded from the embedded active.*.toml files.
func NewTranslator(defaultLocale string, logger *slog.Logger) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.French
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.fr.toml", "active.en.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Error("i18n: failed to load messages", slog.String("file", file), slog.Any("error", err))
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		logger:          logger,
	}
}

// DefaultLanguage returns the locale used when the caller's is unsupported.
func (t *Translator) DefaultLanguage() language.Tag { return t.defaultLanguage }

// T renders the message identified by key. accept is an Accept-Language
// header value or a bare locale; unsupported languages fall back to the
// default locale, then finally to the key itself.
func (t *Translator) T(accept, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if accept != "" {
		languages = append(languages, accept)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.logger.Warn("i18n: localize failed", slog.String("key", key), slog.Any("languages", languages), slog.Any("error", err))
		return key
	}
	return msg
}
