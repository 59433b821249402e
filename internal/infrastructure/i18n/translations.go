package i18n

import (
	"embed"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"eventbot/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

// Locales shipped with the binary.
var Locales = []string{"en", "fr", "it"}

var _ output.T = (*Translator)(nil)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag

	mu         sync.Mutex
	localizers map[string]*i18n.Localizer
}

// NewTranslator builds a Translator from the embedded active.*.toml catalogs
// with defaultLocale as the fallback language. English is used when
// defaultLocale does not parse.
func NewTranslator(defaultLocale string) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, locale := range Locales {
		file := "active." + locale + ".toml"
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			slog.Error("i18n: load catalog", slog.String("file", file), slog.String("error", err.Error()))
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		localizers:      map[string]*i18n.Localizer{},
	}
}

// T renders the message identified by key for the given locale.
// If the key/locale is not found, it falls back to the default locale,
// then English, then finally to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Warn("i18n: localize failed", slog.String("key", key), slog.String("locale", locale), slog.String("error", err.Error()))
		return key
	}
	return msg
}

func (t *Translator) localizer(locale string) *i18n.Localizer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.localizers[locale]; ok {
		return l
	}
	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())
	l := i18n.NewLocalizer(t.bundle, languages...)
	t.localizers[locale] = l
	return l
}
