package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Language is one of the locales user data is written in.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
	LanguageCatalan Language = "ca"
)

// Languages lists supported locales in display order.
var Languages = []Language{LanguageEnglish, LanguageSpanish, LanguageCatalan}

var languageMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
	language.Make("ca"),
})

// ParseLanguage matches a BCP 47 tag (en, es-ES, ca-AD...) to a supported language.
// Unknown input yields English and false.
func ParseLanguage(raw string) (Language, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LanguageEnglish, false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return LanguageEnglish, false
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return LanguageEnglish, false
	}
	return Languages[idx], true
}

// Label returns the native name of the language.
func (l Language) Label() string {
	switch l {
	case LanguageSpanish:
		return "Español"
	case LanguageCatalan:
		return "Català"
	default:
		return "English"
	}
}

// LocalizedText holds a value in every supported language.
type LocalizedText struct {
	En string `json:"en" gorm:"column:en"`
	Es string `json:"es" gorm:"column:es"`
	Ca string `json:"ca" gorm:"column:ca"`
}

// Get returns the text for lang, falling back to English and then to any non-empty value.
func (t LocalizedText) Get(lang Language) string {
	var v string
	switch lang {
	case LanguageSpanish:
		v = t.Es
	case LanguageCatalan:
		v = t.Ca
	default:
		v = t.En
	}
	if strings.TrimSpace(v) != "" {
		return v
	}
	for _, alt := range []string{t.En, t.Es, t.Ca} {
		if strings.TrimSpace(alt) != "" {
			return alt
		}
	}
	return ""
}

// Set stores v for lang.
func (t *LocalizedText) Set(lang Language, v string) {
	switch lang {
	case LanguageSpanish:
		t.Es = v
	case LanguageCatalan:
		t.Ca = v
	default:
		t.En = v
	}
}

// IsZero reports whether every locale is blank.
func (t LocalizedText) IsZero() bool {
	return strings.TrimSpace(t.En) == "" && strings.TrimSpace(t.Es) == "" && strings.TrimSpace(t.Ca) == ""
}

// Trimmed returns a copy with surrounding whitespace removed from every locale.
func (t LocalizedText) Trimmed() LocalizedText {
	return LocalizedText{
		En: strings.TrimSpace(t.En),
		Es: strings.TrimSpace(t.Es),
		Ca: strings.TrimSpace(t.Ca),
	}
}

// Validate requires a non-empty value in every locale.
func (t LocalizedText) Validate(field string) error {
	var missing []string
	for _, lang := range Languages {
		if strings.TrimSpace(t.exact(lang)) == "" {
			missing = append(missing, string(lang))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is required in %s", ErrValidation, field, strings.Join(missing, ", "))
	}
	return nil
}

// Matches reports whether query is a case-insensitive substring of any locale.
// An empty query matches everything.
func (t LocalizedText) Matches(query string) bool {
	q := cases.Fold().String(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, v := range []string{t.En, t.Es, t.Ca} {
		if strings.Contains(cases.Fold().String(v), q) {
			return true
		}
	}
	return false
}

func (t LocalizedText) exact(lang Language) string {
	switch lang {
	case LanguageSpanish:
		return t.Es
	case LanguageCatalan:
		return t.Ca
	default:
		return t.En
	}
}
