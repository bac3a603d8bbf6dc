package i18n

import (
	"fmt"
	"log"
)

// DefaultLanguage is the fallback used when an entity has no translation
// for the requested language.
const DefaultLanguage = "en"

// Translated is any per-language record attached to a base entity.
type Translated interface {
	TranslationLanguage() string
}

// Pick returns the record matching language, falling back to
// DefaultLanguage. Returns an error only when neither exists, which
// indicates a data-integrity problem on the base entity.
func Pick[T Translated](records []T, language string) (T, error) {
	var fallback T
	haveFallback := false
	for _, r := range records {
		switch r.TranslationLanguage() {
		case language:
			return r, nil
		case DefaultLanguage:
			fallback = r
			haveFallback = true
		}
	}
	if haveFallback {
		return fallback, nil
	}
	var zero T
	return zero, fmt.Errorf("no %q or %q translation found", language, DefaultLanguage)
}

// PickLogged is Pick with the degraded-lookup warning the API handlers
// use: a missing requested language is logged, never an error, so one
// untranslated question can't fail a whole request.
func PickLogged[T Translated](records []T, language string, entity string, id uint) (T, error) {
	for _, r := range records {
		if r.TranslationLanguage() == language {
			return r, nil
		}
	}
	log.Printf("[i18n] no %s translation for %s id %d, falling back to %s", language, entity, id, DefaultLanguage)
	return Pick(records, language)
}
