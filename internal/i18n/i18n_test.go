package i18n

import (
	"testing"
)

type record struct {
	lang string
	text string
}

func (r record) TranslationLanguage() string { return r.lang }

func TestPick_ExactMatch(t *testing.T) {
	records := []record{{"en", "hello"}, {"fr", "bonjour"}}
	got, err := Pick(records, "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.text != "bonjour" {
		t.Errorf("expected the fr record, got %q", got.text)
	}
}

func TestPick_FallsBackToDefault(t *testing.T) {
	records := []record{{"en", "hello"}, {"fr", "bonjour"}}
	got, err := Pick(records, "zu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.text != "hello" {
		t.Errorf("expected the en fallback, got %q", got.text)
	}
}

func TestPick_NoTranslationAtAll(t *testing.T) {
	records := []record{{"fr", "bonjour"}}
	if _, err := Pick(records, "zu"); err == nil {
		t.Error("expected an error when neither the language nor the default exists")
	}
}

func TestPickLogged_FallsBackWithoutError(t *testing.T) {
	records := []record{{"en", "hello"}}
	got, err := PickLogged(records, "fr", "question", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.text != "hello" {
		t.Errorf("expected the en fallback, got %q", got.text)
	}
}
