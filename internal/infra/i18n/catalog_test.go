package i18n

import (
	"strings"
	"testing"
)

func TestTranslator_ResolveBothLanguages(t *testing.T) {
	translator, err := NewTranslator("es", true)
	if err != nil {
		t.Fatalf("NewTranslator returned error: %v", err)
	}

	if got := translator.Resolve("en", CodeLoginSuccess); got != "Login successful." {
		t.Fatalf("unexpected english translation: %q", got)
	}
	if got := translator.Resolve("es", CodeLoginSuccess); got != "Inicio de sesión exitoso." {
		t.Fatalf("unexpected spanish translation: %q", got)
	}
}

func TestTranslator_UnknownLanguageFallsBack(t *testing.T) {
	translator, err := NewTranslator("es", true)
	if err != nil {
		t.Fatalf("NewTranslator returned error: %v", err)
	}

	got := translator.Resolve("fr", CodeForbidden)
	if got != "Acceso denegado." {
		t.Fatalf("expected fallback to spanish, got %q", got)
	}
}

func TestTranslator_EveryCodeHasBothTranslations(t *testing.T) {
	translator, err := NewTranslator("es", true)
	if err != nil {
		t.Fatalf("NewTranslator returned error: %v", err)
	}

	for _, tr := range translations {
		for _, lang := range SupportedLanguages {
			got := translator.Resolve(lang, tr.code)
			if got == string(tr.code) || strings.TrimSpace(got) == "" {
				t.Fatalf("code %q missing %s translation", tr.code, lang)
			}
		}
	}
}

func TestTranslator_StrictModePanicsOnMissingCode(t *testing.T) {
	translator, err := NewTranslator("es", true)
	if err != nil {
		t.Fatalf("NewTranslator returned error: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown code in strict mode")
		}
	}()

	translator.Resolve("es", Code("does_not_exist"))
}

func TestTranslator_LenientModeEchoesCode(t *testing.T) {
	translator, err := NewTranslator("es", false)
	if err != nil {
		t.Fatalf("NewTranslator returned error: %v", err)
	}

	if got := translator.Resolve("es", Code("does_not_exist")); got != "does_not_exist" {
		t.Fatalf("expected raw code, got %q", got)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"es":    "es",
		"ES":    "es",
		"es-MX": "es",
		"en-US": "en",
		"de":    "",
		"":      "",
	}

	for input, want := range cases {
		if got := NormalizeLanguage(input); got != want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", input, got, want)
		}
	}
}
