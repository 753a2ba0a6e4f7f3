package i18n

import (
	"errors"
	"testing"

	"golang.org/x/text/language"
)

// TestMatch tests resolving language tags.
func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lang string
		want language.Tag
	}{
		{name: "empty defaults to English", lang: "", want: language.English},
		{name: "English", lang: "en", want: language.English},
		{name: "regional English", lang: "en-GB", want: language.English},
		{name: "Russian", lang: "ru", want: language.Russian},
		{name: "regional Russian", lang: "ru-RU", want: language.Russian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Match(tt.lang)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, expected %v", got, tt.want)
			}
		})
	}

	t.Run("unparsable tag is rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := Match("not a language!"); !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
		}
	})
}

// TestLocalizerEnglish tests the default English strings.
func TestLocalizerEnglish(t *testing.T) {
	t.Parallel()

	l := Default()

	if got := l.Header("index.html"); got != "Tag analysis for file: index.html" {
		t.Errorf("unexpected header: %q", got)
	}
	if got := l.NotFound("x.html"); got != "Error: file 'x.html' not found!" {
		t.Errorf("unexpected not-found message: %q", got)
	}
	if got := l.Text(KeyOpen); got != "open" {
		t.Errorf("unexpected open label: %q", got)
	}
	if got := l.Title(KeyBalanced); got != "Balanced" {
		t.Errorf("unexpected title: %q", got)
	}
}

// TestLocalizerRussian tests the Russian strings.
func TestLocalizerRussian(t *testing.T) {
	t.Parallel()

	l, err := New("ru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		got  string
		want string
	}{
		{l.Header("index.html"), "Анализ тегов для файла: index.html"},
		{l.NotFound("x.html"), "Ошибка: Файл 'x.html' не найден!"},
		{l.Text(KeyOpen), "открыт"},
		{l.Text(KeyClosed), "закрыт"},
		{l.Text(KeyDifference), "разница"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, expected %q", tt.got, tt.want)
		}
	}

	if l.Language() != language.Russian {
		t.Errorf("expected Russian, got %v", l.Language())
	}
}

// TestEveryKeyHasRussian tests catalog completeness.
func TestEveryKeyHasRussian(t *testing.T) {
	t.Parallel()

	for key, byLang := range translations {
		if _, ok := byLang[language.Russian]; !ok {
			t.Errorf("missing Russian translation for %q", key)
		}
	}
}
