package i18n

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "en"

// ErrUnsupportedLanguage is returned when a language tag cannot be parsed or
// matched to any supported language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// supported lists the languages with a full set of messages.
// The first entry is the matcher's fallback.
var supported = []language.Tag{
	language.English,
	language.Russian,
}

var (
	matcher = language.NewMatcher(supported)
	cat     = mustBuildCatalog()
)

func mustBuildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, byLang := range translations {
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
		for tag, text := range byLang {
			if err := b.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Supported returns the supported language tags as strings.
func Supported() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		out[i] = tag.String()
	}
	return out
}

// Match resolves lang to a supported language. An empty string selects
// DefaultLanguage.
func Match(lang string) (language.Tag, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.Und, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedLanguage, lang, Supported())
	}
	return supported[index], nil
}

// Localizer renders messages in one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for lang.
func New(lang string) (*Localizer, error) {
	tag, err := Match(lang)
	if err != nil {
		return nil, err
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}, nil
}

// Default returns an English Localizer.
func Default() *Localizer {
	l, err := New(DefaultLanguage)
	if err != nil {
		panic(err)
	}
	return l
}

// Language returns the matched language tag.
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Text returns the message for key in the Localizer's language.
// String arguments are substituted into the key's verbs.
func (l *Localizer) Text(key string, args ...string) string {
	a := make([]any, len(args))
	for i, s := range args {
		a[i] = s
	}
	return l.printer.Sprintf(key, a...)
}

// Title returns the message for key with title casing for the language.
func (l *Localizer) Title(key string, args ...string) string {
	return cases.Title(l.tag).String(l.Text(key, args...))
}

// Header returns the report header naming file.
func (l *Localizer) Header(file string) string {
	return l.Text(KeyHeader, file)
}

// NotFound returns the notice printed when file does not exist.
func (l *Localizer) NotFound(file string) string {
	return l.Text(KeyNotFound, file)
}
