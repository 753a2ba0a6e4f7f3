// Package i18n provides the localized strings printed by tagbalance.
//
// Messages are registered in a golang.org/x/text catalog keyed by their
// English text and rendered with a message.Printer. Supported languages are
// English (the default) and Russian. Any BCP 47 tag is accepted and matched
// to the closest supported language, so "ru-RU" or "ru_UA.UTF-8"-style
// values derived from the environment resolve to Russian.
//
// Counts are never passed through the printer: numbers are laid out with
// fmt by the report writers so columns stay aligned in every language.
package i18n
