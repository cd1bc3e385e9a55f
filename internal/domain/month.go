package domain

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// MonthKeyFormat is the canonical "YYYY-MM" layout. Lexicographic order of
// keys matches chronological order for years 1 to 9999.
const MonthKeyFormat = "2006-01"

var ErrUnsupportedLocale = errors.New("unsupported locale")

// Locale names the months in month labels.
type Locale struct {
	Tag    language.Tag
	months [12]string
}

var (
	LocaleEnglish = Locale{
		Tag: language.English,
		months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
	}

	// Spanish month names are not capitalized.
	LocaleSpanish = Locale{
		Tag: language.Spanish,
		months: [12]string{
			"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
		},
	}
)

var (
	supportedLocales = []Locale{LocaleEnglish, LocaleSpanish}
	localeMatcher    = language.NewMatcher([]language.Tag{language.English, language.Spanish})
)

// ParseLocale resolves a BCP 47 tag such as "en", "en-GB" or "es-MX" to a supported locale.
func ParseLocale(s string) (Locale, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return LocaleEnglish, fmt.Errorf("%w: %q", ErrUnsupportedLocale, s)
	}

	_, idx, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return LocaleEnglish, fmt.Errorf("%w: %q", ErrUnsupportedLocale, s)
	}

	return supportedLocales[idx], nil
}

// MonthLabel formats a month as "December 2024".
func (l Locale) MonthLabel(year int, month time.Month) string {
	names := l.months
	if names[0] == "" {
		names = LocaleEnglish.months
	}
	return fmt.Sprintf("%s %04d", names[month-1], year)
}

func (l Locale) String() string {
	return l.Tag.String()
}

// MonthKey returns the "YYYY-MM" key of the calendar month t falls in, observed in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(MonthKeyFormat)
}
