package models

import (
	"time"

	"golang.org/x/text/language"
)

// Locale holds what is needed to render weekday names and task timestamps.
type Locale struct {
	Tag        language.Tag
	Weekdays   [7]string // indexed by time.Weekday
	DateLayout string
	TimeLayout string
}

var (
	// Spanish mirrors es-ES: "5/3/2024", "14:05:09".
	Spanish = Locale{
		Tag:        language.Spanish,
		Weekdays:   [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		DateLayout: "2/1/2006",
		TimeLayout: "15:04:05",
	}

	// English mirrors en-US: "3/5/2024", "2:05:09 PM".
	English = Locale{
		Tag:        language.AmericanEnglish,
		Weekdays:   [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		DateLayout: "1/2/2006",
		TimeLayout: "3:04:05 PM",
	}

	// DefaultLocale is used when no setting or match exists.
	DefaultLocale = Spanish

	supportedLocales = []Locale{Spanish, English}
	localeMatcher    = language.NewMatcher([]language.Tag{Spanish.Tag, English.Tag})
)

// LookupLocale returns the supported locale closest to tag (e.g. "es-MX",
// "en-GB"). ok is false when nothing matched and DefaultLocale was returned.
func LookupLocale(tag string) (loc Locale, ok bool) {
	t, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale, false
	}
	_, idx, conf := localeMatcher.Match(t)
	if conf == language.No {
		return DefaultLocale, false
	}
	return supportedLocales[idx], true
}

// Name returns the BCP 47 base language, e.g. "es".
func (l Locale) Name() string {
	base, _ := l.Tag.Base()
	return base.String()
}

func (l Locale) WeekdayName(wd time.Weekday) string {
	return l.Weekdays[wd]
}

func (l Locale) FormatDate(t time.Time) string {
	return t.Format(l.DateLayout)
}

func (l Locale) FormatTime(t time.Time) string {
	return t.Format(l.TimeLayout)
}
