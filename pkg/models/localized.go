package models

// Locale identifies one of the engine's two supported languages.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleZH Locale = "zh"
)

// Localized carries a textual attribute in both supported locales. Pick
// resolves it once at read time instead of computing a field name from the
// active locale at every call site.
type Localized struct {
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// Pick returns the value for locale, falling back to English, then to
// fallback (typically the entity's stable code) if both are empty.
func (l Localized) Pick(locale Locale, fallback string) string {
	if locale == LocaleZH && l.ZH != "" {
		return l.ZH
	}
	if l.EN != "" {
		return l.EN
	}
	if l.ZH != "" {
		return l.ZH
	}
	return fallback
}

// IsEmpty reports whether neither locale has been populated.
func (l Localized) IsEmpty() bool {
	return l.EN == "" && l.ZH == ""
}
