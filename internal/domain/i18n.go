package domain

// LocalizedText carries the Arabic and English renditions of a user-facing
// string. The API stores both and picks one at the HTTP edge based on the
// request locale.
type LocalizedText struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

// In returns the text for the given locale, falling back to English when the
// Arabic rendition is missing.
func (t LocalizedText) In(locale string) string {
	if locale == "ar" && t.Ar != "" {
		return t.Ar
	}
	return t.En
}
