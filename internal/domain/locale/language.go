package locale

import (
	"errors"
	"fmt"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is one entry of the closed set offered for translation.
type Language struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// DefaultLanguage is used when a city is not in the table.
const DefaultLanguage = "English"

// SourceCode is the language every analysis is produced in.
const SourceCode = "en"

var languages = []Language{
	{Name: "English", Code: "en"},
	{Name: "Hindi", Code: "hi"},
	{Name: "Bengali", Code: "bn"},
	{Name: "Tamil", Code: "ta"},
	{Name: "Telugu", Code: "te"},
	{Name: "Marathi", Code: "mr"},
	{Name: "Gujarati", Code: "gu"},
	{Name: "Kannada", Code: "kn"},
	{Name: "Malayalam", Code: "ml"},
	{Name: "Punjabi", Code: "pa"},
}

var cityLanguage = map[string]string{
	"Delhi":              "Hindi",
	"Mumbai":             "Hindi",
	"Chennai":            "Tamil",
	"Kolkata":            "Bengali",
	"Hyderabad":          "Telugu",
	"Bangalore":          "Kannada",
	"Ahmedabad":          "Gujarati",
	"Pune":               "Marathi",
	"Thiruvananthapuram": "Malayalam",
	"Amritsar":           "Punjabi",
}

// Languages returns the ordered list shown in the language control.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// DefaultFor maps a city to its default language by exact match.
func DefaultFor(city string) string {
	if lang, ok := cityLanguage[city]; ok {
		return lang
	}
	return DefaultLanguage
}

// Lookup finds a language by its display name.
func Lookup(name string) (Language, error) {
	for _, l := range languages {
		if l.Name == name {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
}

// IndexOf returns the position of name in Languages, or -1.
func IndexOf(name string) int {
	for i, l := range languages {
		if l.Name == name {
			return i
		}
	}
	return -1
}
