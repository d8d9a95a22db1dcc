package report

import (
	"regexp"
	"strings"
)

const (
	// UnknownDisease is shown when the report has no emphasized headline.
	UnknownDisease = "Unknown Disease"

	// UrgencyHigh is the only urgency the service reports today.
	UrgencyHigh = "High"

	// ErrorPrefix starts the text of every degraded analysis.
	ErrorPrefix = "Error:"
)

// Analysis is the stored result of one analyze action. A failed analysis
// still carries displayable text ("Error: ...") so callers render it as-is.
type Analysis struct {
	Text     string `json:"text"`
	Failed   bool   `json:"failed"`
	Headline string `json:"-"`
}

// Failure builds the degraded variant for a failed model call.
func Failure(detail string) Analysis {
	return Analysis{Text: ErrorPrefix + " " + detail, Failed: true}
}

// Disease is the headline finding. Found is false when nothing was extracted.
type Disease struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// Label returns the display name, falling back to UnknownDisease.
func (d Disease) Label() string {
	if !d.Found {
		return UnknownDisease
	}
	return d.Name
}

var boldSpan = regexp.MustCompile(`\*\*(.*?)\*\*`)

// ExtractDisease returns the content of the first **bold** span.
// Matching is non-greedy and does not cross line breaks, so
// "**a **b** c**" yields "a ".
func ExtractDisease(text string) Disease {
	m := boldSpan.FindStringSubmatch(text)
	if m == nil {
		return Disease{}
	}
	return Disease{Name: m[1], Found: true}
}

// DiseaseOf prefers a structured headline and falls back to scraping bold text.
func DiseaseOf(a Analysis) Disease {
	if h := strings.TrimSpace(a.Headline); h != "" {
		return Disease{Name: h, Found: true}
	}
	return ExtractDisease(a.Text)
}
