package prompt

import (
	"encoding/json"
	"strings"
)

const systemPrompt = `
As a highly skilled medical practitioner specializing in image analysis, you are tasked with examining medical images for a renowned hospital. Your expertise is crucial in identifying any anomalies, diseases, or health issues that may be present in the image.

Your Responsibility:

1. **Give the name of the disease as the heading in bold letters.**
2. **Detailed Analysis:** Thoroughly analyze each image, focusing on identifying any abnormal findings.
3. **Findings Report:** Document all observed anomalies or signs of disease. Clearly articulate these findings in a structured format.
4. **Recommendations and Next Steps:** Based on your analysis, suggest potential next steps, including further tests or treatments as applicable.
5. **Treatment Suggestions:** If appropriate, recommend possible treatment options or interventions.

Important Notes:

- Scope of Response: Only respond if the image pertains to human health issues.
- Clarity of Images: In cases where the image quality impedes clear analysis, note that certain aspects are 'Unable to be determined based on the provided image'.
- Disclaimer: Accompany your analysis with a disclaimer: "Consult with a doctor before making any decisions."
- Your insights are valuable in guiding clinical decisions. Please proceed with the analysis, adhering to the structured approach outlined above.

Please provide me an output response with these four headings: **Detailed Analysis**, **Findings Report**, **Recommendations and Next Steps**, **Treatment Suggestions**.
`

const userPrefix = "Analyze this medical image and provide findings: "

const structuredSuffix = `

Respond with one valid JSON object only (no code fences) using this schema:
{
  "headline": "<name of the disease, plain text>",
  "report": "<the full report in markdown, headline in bold first>"
}`

// GetSystemPrompt returns the instructions sent as the system message.
func GetSystemPrompt(structured bool) string {
	if structured {
		return systemPrompt + structuredSuffix
	}
	return systemPrompt
}

// GetUserPrompt is the user message: a leading context line followed by the
// same instructional template.
func GetUserPrompt() string {
	return userPrefix + systemPrompt
}

// Structured matches the schema requested by structuredSuffix.
type Structured struct {
	Headline string `json:"headline"`
	Report   string `json:"report"`
}

// ParseStructured decodes a structured answer. ok is false when content is not
// a JSON object with a non-empty report, in which case callers should treat
// content as free text.
func ParseStructured(content string) (Structured, bool) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	var out Structured
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &out); err != nil {
		return Structured{}, false
	}
	if strings.TrimSpace(out.Report) == "" {
		return Structured{}, false
	}
	return out, true
}
