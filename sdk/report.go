package niramoy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/niramoy/niramoy-go/pkg/gemini"
)

// Report is a structured consultation summary in English, suitable for the
// PDF export.
type Report struct {
	Diagnosis   string   `json:"diagnosis"`
	Summary     string   `json:"summary"`
	Advice      []string `json:"advice"`
	Medications []string `json:"medications"`
	Tests       []string `json:"tests"`
}

var reportSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"diagnosis": {"type": "string"},
		"summary": {"type": "string"},
		"advice": {"type": "array", "items": {"type": "string"}},
		"medications": {"type": "array", "items": {"type": "string"}},
		"tests": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["diagnosis", "summary", "advice", "medications", "tests"]
}`)

// fallbackReport stands in when report generation fails so the patient
// still gets a document.
func fallbackReport() *Report {
	return &Report{
		Diagnosis:   "Unknown",
		Summary:     "Report generation failed.",
		Advice:      []string{},
		Medications: []string{},
		Tests:       []string{},
	}
}

// GenerateReport distills the consultation into a structured English report.
// The returned report is always non-nil: on failure it carries placeholder
// values and the error explains what went wrong.
func (c *Consultation) GenerateReport(ctx context.Context) (*Report, error) {
	var convo strings.Builder
	for _, msg := range c.History {
		speaker := "Doctor"
		if msg.Role == "user" {
			speaker = "Patient"
		}
		fmt.Fprintf(&convo, "%s: %s\n", speaker, msg.Text)
	}

	prompt := fmt.Sprintf(`
Analyze the following doctor-patient conversation (which may be in Bangla) and generate a structured medical report in ENGLISH.

Patient Details:
Name: %s
Age: %d
Gender: %s

Conversation History:
%s

Task:
Extract the following information and translate it into clear, professional ENGLISH for a medical record:
1. **diagnosis**: A short provisional diagnosis (e.g., Viral Fever, Migraine, Gastritis). If unclear, write "Observation needed".
2. **summary**: A 2-line summary of the patient's main complaints and history in English.
3. **advice**: A list of lifestyle advice given (e.g., drink water, rest) in English.
4. **medications**: A list of suggested OTC medications mentioned. If none, return empty list. Translate instructions to English.
5. **tests**: A list of suggested lab tests in English. If none, return empty list.

Return ONLY valid JSON.
`, c.Patient.Name, c.Patient.Age, c.Patient.Gender, convo.String())

	resp, err := c.service.generator.GenerateContent(ctx, TriageModel, &gemini.Request{
		Contents:         []gemini.Content{gemini.Text("user", prompt)},
		GenerationConfig: gemini.JSONConfig(reportSchema),
	})
	if err != nil {
		return fallbackReport(), err
	}

	var report Report
	if err := json.Unmarshal([]byte(resp.Text()), &report); err != nil {
		return fallbackReport(), fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}
