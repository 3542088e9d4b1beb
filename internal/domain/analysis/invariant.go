package analysis

import "fmt"

// Violation describes one way a result breaks the contract promised by the rubric.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string { return v.Field + ": " + v.Message }

// Check reports contract violations without touching the result.
func Check(r Result) []Violation {
	var out []Violation
	add := func(field, format string, args ...any) {
		out = append(out, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !r.Diagnosis.Valid() {
		add("diagnosis", "unknown value %q", r.Diagnosis)
	}
	if r.Diagnosis == Negative && r.AchalasiaType != NotApplicable {
		add("achalasia_type", "negative diagnosis must be %q, got %q", NotApplicable, r.AchalasiaType)
	}
	if r.AchalasiaType != "" && !r.AchalasiaType.Valid() {
		add("achalasia_type", "unknown value %q", r.AchalasiaType)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		add("confidence", "out of range: %d", r.Confidence)
	}
	if r.AccuracyScore != nil && (*r.AccuracyScore < 0 || *r.AccuracyScore > 100) {
		add("accuracy_score", "out of range: %d", *r.AccuracyScore)
	}
	for i, f := range r.Findings {
		if !f.Severity.Valid() {
			add(fmt.Sprintf("findings[%d].severity", i), "unknown value %q", f.Severity)
		}
	}
	if r.ImageQuality != "" && !r.ImageQuality.Valid() {
		add("image_quality", "unknown value %q", r.ImageQuality)
	}
	return out
}
