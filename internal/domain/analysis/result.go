package analysis

import (
	"encoding/json"
	"fmt"
	"math"
)

type Diagnosis string

const (
	Positive     Diagnosis = "Positive"
	Negative     Diagnosis = "Negative"
	Inconclusive Diagnosis = "Inconclusive"
)

func (d Diagnosis) Valid() bool {
	switch d {
	case Positive, Negative, Inconclusive:
		return true
	}
	return false
}

// AchalasiaType holds the manometric subtype label exactly as the model reports it.
type AchalasiaType string

const (
	TypeI         AchalasiaType = "Type I (Classic)"
	TypeII        AchalasiaType = "Type II (Panesophageal pressurization)"
	TypeIII       AchalasiaType = "Type III (Spastic)"
	NotApplicable AchalasiaType = "Not Applicable"
)

func (t AchalasiaType) Valid() bool {
	switch t {
	case TypeI, TypeII, TypeIII, NotApplicable:
		return true
	}
	return false
}

// Classified reports whether a subtype should be shown to the reader.
func (t AchalasiaType) Classified() bool {
	return t != "" && t != NotApplicable
}

type Severity string

const (
	Normal   Severity = "Normal"
	Mild     Severity = "Mild"
	Moderate Severity = "Moderate"
	Severe   Severity = "Severe"
)

func (s Severity) Valid() bool {
	switch s {
	case Normal, Mild, Moderate, Severe:
		return true
	}
	return false
}

type ImageQuality string

const (
	Excellent      ImageQuality = "Excellent"
	Good           ImageQuality = "Good"
	Fair           ImageQuality = "Fair"
	Poor           ImageQuality = "Poor"
	QualityUnknown ImageQuality = "Unknown"
)

func (q ImageQuality) Valid() bool {
	switch q {
	case Excellent, Good, Fair, Poor, QualityUnknown:
		return true
	}
	return false
}

// Score is a 0-100 percentage. Any JSON number decodes and is rounded.
type Score int

func (s *Score) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	*s = Score(math.Round(f))
	return nil
}

func ScorePtr(v int) *Score {
	s := Score(v)
	return &s
}

type Finding struct {
	Finding  string   `json:"finding"`
	Severity Severity `json:"severity"`
	Location string   `json:"location"`
}

// Result is the structured assessment of one image.
type Result struct {
	Diagnosis             Diagnosis     `json:"diagnosis"`
	Confidence            Score         `json:"confidence"`
	AccuracyScore         *Score        `json:"accuracy_score,omitempty"`
	AchalasiaType         AchalasiaType `json:"achalasia_type,omitempty"`
	Findings              []Finding     `json:"findings"`
	KeyIndicators         KeyIndicators `json:"key_indicators"`
	DifferentialDiagnoses []string      `json:"differential_diagnoses"`
	Recommendations       []string      `json:"recommendations"`
	ClinicalNotes         string        `json:"clinical_notes,omitempty"`
	ImageQuality          ImageQuality  `json:"image_quality"`
	ImageTypeDetected     string        `json:"image_type_detected"`
}

const (
	unknownImageType     = "Unknown"
	manualReviewRequired = "Manual review required - AI response format error"
)

// Fallback is the degraded result used when a model answer cannot be parsed.
// The raw answer is kept in the clinical notes so a human can still read it.
func Fallback(raw string) Result {
	return Result{
		Diagnosis:             Inconclusive,
		Confidence:            0,
		AccuracyScore:         ScorePtr(0),
		ClinicalNotes:         raw,
		Findings:              []Finding{},
		DifferentialDiagnoses: []string{},
		Recommendations:       []string{manualReviewRequired},
		ImageQuality:          QualityUnknown,
		ImageTypeDetected:     unknownImageType,
	}
}

// WithDefaults fills absent optional fields with their safe defaults.
func (r Result) WithDefaults() Result {
	out := r.Clone()
	if out.Findings == nil {
		out.Findings = []Finding{}
	}
	if out.DifferentialDiagnoses == nil {
		out.DifferentialDiagnoses = []string{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	if out.ImageQuality == "" {
		out.ImageQuality = QualityUnknown
	}
	if out.ImageTypeDetected == "" {
		out.ImageTypeDetected = unknownImageType
	}
	return out
}

// Clone returns a deep copy so callers can hand results around without sharing slices.
func (r Result) Clone() Result {
	out := r
	if r.AccuracyScore != nil {
		v := *r.AccuracyScore
		out.AccuracyScore = &v
	}
	if r.Findings != nil {
		out.Findings = append([]Finding(nil), r.Findings...)
	}
	if r.DifferentialDiagnoses != nil {
		out.DifferentialDiagnoses = append([]string(nil), r.DifferentialDiagnoses...)
	}
	if r.Recommendations != nil {
		out.Recommendations = append([]string(nil), r.Recommendations...)
	}
	out.KeyIndicators = r.KeyIndicators.clone()
	return out
}
