package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/achalasia-report/internal/domain/analysis"
)

// SampleAnswer returns a canned model answer shaped exactly like the rubric asks,
// wrapped in a markdown fence the way chat models usually reply. File names that
// mention "normal" or "control" get a negative study, everything else a positive one.
func SampleAnswer(fileName string) (string, error) {
	r := positiveSample()
	lower := strings.ToLower(fileName)
	if strings.Contains(lower, "normal") || strings.Contains(lower, "control") {
		r = negativeSample()
	}

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal sample answer: %w", err)
	}
	return "```json\n" + string(b) + "\n```", nil
}

func positiveSample() analysis.Result {
	return analysis.Result{
		Diagnosis:     analysis.Positive,
		Confidence:    86,
		AccuracyScore: analysis.ScorePtr(78),
		AchalasiaType: analysis.TypeII,
		Findings: []analysis.Finding{
			{Finding: "Smooth tapered narrowing at the gastroesophageal junction", Severity: analysis.Severe, Location: "Gastroesophageal junction"},
			{Finding: "Dilated esophageal body measuring approximately 4.5 cm", Severity: analysis.Moderate, Location: "Mid and distal esophagus"},
			{Finding: "Retained barium column with air-fluid level", Severity: analysis.Moderate, Location: "Distal esophagus"},
			{Finding: "No mucosal irregularity suggesting malignancy", Severity: analysis.Normal, Location: "Esophageal mucosa"},
		},
		KeyIndicators: analysis.KeyIndicators{
			BirdBeakSign:      analysis.Bool(true),
			DilatedEsophagus:  analysis.Bool(true),
			AbsentPeristalsis: analysis.Bool(true),
			FoodRetention:     analysis.Bool(true),
			NarrowedLES:       analysis.Bool(true),
			SigmoidEsophagus:  analysis.Bool(false),
		},
		DifferentialDiagnoses: []string{
			"Pseudoachalasia secondary to GEJ malignancy",
			"Peptic stricture",
			"Chagas disease",
		},
		Recommendations: []string{
			"High-resolution manometry to confirm subtype per Chicago Classification v4.0",
			"Upper endoscopy to exclude pseudoachalasia",
			"Timed barium esophagram for baseline emptying",
			"Referral for pneumatic dilation or POEM evaluation",
		},
		ClinicalNotes:     "Findings are characteristic of achalasia with a classic bird's beak configuration and esophageal dilation. Endoscopic evaluation is needed to exclude a malignant cause before treatment.",
		ImageQuality:      analysis.Good,
		ImageTypeDetected: "Barium swallow (esophagram)",
	}
}

func negativeSample() analysis.Result {
	return analysis.Result{
		Diagnosis:     analysis.Negative,
		Confidence:    82,
		AccuracyScore: analysis.ScorePtr(80),
		AchalasiaType: analysis.NotApplicable,
		Findings: []analysis.Finding{
			{Finding: "Normal esophageal caliber with prompt contrast clearance", Severity: analysis.Normal, Location: "Esophageal body"},
		},
		KeyIndicators: analysis.KeyIndicators{
			BirdBeakSign:      analysis.Bool(false),
			DilatedEsophagus:  analysis.Bool(false),
			AbsentPeristalsis: analysis.Bool(false),
			FoodRetention:     analysis.Bool(false),
			NarrowedLES:       analysis.Bool(false),
			SigmoidEsophagus:  analysis.Bool(false),
		},
		DifferentialDiagnoses: []string{},
		Recommendations:       []string{"Clinical correlation if dysphagia persists"},
		ClinicalNotes:         "No radiological evidence of achalasia.",
		ImageQuality:          analysis.Good,
		ImageTypeDetected:     "Barium swallow (esophagram)",
	}
}
