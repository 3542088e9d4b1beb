package analysis

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
)

func sampleResult() Result {
	return Result{
		Diagnosis:     Positive,
		Confidence:    85,
		AccuracyScore: ScorePtr(78),
		AchalasiaType: TypeII,
		Findings: []Finding{
			{Finding: "Tapered narrowing at the gastroesophageal junction", Severity: Severe, Location: "Distal esophagus / GEJ"},
			{Finding: "Dilated esophageal body measuring 4.5 cm", Severity: Moderate, Location: "Mid esophagus"},
		},
		KeyIndicators: KeyIndicators{
			BirdBeakSign:      Bool(true),
			DilatedEsophagus:  Bool(true),
			AbsentPeristalsis: Bool(false),
			FoodRetention:     Bool(true),
		},
		DifferentialDiagnoses: []string{"Pseudoachalasia", "Esophageal stricture"},
		Recommendations:       []string{"High-resolution manometry", "Upper endoscopy to exclude malignancy"},
		ClinicalNotes:         "Classic bird's beak appearance with proximal dilation.",
		ImageQuality:          Good,
		ImageTypeDetected:     "Barium swallow (esophagram)",
	}
}

func TestExtractRoundTrip(t *testing.T) {
	want := sampleResult()
	body, err := json.MarshalIndent(want, "", "  ")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n" + string(body) + "\n```"},
		{"bare fence", "```\n" + string(body) + "\n```"},
		{"fence after prose", "Here is the assessment:\n```json\n" + string(body) + "\n```\nLet me know."},
		{"unfenced", "  " + string(body) + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Extract(tt.raw)
			if out.Kind != OutcomeParsed {
				t.Fatalf("kind = %s, err = %v", out.Kind, out.Err)
			}
			if !reflect.DeepEqual(out.Result, want) {
				t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", out.Result, want)
			}
			if out.Raw != "" || out.Err != nil {
				t.Fatalf("parsed outcome should not carry raw text or error")
			}
		})
	}
}

func TestExtractFillsDefaults(t *testing.T) {
	out := Extract(`{"diagnosis":"Negative","confidence":91.6,"achalasia_type":"Not Applicable"}`)
	if out.IsFallback() {
		t.Fatalf("unexpected fallback: %v", out.Err)
	}
	r := out.Result
	if r.Confidence != 92 {
		t.Errorf("confidence = %d, want 92", r.Confidence)
	}
	if r.AccuracyScore != nil {
		t.Errorf("accuracy should stay absent")
	}
	if r.Findings == nil || r.DifferentialDiagnoses == nil || r.Recommendations == nil {
		t.Errorf("slices should be defaulted to empty")
	}
	if r.ImageQuality != QualityUnknown || r.ImageTypeDetected != "Unknown" {
		t.Errorf("image fields = %q / %q", r.ImageQuality, r.ImageTypeDetected)
	}
	if r.KeyIndicators.DetectedCount() != 0 {
		t.Errorf("absent indicators must read as not detected")
	}
}

func TestExtractFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "I cannot determine achalasia from this image; it appears to be a chest X-ray."},
		{"broken fence", "```json\n{\"diagnosis\": \"Positive\", \n```"},
		{"array", `[{"diagnosis":"Positive"}]`},
		{"missing diagnosis", `{"confidence": 40}`},
		{"unknown diagnosis", `{"diagnosis": "Probable"}`},
		{"string confidence", `{"diagnosis": "Positive", "confidence": "85"}`},
		{"trailing garbage", `{"diagnosis": "Positive"} and more`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Extract(tt.raw)
			if out.Kind != OutcomeFallback {
				t.Fatalf("kind = %s, want fallback", out.Kind)
			}
			if !errors.Is(out.Err, ai.ErrMalformedResult) {
				t.Fatalf("err = %v, want malformed result", out.Err)
			}
			if out.Raw != tt.raw {
				t.Fatalf("raw not preserved")
			}
			if !reflect.DeepEqual(out.Result, Fallback(tt.raw)) {
				t.Fatalf("result = %+v", out.Result)
			}
		})
	}
}

func TestFallbackShape(t *testing.T) {
	raw := "free text answer"
	r := Fallback(raw)

	if r.Diagnosis != Inconclusive || r.Confidence != 0 {
		t.Fatalf("diagnosis/confidence = %s/%d", r.Diagnosis, r.Confidence)
	}
	if r.AccuracyScore == nil || *r.AccuracyScore != 0 {
		t.Fatalf("accuracy should be 0")
	}
	if r.ClinicalNotes != raw {
		t.Fatalf("notes = %q", r.ClinicalNotes)
	}
	if len(r.Findings) != 0 || len(r.DifferentialDiagnoses) != 0 || r.KeyIndicators.DetectedCount() != 0 {
		t.Fatalf("collections should be empty")
	}
	if !reflect.DeepEqual(r.Recommendations, []string{"Manual review required - AI response format error"}) {
		t.Fatalf("recommendations = %v", r.Recommendations)
	}
	if r.ImageQuality != QualityUnknown || r.ImageTypeDetected != "Unknown" {
		t.Fatalf("image fields = %q / %q", r.ImageQuality, r.ImageTypeDetected)
	}
	if !NewView(r).ManualReview {
		t.Fatalf("view should flag manual review")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := sampleResult()
	c := orig.Clone()

	c.Findings[0].Finding = "changed"
	c.Recommendations[0] = "changed"
	*c.AccuracyScore = 1
	*c.KeyIndicators.BirdBeakSign = false

	if !reflect.DeepEqual(orig, sampleResult()) {
		t.Fatal("mutating the clone leaked into the original")
	}
}
