package analysis

// Tone is the presentation accent attached to a diagnosis or severity.
// Every renderer (display payload, PDF) goes through these two functions.
type Tone string

const (
	ToneDanger  Tone = "danger"
	ToneWarning Tone = "warning"
	ToneSuccess Tone = "success"
	ToneInfo    Tone = "info"
)

func DiagnosisTone(d Diagnosis) Tone {
	switch d {
	case Positive:
		return ToneDanger
	case Negative:
		return ToneSuccess
	default:
		return ToneWarning
	}
}

func SeverityTone(s Severity) Tone {
	switch s {
	case Severe:
		return ToneDanger
	case Moderate:
		return ToneWarning
	case Mild:
		return ToneInfo
	default:
		return ToneSuccess
	}
}

// View is the display payload handed to UI consumers next to the raw result.
type View struct {
	Accent        Tone          `json:"accent"`
	Classified    bool          `json:"classified"`
	DetectedCount int           `json:"detected_count"`
	Indicators    []Indicator   `json:"indicators"`
	Findings      []FindingView `json:"findings"`
	ManualReview  bool          `json:"manual_review"`
}

type FindingView struct {
	Finding
	Tone Tone `json:"tone"`
}

func NewView(r Result) View {
	v := View{
		Accent:        DiagnosisTone(r.Diagnosis),
		Classified:    r.AchalasiaType.Classified(),
		DetectedCount: r.KeyIndicators.DetectedCount(),
		Indicators:    r.KeyIndicators.List(),
		Findings:      make([]FindingView, 0, len(r.Findings)),
	}
	for _, f := range r.Findings {
		v.Findings = append(v.Findings, FindingView{Finding: f, Tone: SeverityTone(f.Severity)})
	}
	for _, rec := range r.Recommendations {
		if rec == manualReviewRequired {
			v.ManualReview = true
		}
	}
	return v
}
