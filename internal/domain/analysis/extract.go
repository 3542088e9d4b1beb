package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bryanwahyu/achalasia-report/internal/domain/ai"
)

// Models often wrap JSON in a markdown fence even when told not to.
var fencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

type OutcomeKind int

const (
	OutcomeParsed OutcomeKind = iota
	OutcomeFallback
)

func (k OutcomeKind) String() string {
	if k == OutcomeParsed {
		return "parsed"
	}
	return "fallback"
}

func (k OutcomeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Outcome is the tagged result of Extract. Raw and Err are only set for fallbacks.
type Outcome struct {
	Kind   OutcomeKind
	Result Result
	Raw    string
	Err    error
}

func (o Outcome) IsFallback() bool { return o.Kind == OutcomeFallback }

// Extract turns raw model text into a Result. It never fails: anything that
// does not parse as a result becomes the Fallback carrying the raw text.
func Extract(raw string) Outcome {
	r, err := parse(raw)
	if err != nil {
		return Outcome{
			Kind:   OutcomeFallback,
			Result: Fallback(raw),
			Raw:    raw,
			Err:    ai.MalformedResult(err),
		}
	}
	return Outcome{Kind: OutcomeParsed, Result: r.WithDefaults()}
}

func parse(raw string) (Result, error) {
	candidate := raw
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	}
	candidate = strings.TrimSpace(candidate)

	var r Result
	if err := json.Unmarshal([]byte(candidate), &r); err != nil {
		return Result{}, err
	}
	if !r.Diagnosis.Valid() {
		return Result{}, fmt.Errorf("unrecognized diagnosis %q", r.Diagnosis)
	}
	return r, nil
}
