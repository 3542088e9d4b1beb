package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/achalasia-report/internal/domain/analysis"
	"github.com/bryanwahyu/achalasia-report/internal/domain/report"
)

func layout(t *testing.T, r analysis.Result) report.Document {
	t.Helper()
	doc := report.Layout(report.Input{
		Result:   r,
		FileName: "swallow.png",
		Header:   report.Header{ReportID: "ACH-TEST", Date: "January 2, 2026", Time: "3:04:05 PM"},
	}, report.A4(), NewMeasurer())
	return report.FinalizeChrome(doc, report.DefaultFooter())
}

func TestRenderProducesPDF(t *testing.T) {
	r := analysis.Result{
		Diagnosis:     analysis.Positive,
		Confidence:    91,
		AchalasiaType: analysis.TypeI,
		Findings: []analysis.Finding{
			{Finding: "Bird's beak narrowing", Severity: analysis.Severe, Location: "GEJ"},
		},
		KeyIndicators:   analysis.KeyIndicators{BirdBeakSign: analysis.Bool(true)},
		Recommendations: []string{"Manometry"},
		ClinicalNotes:   "Classic appearance — confirm with endoscopy.",
	}.WithDefaults()
	doc := layout(t, r)

	out, err := NewRenderer().Render(doc, report.Meta{Title: "Achalasia Report", Created: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:min(len(out), 16)])
	}
	if !bytes.Contains(out, []byte(fmt.Sprintf("/Count %d", doc.PageCount()))) {
		t.Fatalf("page tree does not list %d pages", doc.PageCount())
	}
}

func TestRenderManyPages(t *testing.T) {
	r := analysis.Result{Diagnosis: analysis.Inconclusive}.WithDefaults()
	for i := 0; i < 60; i++ {
		r.Findings = append(r.Findings, analysis.Finding{
			Finding:  strings.Repeat("Retained contrast with delayed emptying ", 3),
			Severity: analysis.Moderate,
			Location: "Distal esophagus",
		})
	}
	doc := layout(t, r)
	if doc.PageCount() < 3 {
		t.Fatalf("expected a long table to span pages, got %d", doc.PageCount())
	}

	out, err := NewRenderer().Render(doc, report.Meta{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out, []byte(fmt.Sprintf("/Count %d", doc.PageCount()))) {
		t.Fatalf("page tree does not list %d pages", doc.PageCount())
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	if _, err := NewRenderer().Render(report.Document{}, report.Meta{}); err == nil {
		t.Fatal("expected an error for a document without pages")
	}
}

func TestMeasurer(t *testing.T) {
	m := NewMeasurer()
	short, long := m.TextWidth("abc", 10), m.TextWidth("abcabc", 10)
	if short <= 0 || long <= short {
		t.Fatalf("widths %v, %v", short, long)
	}
	if big := m.TextWidth("abc", 20); big <= short*1.9 || big >= short*2.1 {
		t.Fatalf("width should scale with font size: %v vs %v", big, short)
	}
	if m.TextWidth("", 10) != 0 {
		t.Fatal("empty text has no width")
	}
}

func TestColourFallsBackToText(t *testing.T) {
	if colour(report.Swatch(200)) != palette[report.SwatchText] {
		t.Fatal("unknown swatch should use the text colour")
	}
}
