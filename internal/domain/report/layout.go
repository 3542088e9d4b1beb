package report

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/achalasia-report/internal/domain/analysis"
)

const (
	DefaultTitle       = "ACHALASIA CARDIA"
	DefaultSubtitle    = "AI-Assisted Diagnostic Report"
	DefaultDisclaimer  = "AI-Assisted Analysis • For Clinical Reference Only • Not a Substitute for Professional Medical Diagnosis"
	DefaultAttribution = "Powered by Gemini 2.5 Pro Vision"
)

// Input is everything the first layout pass needs.
type Input struct {
	Result   analysis.Result
	FileName string
	Header   Header
}

// Footer is the per-page chrome stamped by FinalizeChrome.
type Footer struct {
	Disclaimer  string
	Attribution string
}

func DefaultFooter() Footer {
	return Footer{Disclaimer: DefaultDisclaimer, Attribution: DefaultAttribution}
}

// Layout flows the result onto pages in fixed section order. Sections whose
// data is empty are left out; the indicator grid always renders.
func Layout(in Input, geo Geometry, m Measurer) Document {
	if in.Header.Title == "" {
		in.Header.Title = DefaultTitle
	}
	if in.Header.Subtitle == "" {
		in.Header.Subtitle = DefaultSubtitle
	}
	r := in.Result

	s := NewSession(geo, m, in.Header)
	s.InputFile(in.FileName, r.ImageTypeDetected, r.ImageQuality)
	s.DiagnosisCard(r)
	s.IndicatorGrid(r.KeyIndicators)
	if len(r.Findings) > 0 {
		s.FindingsTable(r.Findings)
	}
	if strings.TrimSpace(r.ClinicalNotes) != "" {
		s.ClinicalNotes(r.ClinicalNotes)
	}
	if len(r.DifferentialDiagnoses) > 0 {
		s.Differentials(r.DifferentialDiagnoses)
	}
	if len(r.Recommendations) > 0 {
		s.Recommendations(r.Recommendations)
	}
	return s.Finish()
}

// FinalizeChrome stamps the footer on every page now that the page count is
// known. Footers from an earlier call are replaced, so it can be reapplied.
func FinalizeChrome(doc Document, f Footer) Document {
	out := doc.clone()
	g := out.Geometry

	placements := out.Placements[:0]
	for _, p := range out.Placements {
		if p.Section != SectionFooter {
			placements = append(placements, p)
		}
	}
	out.Placements = placements

	total := len(out.Pages)
	for i := range out.Pages {
		page := &out.Pages[i]
		kept := page.Elements[:0]
		for _, e := range page.Elements {
			if e.Section != SectionFooter {
				kept = append(kept, e)
			}
		}
		page.Elements = kept

		top := g.FooterTop
		base := top + footerTextOffset
		stamp := func(e Element) {
			e.Section = SectionFooter
			page.Elements = append(page.Elements, e)
		}
		stamp(rect(0, top, g.Width, g.Height-top, SwatchLightGray))
		stamp(Element{Shape: ShapeLine, X: 0, Y: top, W: g.Width, Stroke: SwatchBorder, LineWidth: 0.2})
		stamp(textAt(g.Width/2, base, 6.5, SwatchMuted, f.Disclaimer).aligned(AlignCenter).withRole("footer.disclaimer"))
		stamp(textAt(g.Width-g.Margin, base, 6.5, SwatchMuted, fmt.Sprintf("Page %d of %d", page.Number, total)).aligned(AlignRight).withRole("footer.page"))
		stamp(textAt(g.Margin, base, 6.5, SwatchMuted, f.Attribution).withRole("footer.attribution"))

		out.Placements = append(out.Placements, Placement{Section: SectionFooter, Page: page.Number, Top: top, Bottom: g.Height})
	}
	out.Finalized = true
	return out
}
