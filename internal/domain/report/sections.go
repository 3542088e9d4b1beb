package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/bryanwahyu/achalasia-report/internal/domain/analysis"
)

const (
	inputStripHeight  = 12.0
	inputStripAdvance = 18.0

	cardHeight  = 28.0
	cardAdvance = 34.0

	gridColumns  = 3
	gridRowPitch = 10.0
	gridCell     = 8.0
	gridGap      = 3.0
	gridAfter    = 6.0

	tableHeader      = 7.0
	tableHeaderPitch = 8.0
	tableLine        = 3.5
	tablePad         = 4.5
	findingColWidth  = 93.0
	locationColWidth = 40.0
	tableAfter       = 4.0

	bodySize   = 7.5
	tableSize  = 7.0
	bodyLine   = 4.0
	notesPad   = 6.0
	notesInset = 8.0
	notesAfter = 6.0

	truncatedMarker = " ... (truncated)"

	listPitch = 6.0
	listAfter = 4.0

	badgeWidth  = 12.0
	badgeHeight = 6.0
	recInset    = 18.0
	recPad      = 4.0
)

func (s *Session) sectionTitle(sec Section, label string) {
	s.draw(sec, textAt(s.geo.Margin, s.y+4, 10, SwatchNavy, label).bold().withRole(string(sec)+".title"))
	s.y += sectionTitleSpace
}

// InputFile draws the strip naming the analysed file.
func (s *Session) InputFile(fileName, imageType string, quality analysis.ImageQuality) {
	g := s.geo
	s.Reserve(inputStripHeight)
	top := s.y
	x := g.Margin

	s.draw(SectionInputFile, roundedRect(x, top, g.ContentWidth(), inputStripHeight, 2, SwatchLightGray, SwatchNone))
	s.draw(SectionInputFile, textAt(x+4, top+5, 8, SwatchMuted, "INPUT FILE:"))
	name := Ellipsize(s.m, fileName, g.ContentWidth()-34, 9)
	s.draw(SectionInputFile, textAt(x+30, top+5, 9, SwatchText, name).bold().withRole("input_file.name"))
	s.draw(SectionInputFile, textAt(x+4, top+10, 8, SwatchMuted, "Image Type: "+orNA(imageType)))
	s.draw(SectionInputFile, textAt(x+80, top+10, 8, SwatchMuted, "Image Quality: "+orNA(string(quality))))

	s.place(SectionInputFile, top, top+inputStripHeight, true)
	s.y += inputStripAdvance
}

// DiagnosisCard draws the primary diagnosis summary. The card is never split.
func (s *Session) DiagnosisCard(r analysis.Result) {
	g := s.geo
	s.Reserve(cardHeight)
	top := s.y
	x := g.Margin
	accent := ToneSwatch(analysis.DiagnosisTone(r.Diagnosis))
	scoreX := g.Width - g.Margin - 35

	s.draw(SectionDiagnosis, roundedRect(x, top, g.ContentWidth(), cardHeight, 2, SwatchNone, SwatchBorder))
	s.draw(SectionDiagnosis, roundedRect(x+2, top+2, 4, cardHeight-4, 1, accent, SwatchNone).withRole("diagnosis.accent"))
	s.draw(SectionDiagnosis, textAt(x+10, top+7, 7, SwatchMuted, "PRIMARY DIAGNOSIS"))
	s.draw(SectionDiagnosis, textAt(x+10, top+16, 16, SwatchText, "Achalasia Cardia — "+string(r.Diagnosis)).bold().withRole("diagnosis.label"))
	s.draw(SectionDiagnosis, textAt(scoreX, top+7, 7, SwatchMuted, "CONFIDENCE"))
	s.draw(SectionDiagnosis, textAt(scoreX, top+20, 22, accent, fmt.Sprintf("%d%%", r.Confidence)).bold().withRole("diagnosis.confidence"))
	if r.AccuracyScore != nil {
		s.draw(SectionDiagnosis, textAt(scoreX, top+25, 7, SwatchMuted, fmt.Sprintf("ACCURACY %d%%", *r.AccuracyScore)).withRole("diagnosis.accuracy"))
	}
	if r.AchalasiaType.Classified() {
		s.draw(SectionDiagnosis, textAt(x+10, top+25, 8, SwatchMuted, "Classification: "+string(r.AchalasiaType)).withRole("diagnosis.classification"))
	}

	s.place(SectionDiagnosis, top, top+cardHeight, true)
	s.y += cardAdvance
}

// IndicatorGrid draws the six key indicators three to a row. Rows flow onto
// the next page one at a time.
func (s *Session) IndicatorGrid(k analysis.KeyIndicators) {
	g := s.geo
	items := k.List()
	colW := g.ContentWidth() / gridColumns
	rows := int(math.Ceil(float64(len(items)) / gridColumns))

	s.Reserve(sectionTitleSpace + gridRowPitch)
	s.sectionTitle(SectionIndicators, "KEY INDICATORS")

	for row := 0; row < rows; row++ {
		if row > 0 {
			s.Reserve(gridRowPitch)
		}
		top := s.y
		for col := 0; col < gridColumns; col++ {
			i := row*gridColumns + col
			if i >= len(items) {
				break
			}
			ind := items[i]
			x := g.Margin + float64(col)*colW

			fill, role := SwatchLightGray, "indicator.absent"
			if ind.Detected {
				fill, role = SwatchDetected, "indicator.detected"
			}
			s.draw(SectionIndicators, roundedRect(x, top, colW-gridGap, gridCell, 1, fill, SwatchNone).withRole(role))
			if ind.Detected {
				s.draw(SectionIndicators, Element{Shape: ShapeCircle, X: x + 4, Y: top + 4, Radius: 1.3, Fill: SwatchSuccess})
			} else {
				s.draw(SectionIndicators, Element{Shape: ShapeCircle, X: x + 4, Y: top + 4, Radius: 1.3, Stroke: SwatchMuted, LineWidth: 0.3})
			}
			s.draw(SectionIndicators, textAt(x+8, top+5.5, bodySize, SwatchText, ind.Label))
		}
		s.place(SectionIndicators, top, top+gridCell, false)
		s.y += gridRowPitch
	}
	s.y += gridAfter
}

// FindingsTable draws one row per finding. Row height follows the wrapped
// finding and location text.
func (s *Session) FindingsTable(findings []analysis.Finding) {
	if len(findings) == 0 {
		return
	}
	g := s.geo
	x := g.Margin
	cw := g.ContentWidth()

	for i, f := range findings {
		findLines := Wrap(s.m, f.Finding, findingColWidth, tableSize)
		locLines := Wrap(s.m, f.Location, locationColWidth, tableSize)
		rowH := float64(max(len(findLines), len(locLines)))*tableLine + tablePad

		if i == 0 {
			s.Reserve(sectionTitleSpace + tableHeaderPitch + rowH)
			s.sectionTitle(SectionFindings, "DETAILED FINDINGS")
			s.draw(SectionFindings, roundedRect(x, s.y, cw, tableHeader, 1, SwatchNavy, SwatchNone))
			s.draw(SectionFindings, textAt(x+3, s.y+5, tableSize, SwatchWhite, "Finding").bold())
			s.draw(SectionFindings, textAt(x+100, s.y+5, tableSize, SwatchWhite, "Severity").bold())
			s.draw(SectionFindings, textAt(x+130, s.y+5, tableSize, SwatchWhite, "Location").bold())
			s.y += tableHeaderPitch
		} else {
			s.Reserve(rowH)
		}

		top := s.y
		if i%2 == 0 {
			s.draw(SectionFindings, rect(x, top-1, cw, rowH, SwatchLightGray).withRole("findings.stripe"))
		}
		s.draw(SectionFindings, textBlock(x+3, top+4, tableSize, tableLine, SwatchText, findLines).withRole("findings.finding"))
		sevColor := ToneSwatch(analysis.SeverityTone(f.Severity))
		s.draw(SectionFindings, textAt(x+100, top+4, tableSize, sevColor, orNA(string(f.Severity))).withRole("findings.severity"))
		s.draw(SectionFindings, textBlock(x+130, top+4, tableSize, tableLine, SwatchMuted, locLines))

		s.place(SectionFindings, top, top+rowH, false)
		s.y += rowH
	}
	s.y += tableAfter
}

// ClinicalNotes draws the interpretation paragraph in one bordered block
// together with its title. The block is never split across pages.
func (s *Session) ClinicalNotes(notes string) {
	g := s.geo
	x := g.Margin
	cw := g.ContentWidth()
	lines := Wrap(s.m, notes, cw-notesInset, bodySize)
	lines, truncated := s.capNotes(lines, cw-notesInset)
	blockH := float64(len(lines))*bodyLine + notesPad

	s.Reserve(sectionTitleSpace + blockH)
	top := s.y
	s.sectionTitle(SectionNotes, "CLINICAL INTERPRETATION")
	s.draw(SectionNotes, roundedRect(x, s.y, cw, blockH, 2, SwatchNone, SwatchBorder).withRole("clinical_notes.block"))
	s.draw(SectionNotes, textBlock(x+4, s.y+5, bodySize, bodyLine, SwatchText, lines).withRole("clinical_notes.text"))

	s.place(SectionNotes, top, s.y+blockH, true)
	if truncated {
		s.placements[len(s.placements)-1].Oversized = true
	}
	s.y += blockH + notesAfter
}

// capNotes keeps only the lines that fit one page under the section title.
// The last kept line ends with truncatedMarker.
func (s *Session) capNotes(lines []string, width float64) ([]string, bool) {
	limit := int((s.geo.Usable() - sectionTitleSpace - notesPad) / bodyLine)
	if limit < 1 || len(lines) <= limit {
		return lines, false
	}
	kept := append([]string(nil), lines[:limit]...)
	room := width - s.m.TextWidth(truncatedMarker, bodySize)
	kept[limit-1] = strings.TrimSuffix(Ellipsize(s.m, kept[limit-1], room, bodySize), "...") + truncatedMarker
	return kept, true
}

// Differentials draws one compact line per differential diagnosis.
func (s *Session) Differentials(items []string) {
	if len(items) == 0 {
		return
	}
	g := s.geo
	x := g.Margin

	for i, item := range items {
		if i == 0 {
			s.Reserve(sectionTitleSpace + listPitch)
			s.sectionTitle(SectionDifferentials, "DIFFERENTIAL DIAGNOSES")
		} else {
			s.Reserve(listPitch)
		}
		top := s.y
		s.draw(SectionDifferentials, Element{Shape: ShapeCircle, X: x + 3, Y: top + 2, Radius: 1, Fill: SwatchLightGray})
		label := Ellipsize(s.m, item, g.ContentWidth()-7, bodySize)
		s.draw(SectionDifferentials, textAt(x+7, top+3.5, bodySize, SwatchText, label).withRole("differential.item"))
		s.place(SectionDifferentials, top, top+listPitch, false)
		s.y += listPitch
	}
	s.y += listAfter
}

// Recommendations draws the numbered recommendation list.
func (s *Session) Recommendations(items []string) {
	if len(items) == 0 {
		return
	}
	g := s.geo
	x := g.Margin

	for i, item := range items {
		lines := Wrap(s.m, item, g.ContentWidth()-recInset, bodySize)
		h := float64(len(lines))*bodyLine + recPad
		if i == 0 {
			s.Reserve(sectionTitleSpace + h)
			s.sectionTitle(SectionRecommendations, "RECOMMENDATIONS")
		} else {
			s.Reserve(h)
		}
		top := s.y
		s.draw(SectionRecommendations, roundedRect(x, top, badgeWidth, badgeHeight, 1, SwatchBlue, SwatchNone).withRole("recommendation.badge"))
		s.draw(SectionRecommendations, textAt(x+badgeWidth/2, top+4.2, tableSize, SwatchWhite, fmt.Sprint(i+1)).aligned(AlignCenter))
		s.draw(SectionRecommendations, textBlock(x+15, top+4, bodySize, bodyLine, SwatchText, lines).withRole("recommendation.text"))
		s.place(SectionRecommendations, top, top+h, false)
		s.y += h
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
