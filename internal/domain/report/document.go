package report

import "github.com/bryanwahyu/achalasia-report/internal/domain/analysis"

// Swatch names a palette entry. Renderers own the actual colours.
type Swatch uint8

const (
	SwatchNone Swatch = iota
	SwatchNavy
	SwatchBlue
	SwatchWhite
	SwatchLightGray
	SwatchText
	SwatchMuted
	SwatchSuccess
	SwatchWarning
	SwatchDanger
	SwatchBorder
	SwatchDetected
)

// ToneSwatch maps a presentation tone onto the palette.
func ToneSwatch(t analysis.Tone) Swatch {
	switch t {
	case analysis.ToneDanger:
		return SwatchDanger
	case analysis.ToneWarning:
		return SwatchWarning
	case analysis.ToneInfo:
		return SwatchBlue
	default:
		return SwatchSuccess
	}
}

type Shape uint8

const (
	ShapeRect Shape = iota
	ShapeRoundedRect
	ShapeCircle
	ShapeLine
	ShapeText
)

type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type Section string

const (
	SectionHeader          Section = "header"
	SectionInputFile       Section = "input_file"
	SectionDiagnosis       Section = "diagnosis"
	SectionIndicators      Section = "key_indicators"
	SectionFindings        Section = "findings"
	SectionNotes           Section = "clinical_notes"
	SectionDifferentials   Section = "differential_diagnoses"
	SectionRecommendations Section = "recommendations"
	SectionFooter          Section = "footer"
)

// FlowOrder is the order in which body sections are laid out.
var FlowOrder = []Section{
	SectionInputFile,
	SectionDiagnosis,
	SectionIndicators,
	SectionFindings,
	SectionNotes,
	SectionDifferentials,
	SectionRecommendations,
}

// Element is one drawing operation.
//
// Rects use X, Y, W, H. Circles are centred on X, Y with Radius. Lines run
// from (X, Y) to (X+W, Y+H). Text draws Lines from baseline Y, LineHeight apart,
// anchored at X according to Align.
type Element struct {
	Shape   Shape
	Section Section
	Role    string

	X, Y, W, H float64
	Radius     float64

	Fill      Swatch
	Stroke    Swatch
	LineWidth float64

	Lines      []string
	LineHeight float64
	FontSize   float64
	Bold       bool
	Color      Swatch
	Align      Align
}

type Page struct {
	Number   int
	Elements []Element
}

// Placement records where one unit of a section landed.
type Placement struct {
	Section   Section
	Page      int
	Top       float64
	Bottom    float64
	Atomic    bool
	Oversized bool
}

// Document is the laid-out report, independent of any output format.
type Document struct {
	Geometry   Geometry
	Pages      []Page
	Placements []Placement
	Finalized  bool
}

func (d Document) PageCount() int { return len(d.Pages) }

// Sections lists sections in the order they first appear.
func (d Document) Sections() []Section {
	seen := map[Section]bool{}
	var out []Section
	for _, p := range d.Placements {
		if !seen[p.Section] {
			seen[p.Section] = true
			out = append(out, p.Section)
		}
	}
	return out
}

// PagesOf returns the distinct pages a section occupies, ascending.
func (d Document) PagesOf(s Section) []int {
	var out []int
	for _, p := range d.Placements {
		if p.Section != s {
			continue
		}
		if len(out) == 0 || out[len(out)-1] != p.Page {
			out = append(out, p.Page)
		}
	}
	return out
}

// ElementsByRole collects elements carrying role across all pages.
func (d Document) ElementsByRole(role string) []Element {
	var out []Element
	for _, p := range d.Pages {
		for _, e := range p.Elements {
			if e.Role == role {
				out = append(out, e)
			}
		}
	}
	return out
}

func (d Document) clone() Document {
	out := d
	out.Pages = make([]Page, len(d.Pages))
	for i, p := range d.Pages {
		out.Pages[i] = Page{Number: p.Number, Elements: append([]Element(nil), p.Elements...)}
	}
	out.Placements = append([]Placement(nil), d.Placements...)
	return out
}
