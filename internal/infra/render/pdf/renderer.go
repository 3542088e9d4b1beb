// Package pdf draws laid-out report documents with go-pdf/fpdf.
package pdf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-pdf/fpdf"

	"github.com/bryanwahyu/achalasia-report/internal/domain/report"
)

const (
	fontFamily  = "Helvetica"
	ContentType = "application/pdf"
)

type rgb struct{ r, g, b int }

var palette = map[report.Swatch]rgb{
	report.SwatchNavy:      {15, 23, 42},
	report.SwatchBlue:      {37, 99, 235},
	report.SwatchWhite:     {255, 255, 255},
	report.SwatchLightGray: {241, 245, 249},
	report.SwatchText:      {30, 41, 59},
	report.SwatchMuted:     {100, 116, 139},
	report.SwatchSuccess:   {22, 163, 74},
	report.SwatchWarning:   {234, 179, 8},
	report.SwatchDanger:    {220, 38, 38},
	report.SwatchBorder:    {203, 213, 225},
	report.SwatchDetected:  {254, 242, 242},
}

func colour(s report.Swatch) rgb {
	if c, ok := palette[s]; ok {
		return c
	}
	return palette[report.SwatchText]
}

// Renderer writes Helvetica PDFs. Meta.Created pins the embedded creation
// date.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

func (r *Renderer) ContentType() string { return ContentType }

func (r *Renderer) Render(doc report.Document, meta report.Meta) ([]byte, error) {
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("render pdf: document has no pages")
	}
	g := doc.Geometry
	f := newFpdf(g)
	tr := f.UnicodeTranslatorFromDescriptor("")

	f.SetTitle(meta.Title, true)
	f.SetSubject(meta.Subject, true)
	f.SetAuthor(meta.Author, true)
	f.SetCreator("achalasia-report", true)
	if !meta.Created.IsZero() {
		f.SetCreationDate(meta.Created)
	}

	for _, page := range doc.Pages {
		f.AddPage()
		for _, e := range page.Elements {
			drawElement(f, tr, e)
		}
	}
	if f.Err() {
		return nil, fmt.Errorf("render pdf: %w", f.Error())
	}

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func newFpdf(g report.Geometry) *fpdf.Fpdf {
	f := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	f.SetMargins(0, 0, 0)
	f.SetAutoPageBreak(false, 0)
	f.SetCompression(true)
	f.SetCatalogSort(true)
	f.SetFont(fontFamily, "", 10)
	return f
}

func drawElement(f *fpdf.Fpdf, tr func(string) string, e report.Element) {
	switch e.Shape {
	case report.ShapeRect, report.ShapeRoundedRect, report.ShapeCircle:
		style := paint(f, e)
		if style == "" {
			return
		}
		switch e.Shape {
		case report.ShapeRect:
			f.Rect(e.X, e.Y, e.W, e.H, style)
		case report.ShapeRoundedRect:
			f.RoundedRect(e.X, e.Y, e.W, e.H, e.Radius, "1234", style)
		default:
			f.Circle(e.X, e.Y, e.Radius, style)
		}
	case report.ShapeLine:
		c := colour(e.Stroke)
		f.SetDrawColor(c.r, c.g, c.b)
		f.SetLineWidth(lineWidth(e))
		f.Line(e.X, e.Y, e.X+e.W, e.Y+e.H)
	case report.ShapeText:
		drawText(f, tr, e)
	}
}

// paint sets fill and stroke state for e and returns the fpdf style string.
func paint(f *fpdf.Fpdf, e report.Element) string {
	style := ""
	if e.Fill != report.SwatchNone {
		c := colour(e.Fill)
		f.SetFillColor(c.r, c.g, c.b)
		style += "F"
	}
	if e.Stroke != report.SwatchNone {
		c := colour(e.Stroke)
		f.SetDrawColor(c.r, c.g, c.b)
		f.SetLineWidth(lineWidth(e))
		style += "D"
	}
	return style
}

func lineWidth(e report.Element) float64 {
	if e.LineWidth > 0 {
		return e.LineWidth
	}
	return 0.2
}

func drawText(f *fpdf.Fpdf, tr func(string) string, e report.Element) {
	style := ""
	if e.Bold {
		style = "B"
	}
	size := e.FontSize
	if size <= 0 {
		size = 10
	}
	f.SetFont(fontFamily, style, size)
	c := colour(e.Color)
	f.SetTextColor(c.r, c.g, c.b)

	for i, line := range e.Lines {
		if line == "" {
			continue
		}
		s := tr(line)
		x := e.X
		switch e.Align {
		case report.AlignRight:
			x -= f.GetStringWidth(s)
		case report.AlignCenter:
			x -= f.GetStringWidth(s) / 2
		}
		f.Text(x, e.Y+float64(i)*e.LineHeight, s)
	}
}

// Measurer reports Helvetica string widths using the same metrics the renderer draws with.
type Measurer struct {
	mu sync.Mutex
	f  *fpdf.Fpdf
	tr func(string) string
}

func NewMeasurer() *Measurer {
	f := newFpdf(report.A4())
	return &Measurer{f: f, tr: f.UnicodeTranslatorFromDescriptor("")}
}

func (m *Measurer) TextWidth(text string, fontSize float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.f.SetFontSize(fontSize)
	return m.f.GetStringWidth(m.tr(text))
}
