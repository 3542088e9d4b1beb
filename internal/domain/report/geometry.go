package report

// Geometry is the page canvas in millimetres.
type Geometry struct {
	Width  float64
	Height float64
	Margin float64

	// FirstContentTop is where the flow starts below the full header on page 1.
	FirstContentTop float64
	// FlowTop is where the flow resumes below the compact header on later pages.
	FlowTop float64
	// Bottom is the lowest y any flowed block may reach.
	Bottom float64
	// FooterTop is where the footer band starts.
	FooterTop float64
}

// A4 is the portrait A4 canvas the report is designed for.
func A4() Geometry {
	return Geometry{
		Width:           210,
		Height:          297,
		Margin:          18,
		FirstContentTop: 52,
		FlowTop:         20,
		Bottom:          270,
		FooterTop:       285,
	}
}

func (g Geometry) ContentWidth() float64 { return g.Width - 2*g.Margin }

// Usable is the flow height available on a continuation page.
func (g Geometry) Usable() float64 { return g.Bottom - g.FlowTop }

// Header band sizes.
const (
	headerBand        = 42.0
	headerAccent      = 3.0
	compactBand       = 12.0
	compactAccent     = 1.5
	footerTextOffset  = 5.0
	sectionTitleSpace = 8.0
)
