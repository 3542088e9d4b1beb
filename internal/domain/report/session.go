package report

// Header is the per-report information printed in the page header band.
type Header struct {
	Title    string
	Subtitle string
	ReportID string
	Date     string
	Time     string
}

// Session holds the layout state of one report build: the pages laid out
// so far and the vertical cursor on the last one. It is not safe for
// concurrent use; every build gets its own.
type Session struct {
	geo        Geometry
	m          Measurer
	header     Header
	pages      []Page
	placements []Placement
	y          float64
}

// NewSession opens page 1 with the full header band.
func NewSession(geo Geometry, m Measurer, h Header) *Session {
	if m == nil {
		m = ApproxMeasurer{}
	}
	s := &Session{geo: geo, m: m, header: h}
	s.pages = append(s.pages, Page{Number: 1})
	s.drawFullHeader()
	s.y = geo.FirstContentTop
	return s
}

// Page is the 1-based number of the page currently being filled.
func (s *Session) Page() int { return len(s.pages) }

// Y is the cursor position on the current page.
func (s *Session) Y() float64 { return s.y }

// Reserve makes sure a block of height h fits below the cursor, opening a new
// page when it does not. A block taller than a whole page is left on a fresh
// continuation page rather than breaking again. Reports whether a break happened.
func (s *Session) Reserve(h float64) bool {
	if s.y+h <= s.geo.Bottom || s.atFlowTop() {
		return false
	}
	s.newPage()
	return true
}

// Finish hands back the laid-out document. The session must not be used afterwards.
func (s *Session) Finish() Document {
	return Document{Geometry: s.geo, Pages: s.pages, Placements: s.placements}
}

func (s *Session) atFlowTop() bool {
	return s.Page() > 1 && s.y <= s.geo.FlowTop
}

func (s *Session) newPage() {
	s.pages = append(s.pages, Page{Number: len(s.pages) + 1})
	s.drawCompactHeader()
	s.y = s.geo.FlowTop
}

func (s *Session) draw(sec Section, e Element) {
	e.Section = sec
	p := &s.pages[len(s.pages)-1]
	p.Elements = append(p.Elements, e)
}

func (s *Session) place(sec Section, top, bottom float64, atomic bool) {
	s.placements = append(s.placements, Placement{
		Section:   sec,
		Page:      s.Page(),
		Top:       top,
		Bottom:    bottom,
		Atomic:    atomic,
		Oversized: atomic && bottom-top > s.geo.Usable(),
	})
}

func (s *Session) drawFullHeader() {
	g := s.geo
	right := g.Width - g.Margin
	s.draw(SectionHeader, rect(0, 0, g.Width, headerBand, SwatchNavy))
	s.draw(SectionHeader, rect(0, headerBand, g.Width, headerAccent, SwatchBlue))
	s.draw(SectionHeader, textAt(g.Margin, 18, 20, SwatchWhite, s.header.Title).bold().withRole("header.title"))
	s.draw(SectionHeader, textAt(g.Margin, 26, 11, SwatchWhite, s.header.Subtitle))
	s.draw(SectionHeader, textAt(right, 14, 8, SwatchWhite, "Report ID: "+s.header.ReportID).aligned(AlignRight).withRole("header.report_id"))
	s.draw(SectionHeader, textAt(right, 20, 8, SwatchWhite, "Date: "+s.header.Date).aligned(AlignRight))
	s.draw(SectionHeader, textAt(right, 26, 8, SwatchWhite, "Time: "+s.header.Time).aligned(AlignRight))
	s.place(SectionHeader, 0, headerBand+headerAccent, true)
}

func (s *Session) drawCompactHeader() {
	g := s.geo
	s.draw(SectionHeader, rect(0, 0, g.Width, compactBand, SwatchNavy))
	s.draw(SectionHeader, rect(0, compactBand, g.Width, compactAccent, SwatchBlue))
	s.draw(SectionHeader, textAt(g.Margin, 8, 9, SwatchWhite, s.header.Title).bold().withRole("header.title"))
	s.draw(SectionHeader, textAt(g.Width-g.Margin, 8, 7, SwatchWhite, "Report ID: "+s.header.ReportID+" (continued)").aligned(AlignRight))
	s.place(SectionHeader, 0, compactBand+compactAccent, true)
}

func rect(x, y, w, h float64, fill Swatch) Element {
	return Element{Shape: ShapeRect, X: x, Y: y, W: w, H: h, Fill: fill}
}

func roundedRect(x, y, w, h, r float64, fill, stroke Swatch) Element {
	return Element{Shape: ShapeRoundedRect, X: x, Y: y, W: w, H: h, Radius: r, Fill: fill, Stroke: stroke, LineWidth: 0.3}
}

func textAt(x, y, size float64, color Swatch, line string) Element {
	return Element{Shape: ShapeText, X: x, Y: y, FontSize: size, Color: color, Lines: []string{line}}
}

func textBlock(x, y, size, lineHeight float64, color Swatch, lines []string) Element {
	return Element{Shape: ShapeText, X: x, Y: y, FontSize: size, Color: color, Lines: lines, LineHeight: lineHeight}
}

func (e Element) bold() Element {
	e.Bold = true
	return e
}

func (e Element) aligned(a Align) Element {
	e.Align = a
	return e
}

func (e Element) withRole(role string) Element {
	e.Role = role
	return e
}
