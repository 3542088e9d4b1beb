package report

import (
	"strings"
	"unicode/utf8"
)

// Measurer reports the rendered width of text in millimetres.
type Measurer interface {
	TextWidth(text string, fontSize float64) float64
}

const ptToMM = 25.4 / 72

// ApproxMeasurer assumes every glyph is half an em wide.
type ApproxMeasurer struct{}

func (ApproxMeasurer) TextWidth(text string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * ptToMM * 0.5
}

// Wrap breaks text into lines no wider than width. Words longer than a line
// are split by rune. Always returns at least one line.
func Wrap(m Measurer, text string, width, fontSize float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			if m.TextWidth(w, fontSize) > width {
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				parts := breakWord(m, w, width, fontSize)
				lines = append(lines, parts[:len(parts)-1]...)
				cur = parts[len(parts)-1]
				continue
			}
			next := w
			if cur != "" {
				next = cur + " " + w
			}
			if m.TextWidth(next, fontSize) > width {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = next
		}
		lines = append(lines, cur)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func breakWord(m Measurer, w string, width, fontSize float64) []string {
	var parts []string
	cur := ""
	for _, r := range w {
		next := cur + string(r)
		if cur != "" && m.TextWidth(next, fontSize) > width {
			parts = append(parts, cur)
			next = string(r)
		}
		cur = next
	}
	return append(parts, cur)
}

// Ellipsize shortens text with a trailing "..." so it fits on one line.
func Ellipsize(m Measurer, text string, width, fontSize float64) string {
	if m.TextWidth(text, fontSize) <= width {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		s := strings.TrimRight(string(runes[:n]), " ") + "..."
		if m.TextWidth(s, fontSize) <= width {
			return s
		}
	}
	return "..."
}
