package services

import (
	"io"
	"strings"
)

// FontStyle selects the regular or bold face of the document font.
type FontStyle int

const (
	FontRegular FontStyle = iota
	FontBold
)

// Color is an RGB color.
type Color struct {
	R, G, B int
}

// TextOptions controls how a text run is placed relative to its anchor.
// The layout engine always passes a resolved direction and alignment.
type TextOptions struct {
	Align     Align
	Direction Direction
}

// RectOptions controls how a rectangle is painted.
type RectOptions struct {
	Fill   bool
	Stroke bool
	Radius float64 // rounded corners when > 0
}

// Canvas is the drawing surface the document layout is issued against.
// Coordinates are in points with the origin at the top-left of the page;
// y passed to Text is the text baseline.
type Canvas interface {
	SetFont(style FontStyle, size float64)
	SetTextColor(c Color)
	SetDrawColor(c Color)
	SetFillColor(c Color)

	Text(text string, x, y float64, opts TextOptions)
	Line(x1, y1, x2, y2 float64)
	Rect(x, y, w, h float64, opts RectOptions)
	Image(data []byte, x, y, w, h float64) error

	MeasureText(text string) float64
	WrapText(text string, maxWidth float64) []string

	AddPage()
	PageSize() (width, height float64)

	Output(w io.Writer) error
}

// wrapWords breaks text into lines no wider than maxWidth using measure.
// Explicit newlines always break. Words wider than maxWidth are split by rune.
// Empty text yields no lines.
func wrapWords(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}

		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if measure(candidate) <= maxWidth {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			if measure(word) <= maxWidth {
				current = word
				continue
			}
			pieces := splitLongWord(word, maxWidth, measure)
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

// splitLongWord cuts a single word into rune chunks that fit maxWidth.
// Every chunk holds at least one rune, so progress is guaranteed.
func splitLongWord(word string, maxWidth float64, measure func(string) float64) []string {
	var pieces []string
	var chunk []rune
	for _, r := range word {
		next := append(chunk, r)
		if len(chunk) > 0 && measure(string(next)) > maxWidth {
			pieces = append(pieces, string(chunk))
			chunk = []rune{r}
			continue
		}
		chunk = next
	}
	if len(chunk) > 0 {
		pieces = append(pieces, string(chunk))
	}
	return pieces
}
