package services

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// Direction is the writing direction of a text run.
type Direction int

const (
	DirAuto Direction = iota // detect from content
	DirLTR
	DirRTL
)

// Align is the horizontal alignment of a text run relative to its x anchor.
type Align int

const (
	AlignAuto Align = iota // right for RTL runs, left for LTR runs
	AlignLeft
	AlignCenter
	AlignRight
)

// ContainsHebrew reports whether s has any rune in the Hebrew block (U+0590–U+05FF).
func ContainsHebrew(s string) bool {
	for _, r := range s {
		if r >= 0x0590 && r <= 0x05FF {
			return true
		}
	}
	return false
}

// ResolveDirection returns the explicit direction when one is given,
// otherwise RTL for text containing Hebrew and LTR for everything else.
func ResolveDirection(text string, override Direction) Direction {
	if override != DirAuto {
		return override
	}
	if ContainsHebrew(text) {
		return DirRTL
	}
	return DirLTR
}

// ResolveAlign returns the explicit alignment when one is given, otherwise the
// natural alignment for the direction.
func ResolveAlign(dir Direction, override Align) Align {
	if override != AlignAuto {
		return override
	}
	if dir == DirRTL {
		return AlignRight
	}
	return AlignLeft
}

// strongDirection classifies a rune as LTR, RTL or neutral (DirAuto).
// Digits count as LTR so numbers inside Hebrew text keep their order.
func strongDirection(r rune) Direction {
	props, _ := bidi.LookupRune(r)
	switch props.Class() {
	case bidi.R, bidi.AL:
		return DirRTL
	case bidi.L, bidi.EN, bidi.AN:
		return DirLTR
	default:
		return DirAuto
	}
}

func isDigitClass(r rune) bool {
	props, _ := bidi.LookupRune(r)
	return props.Class() == bidi.EN || props.Class() == bidi.AN
}

func isTerminator(r rune) bool {
	props, _ := bidi.LookupRune(r)
	return props.Class() == bidi.ET
}

var mirrored = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
}

// VisualOrder reorders a logical string into the left-to-right glyph order a
// PDF text operator expects. RTL runs are reversed (with mirrored brackets),
// LTR runs keep their order, and in an RTL paragraph the runs themselves are
// laid out right to left. Neutrals between runs of the same direction join
// them; otherwise they take the paragraph direction.
func VisualOrder(s string, paragraph Direction) string {
	if paragraph == DirAuto {
		paragraph = ResolveDirection(s, DirAuto)
	}
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}

	dirs := make([]Direction, len(runes))
	for i, r := range runes {
		dirs[i] = strongDirection(r)
	}
	// Terminators such as % and currency signs stick to an adjacent number.
	for i := 0; i < len(runes); {
		if !isTerminator(runes[i]) {
			i++
			continue
		}
		j := i
		for j < len(runes) && isTerminator(runes[j]) {
			j++
		}
		if (i > 0 && isDigitClass(runes[i-1])) || (j < len(runes) && isDigitClass(runes[j])) {
			for k := i; k < j; k++ {
				dirs[k] = DirLTR
			}
		}
		i = j
	}
	for i := 0; i < len(runes); {
		if dirs[i] != DirAuto {
			i++
			continue
		}
		j := i
		for j < len(runes) && dirs[j] == DirAuto {
			j++
		}
		prev, next := paragraph, paragraph
		if i > 0 {
			prev = dirs[i-1]
		}
		if j < len(runes) {
			next = dirs[j]
		}
		resolved := paragraph
		if prev == next {
			resolved = prev
		}
		for k := i; k < j; k++ {
			dirs[k] = resolved
		}
		i = j
	}

	type run struct {
		dir   Direction
		runes []rune
	}
	var runs []run
	for i, r := range runes {
		if len(runs) == 0 || runs[len(runs)-1].dir != dirs[i] {
			runs = append(runs, run{dir: dirs[i]})
		}
		runs[len(runs)-1].runes = append(runs[len(runs)-1].runes, r)
	}

	var b strings.Builder
	b.Grow(len(s))
	emit := func(rn run) {
		if rn.dir != DirRTL {
			b.WriteString(string(rn.runes))
			return
		}
		for k := len(rn.runes) - 1; k >= 0; k-- {
			r := rn.runes[k]
			if m, ok := mirrored[r]; ok {
				r = m
			}
			b.WriteRune(r)
		}
	}

	if paragraph == DirRTL {
		for k := len(runs) - 1; k >= 0; k-- {
			emit(runs[k])
		}
	} else {
		for _, rn := range runs {
			emit(rn)
		}
	}
	return b.String()
}
