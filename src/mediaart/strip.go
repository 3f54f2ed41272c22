package mediaart

import (
	"strings"
	"unicode/utf8"
)

// invalidChars are removed from artist and title strings entirely when
// preparing them for identity derivation. Runs of them collapse to
// nothing, not to a space.
const invalidChars = `()[]<>{}_!@#$^&*+=|\/"'?~`

// blockPairs are the bracket kinds whose whole contents are dropped,
// brackets included.
var blockPairs = [4][2]rune{
	{'(', ')'},
	{'{', '}'},
	{'[', ']'},
	{'<', '>'},
}

// findNextBlock locates the first occurrence of open in s and the next
// occurrence of close anywhere after it. Byte positions of both are
// returned. This is deliberately not a balanced-bracket parser: the cache
// file names derived from the stripped strings are shared with other
// implementations of the cache, so the pairing has to stay exactly
// earliest-open, next-close.
func findNextBlock(s string, open, close rune) (openPos, closePos int, found bool) {
	openPos = strings.IndexRune(s, open)
	if openPos < 0 {
		return -1, -1, false
	}

	after := openPos + utf8.RuneLen(open)
	rel := strings.IndexRune(s[after:], close)
	if rel < 0 {
		return -1, -1, false
	}

	return openPos, after + rel, true
}

// StripInvalidEntities prepares an artist or title string for deriving
// the media art identity from it. Bracketed blocks such as "(CD1)" are
// removed, the rest is lowercased, punctuation-like characters are
// dropped, tabs become spaces, runs of spaces collapse to one and the
// result is trimmed. The function is idempotent.
//
// An empty input yields an empty output. Absence of a field is handled
// by the callers, not here.
func StripInvalidEntities(original string) string {
	var noBlocks strings.Builder

	p := original
	for {
		pos1, pos2 := -1, -1

		// Among the four bracket kinds use the earliest-starting block
		// found from the current position.
		for _, pair := range blockPairs {
			start, end, ok := findNextBlock(p, pair[0], pair[1])
			if !ok {
				continue
			}
			if pos1 == -1 || start < pos1 {
				pos1 = start
				pos2 = end
			}
		}

		if pos1 == -1 {
			noBlocks.WriteString(p)
			break
		}

		// Text before the block and text after it are joined directly,
		// without a space in between.
		noBlocks.WriteString(p[:pos1])

		_, closeLen := utf8.DecodeRuneInString(p[pos2:])
		p = p[pos2+closeLen:]
		if p == "" {
			break
		}
	}

	str := strings.ToLower(noBlocks.String())

	str = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidChars, r) {
			return -1
		}
		return r
	}, str)

	str = strings.ReplaceAll(str, "\t", " ")

	for strings.Contains(str, "  ") {
		str = strings.ReplaceAll(str, "  ", " ")
	}

	return strings.TrimSpace(str)
}
