// Package textstats provides character-level statistics over extracted text
// blocks. These feed the page classifier's garbled-text heuristics.
package textstats

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReplacementChar is the Unicode replacement character emitted by decoders
// for undecodable byte sequences.
const ReplacementChar = '�'

// NonSpaceCount returns the number of non-whitespace runes in s.
func NonSpaceCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// LetterRatio returns the fraction of Unicode Letter-category runes over
// non-space runes. The denominator has a floor of 1 so blank input yields 0.
func LetterRatio(s string) float64 {
	letters := 0
	nonSpace := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		nonSpace++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if nonSpace < 1 {
		nonSpace = 1
	}
	return float64(letters) / float64(nonSpace)
}

// ReplacementRatio returns the fraction of replacement characters over
// non-whitespace runes (denominator floor 1).
func ReplacementRatio(s string) float64 {
	repl := strings.Count(s, string(ReplacementChar))
	return float64(repl) / float64(max(NonSpaceCount(s), 1))
}

// ControlFormatRatios returns the fraction of control (Cc) and format (Cf)
// category runes over non-whitespace runes. Newline, carriage return, tab
// and space are not counted as control characters.
func ControlFormatRatios(s string) (control, format float64) {
	cc := 0
	cf := 0
	for _, r := range s {
		switch r {
		case '\n', '\r', '\t', ' ':
			continue
		}
		if unicode.Is(unicode.Cc, r) {
			cc++
		} else if unicode.Is(unicode.Cf, r) {
			cf++
		}
	}
	n := float64(max(NonSpaceCount(s), 1))
	return float64(cc) / n, float64(cf) / n
}

// SingleCharRatio returns the fraction of raw words whose trimmed length is
// exactly one rune. The denominator has a floor of 1.
func SingleCharRatio(words []string) float64 {
	single := 0
	for _, w := range words {
		if utf8.RuneCountInString(strings.TrimSpace(w)) == 1 {
			single++
		}
	}
	return float64(single) / float64(max(len(words), 1))
}

// CountValidWords returns the number of words with at least minLen runes.
func CountValidWords(words []string, minLen int) int {
	n := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minLen {
			n++
		}
	}
	return n
}
