package punctuation

import (
	"regexp"
	"strings"
)

const ellipsisToken = "..."

// wordPattern matches a maximal run of word characters. Letters and digits
// from any script count, as does the underscore.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// scanner counts one category over the whole text.
type scanner func(text string) int

// scanners holds one independent scan per category. Scans overlap on
// purpose: a hyphen inside a dash run is still a hyphen, and every dot of
// an ellipsis token still feeds the raw full stop count.
var scanners = [NumCategories]scanner{
	Apostrophes:           anyOf("'’"),
	Colons:                anyOf(":"),
	Commas:                anyOf(","),
	CurlyBrackets:         anyOf("{}"),
	DoubleInvertedCommas:  anyOf("“”\""),
	Ellipses:              countEllipses,
	EmDashes:              anyOf("—"),
	EnDashes:              anyOf("–"),
	ExclamationMarks:      anyOf("!"),
	FullStops:             countFullStops,
	Hyphens:               anyOf("-"),
	OtherPunctuationMarks: anyOf("*&%$@"),
	QuestionMarks:         anyOf("?"),
	RoundBrackets:         anyOf("()"),
	Semicolons:            anyOf(";"),
	Slashes:               anyOf("/"),
	SquareBrackets:        anyOf("[]"),
	VerticalBars:          anyOf("|"),
}

// Classify counts words and every punctuation category in text.
func Classify(text string) (int, Counts) {
	var counts Counts

	for c, scan := range scanners {
		counts[c] = scan(text)
	}

	return CountWords(text), counts
}

// CountWords returns the number of word tokens in text.
func CountWords(text string) int {
	return len(wordPattern.FindAllStringIndex(text, -1))
}

// countEllipses adds the single-character ellipsis to the number of
// non-overlapping "..." tokens.
func countEllipses(text string) int {
	return strings.Count(text, "…") + strings.Count(text, ellipsisToken)
}

// countFullStops subtracts one per "..." token from the raw period count.
// Each token holds three periods, so full stops are undercounted by two per
// ellipsis. The result is not clamped.
func countFullStops(text string) int {
	return strings.Count(text, ".") - strings.Count(text, ellipsisToken)
}

// anyOf returns a scanner counting runes that belong to set.
func anyOf(set string) scanner {
	return func(text string) int {
		n := 0

		for _, r := range text {
			if strings.ContainsRune(set, r) {
				n++
			}
		}

		return n
	}
}
