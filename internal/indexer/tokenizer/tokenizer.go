// Package tokenizer turns paper and query text into index terms. It strips
// accents, lower-cases input, splits on non-word boundaries, removes English
// stop-words, and joins the surviving words into n-grams.
package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold decomposes text, drops combining marks and lower-cases the result,
// so "Müller" and "muller" produce the same terms.
func Fold(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Words returns the folded words of text that are at least two characters
// long and not stop-words, in order.
func Words(text string) []string {
	fields := strings.FieldsFunc(Fold(text), func(r rune) bool { return !isWordRune(r) })
	words := fields[:0]
	for _, w := range fields {
		if len([]rune(w)) < 2 || IsStopWord(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

// Terms returns all n-grams of sizes 1..ngramMax over Words(text), grouped
// by size. ngramMax below 1 is treated as 1.
func Terms(text string, ngramMax int) []string {
	words := Words(text)
	if ngramMax < 1 {
		ngramMax = 1
	}
	terms := make([]string, 0, len(words)*ngramMax)
	terms = append(terms, words...)
	for n := 2; n <= ngramMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}
