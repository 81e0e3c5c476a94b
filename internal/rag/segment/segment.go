// Package segment splits normalized document text into sentences.
//
// The boundary rule is whitespace that is preceded by a sentence-ending
// punctuation mark (. ! ?) and followed by an uppercase letter, except
// when the punctuation closes a single-letter abbreviation ("U.S.")
// or a short capitalized honorific ("Mr.", "Dr."). The reference
// implementation this is ported from expresses the rule as a single
// regex with lookbehind and lookahead assertions; Go's regexp package
// is RE2-based and cannot express either, so the rule is reproduced
// here as a manual scan over sentence-ending punctuation.
package segment

import (
	"strings"
	"unicode"

	"ragcore/internal/rag/docmodel"
)

// minSentenceLength is the shortest sentence (after trimming) kept as
// a candidate; shorter fragments are dropped entirely.
const minSentenceLength = 11

// Split breaks text into sentences using the boundary rule described in
// the package doc, recomputing byte offsets into text for each sentence.
func Split(text string) []docmodel.Sentence {
	raw := splitRaw(text)
	return withOffsets(text, raw)
}

// splitRaw finds candidate sentence strings, honoring the abbreviation
// and honorific exceptions, and the minimum-length drop rule. It does
// not compute offsets; offset recovery happens in withOffsets because a
// sentence's trimmed text can occur more than once in the source.
func splitRaw(text string) []string {
	var sentences []string
	runes := []rune(text)
	n := len(runes)

	start := 0
	for i := 0; i < n; i++ {
		c := runes[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// find the run of whitespace immediately following the
		// punctuation; a boundary requires at least one whitespace rune
		// followed by an uppercase letter.
		j := i + 1
		for j < n && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j >= n {
			continue // no whitespace gap, or nothing follows
		}
		if !unicode.IsUpper(runes[j]) {
			continue
		}
		if isAbbreviationBoundary(runes, i) || isHonorificBoundary(runes, start, i) {
			continue
		}

		// end the emitted sentence right after the punctuation; the
		// whitespace run and following uppercase letter only served to
		// confirm the boundary.
		candidate := strings.TrimSpace(string(runes[start : i+1]))
		if candidate != "" {
			sentences = append(sentences, candidate)
		}
		start = j
	}
	if start < n {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}

	return dropShortSentences(sentences)
}

// isAbbreviationBoundary reports whether the period at index i closes a
// single-letter abbreviation of the form "X.Y." (e.g. the second period
// in "U.S."), mirroring the reference regex's
// (?<!\w\.\w.) lookbehind.
func isAbbreviationBoundary(runes []rune, i int) bool {
	if runes[i] != '.' {
		return false
	}
	// pattern ends "\w.\w." immediately before and including position i:
	// runes[i-3]=word char, runes[i-2]='.', runes[i-1]=word char, runes[i]='.'
	if i < 3 {
		return false
	}
	return isWordRune(runes[i-3]) && runes[i-2] == '.' && isWordRune(runes[i-1])
}

// isHonorificBoundary reports whether the punctuation at index i closes
// a two-letter capitalized honorific such as "Mr." or "Dr.", mirroring
// the reference regex's (?<![A-Z][a-z]\.) lookbehind. The lookbehind is
// fixed-width: it only exempts exactly one uppercase letter followed by
// one lowercase letter, not an arbitrary capitalized word, so "Smith."
// still ends a sentence while "Dr." does not. start bounds the check to
// the current sentence so a trailing letter from the previous sentence
// is never mistaken for the honorific's initial.
func isHonorificBoundary(runes []rune, start, i int) bool {
	if runes[i] != '.' {
		return false
	}
	if i-2 < start {
		return false
	}
	return unicode.IsUpper(runes[i-2]) && unicode.IsLower(runes[i-1])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// dropShortSentences discards any candidate shorter than
// minSentenceLength outright, the same pure filter the reference
// implementation applies (it never merges a short fragment into a
// neighboring sentence).
func dropShortSentences(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if len([]rune(s)) < minSentenceLength {
			continue
		}
		out = append(out, s)
	}
	return out
}

// withOffsets recomputes [start, end) byte offsets for each sentence by
// scanning text left to right and claiming, for each sentence in turn,
// its earliest occurrence that has not already been claimed. This
// matches sentences back to their source positions even when the same
// sentence text repeats verbatim elsewhere in the document.
func withOffsets(text string, sentences []string) []docmodel.Sentence {
	out := make([]docmodel.Sentence, 0, len(sentences))
	cursor := 0
	for _, s := range sentences {
		idx := strings.Index(text[cursor:], s)
		if idx < 0 {
			// the sentence was reconstructed by merging/trimming and no
			// longer appears verbatim from cursor onward; fall back to
			// searching the whole remaining text.
			idx = strings.Index(text, s)
			if idx < 0 {
				continue
			}
			out = append(out, docmodel.Sentence{Text: s, Start: idx, End: idx + len(s)})
			continue
		}
		start := cursor + idx
		end := start + len(s)
		out = append(out, docmodel.Sentence{Text: s, Start: start, End: end})
		cursor = end
	}
	return out
}
