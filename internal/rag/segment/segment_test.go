package segment

import "testing"

func TestSplit_FourPlainSentencesStayWhole(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. It was a sunny afternoon. Birds were singing loudly. Everyone felt at ease."
	ss := Split(text)
	if len(ss) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %+v", len(ss), ss)
	}
}

func TestSplit_AbbreviationsDoNotSplit(t *testing.T) {
	text := "He lived in the U.S. Now he travels for work constantly these days."
	ss := Split(text)
	if len(ss) != 1 {
		t.Fatalf("expected abbreviation followed by an uppercase word to not force a split, got %d sentences: %+v", len(ss), ss)
	}
}

func TestSplit_DecimalsDoNotSplit(t *testing.T) {
	text := "The item costs $19.99, which is about 10.5% below the list price today."
	ss := Split(text)
	if len(ss) != 1 {
		t.Fatalf("expected decimals to not force a split, got %d sentences: %+v", len(ss), ss)
	}
}

func TestSplit_ShortFragmentIsDropped(t *testing.T) {
	text := "Wow. This sentence is long enough to stand on its own without issue."
	ss := Split(text)
	if len(ss) != 1 {
		t.Fatalf("expected short fragment to be dropped, leaving only the following sentence, got %d: %+v", len(ss), ss)
	}
	if ss[0].Text != "This sentence is long enough to stand on its own without issue." {
		t.Fatalf("expected the dropped fragment's text to not appear in the surviving sentence, got %+v", ss[0])
	}
}

func TestSplit_HonorificDoesNotSplit(t *testing.T) {
	text := "Please see Dr. Jones about the results before your appointment next week."
	ss := Split(text)
	if len(ss) != 1 {
		t.Fatalf("expected honorific to not force a split, got %d: %+v", len(ss), ss)
	}
}

func TestSplit_OffsetsRecoverOriginalSubstrings(t *testing.T) {
	text := "Alpha sentence goes here. Beta sentence goes here. Alpha sentence goes here again today."
	ss := Split(text)
	if len(ss) < 2 {
		t.Fatalf("expected at least 2 sentences, got %d", len(ss))
	}
	for _, s := range ss {
		if text[s.Start:s.End] != s.Text {
			t.Fatalf("offset mismatch: text[%d:%d]=%q want %q", s.Start, s.End, text[s.Start:s.End], s.Text)
		}
	}
}

func TestSplit_EmptyInputYieldsNoSentences(t *testing.T) {
	if ss := Split(""); len(ss) != 0 {
		t.Fatalf("expected no sentences for empty input, got %d", len(ss))
	}
}
