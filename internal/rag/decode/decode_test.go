package decode

import (
	"testing"

	"ragcore/internal/rag/docmodel"
)

func TestRegistry_DispatchesByExtensionWhenMimeEmpty(t *testing.T) {
	reg := NewDefaultRegistry()
	_, _, err := reg.Decode([]byte("x"), "notes.txt", "")
	de, ok := err.(*docmodel.DecodeError)
	if !ok || de.Reason != docmodel.ReasonUnsupported {
		t.Fatalf("expected ReasonUnsupported for .txt, got %v", err)
	}
}

func TestRegistry_EmptyBlobReturnsDecodeError(t *testing.T) {
	reg := NewDefaultRegistry()
	_, _, err := reg.Decode(nil, "doc.pdf", "application/pdf")
	de, ok := err.(*docmodel.DecodeError)
	if !ok || de.Reason != docmodel.ReasonEmpty {
		t.Fatalf("expected ReasonEmpty, got %v", err)
	}
}

func TestPostProcess_CollapsesExcessNewlinesAndTrims(t *testing.T) {
	in := "  first\n\n\n\nsecond\n\n\nthird  "
	got := postProcess(in)
	want := "first\n\nsecond\n\nthird"
	if got != want {
		t.Fatalf("postProcess(%q) = %q, want %q", in, got, want)
	}
}
