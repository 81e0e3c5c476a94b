package decode

import (
	"testing"

	"ragcore/internal/rag/docmodel"
)

func TestPDFDecoder_EmptyBlobReturnsDecodeError(t *testing.T) {
	d := &PDFDecoder{}
	_, _, err := d.Decode(nil, "doc.pdf")
	var de *docmodel.DecodeError
	if err == nil {
		t.Fatal("expected error for empty blob")
	}
	if !asDecodeError(err, &de) || de.Reason != docmodel.ReasonEmpty {
		t.Fatalf("expected ReasonEmpty, got %v", err)
	}
}

func TestPDFDecoder_MalformedBlobReturnsDecodeError(t *testing.T) {
	d := &PDFDecoder{}
	_, _, err := d.Decode([]byte("this is not a pdf file"), "doc.pdf")
	var de *docmodel.DecodeError
	if err == nil {
		t.Fatal("expected error for malformed blob")
	}
	if !asDecodeError(err, &de) || de.Reason != docmodel.ReasonMalformed {
		t.Fatalf("expected ReasonMalformed, got %v", err)
	}
}

func TestPDFDecoder_DeclaresMimeAndExtension(t *testing.T) {
	d := &PDFDecoder{}
	if d.MimeTypes()[0] != "application/pdf" {
		t.Fatalf("unexpected mime types: %v", d.MimeTypes())
	}
	if d.Extensions()[0] != ".pdf" {
		t.Fatalf("unexpected extensions: %v", d.Extensions())
	}
}

func asDecodeError(err error, target **docmodel.DecodeError) bool {
	de, ok := err.(*docmodel.DecodeError)
	if !ok {
		return false
	}
	*target = de
	return true
}
