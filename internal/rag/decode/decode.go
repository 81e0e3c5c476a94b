// Package decode turns a raw document blob into NormalizedText plus
// DocumentMetadata. Decoders are selected by MIME type or, failing
// that, file extension, through a small capability-set dispatch table
// rather than a class hierarchy: a Go interface plus a registry takes
// the place of the reference processor's ABC-and-subclasses design.
package decode

import (
	"path/filepath"
	"regexp"
	"strings"

	"ragcore/internal/rag/docmodel"
)

// Decoder turns a blob into normalized text and metadata. fileName is
// used only for metadata (file_name) and, when mime is empty, extension
// sniffing; it plays no role in the decoded content itself.
type Decoder interface {
	Decode(blob []byte, fileName string) (docmodel.NormalizedText, docmodel.DocumentMetadata, error)
	MimeTypes() []string
	Extensions() []string
}

// Registry dispatches blobs to a Decoder by MIME type or file
// extension.
type Registry struct {
	byMime map[string]Decoder
	byExt  map[string]Decoder
}

// NewRegistry builds a Registry with the given decoders registered
// under every MIME type and extension they declare.
func NewRegistry(decoders ...Decoder) *Registry {
	reg := &Registry{byMime: map[string]Decoder{}, byExt: map[string]Decoder{}}
	for _, d := range decoders {
		for _, m := range d.MimeTypes() {
			reg.byMime[strings.ToLower(m)] = d
		}
		for _, e := range d.Extensions() {
			reg.byExt[strings.ToLower(e)] = d
		}
	}
	return reg
}

// NewDefaultRegistry returns a Registry with the PDF and DOCX decoders
// registered; this is the pair of formats the pipeline spec names.
func NewDefaultRegistry(opts ...func(*PDFDecoder, *DOCXDecoder)) *Registry {
	pdfDec := &PDFDecoder{}
	docxDec := &DOCXDecoder{ExtractTables: true, ExtractHeadersFooters: true, PreserveFormatting: true}
	for _, o := range opts {
		o(pdfDec, docxDec)
	}
	return NewRegistry(pdfDec, docxDec)
}

// Decode resolves a decoder from mimeHint (falling back to fileName's
// extension) and decodes blob with it.
func (r *Registry) Decode(blob []byte, fileName, mimeHint string) (docmodel.NormalizedText, docmodel.DocumentMetadata, error) {
	if len(blob) == 0 {
		return "", docmodel.DocumentMetadata{}, docmodel.NewDecodeError(docmodel.ReasonEmpty, "document blob is empty")
	}
	d := r.resolve(fileName, mimeHint)
	if d == nil {
		return "", docmodel.DocumentMetadata{}, docmodel.NewDecodeError(docmodel.ReasonUnsupported,
			"no decoder registered for mime="+mimeHint+" file="+fileName)
	}
	return d.Decode(blob, fileName)
}

func (r *Registry) resolve(fileName, mimeHint string) Decoder {
	if mimeHint != "" {
		if d, ok := r.byMime[strings.ToLower(mimeHint)]; ok {
			return d
		}
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != "" {
		if d, ok := r.byExt[ext]; ok {
			return d
		}
	}
	return nil
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// postProcess applies the pipeline-wide normalization pass every
// decoder's output goes through: collapse runs of three or more
// newlines down to exactly two, then trim outer whitespace.
func postProcess(s string) string {
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
