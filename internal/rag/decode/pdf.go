package decode

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"ragcore/internal/rag/docmodel"
)

// sparsePageChars is the trimmed-character threshold below which a page
// is considered sparse: likely a scanned image the text layer barely
// covers, and therefore a candidate for OCR.
const sparsePageChars = 50

// PDFDecoder decodes application/pdf blobs into NormalizedText plus
// DocumentMetadata, walking pages in order and concatenating their text
// with blank lines, per the reference processor's "\n\n".join(pages).
type PDFDecoder struct {
	// OCR is consulted for any page whose extracted text falls under
	// sparsePageChars trimmed characters, when non-nil.
	OCR OcrBackend
	// UseOCR gates whether OCR is attempted at all; a PDFDecoder with a
	// configured OCR backend still leaves sparse pages as-is unless
	// this is true, mirroring the pipeline's use_ocr configuration flag.
	UseOCR bool
}

// OcrBackend is implemented by an optional, pluggable OCR engine. Only
// the PDF decoder ever calls it.
type OcrBackend interface {
	OcrPage(pageImage []byte) (string, error)
}

func (d *PDFDecoder) MimeTypes() []string { return []string{"application/pdf"} }

func (d *PDFDecoder) Extensions() []string { return []string{".pdf"} }

func (d *PDFDecoder) Decode(blob []byte, fileName string) (docmodel.NormalizedText, docmodel.DocumentMetadata, error) {
	if len(blob) == 0 {
		return "", docmodel.DocumentMetadata{}, docmodel.NewDecodeError(docmodel.ReasonEmpty, "pdf blob is empty")
	}

	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return "", docmodel.DocumentMetadata{}, docmodel.WrapDecodeError(docmodel.ReasonMalformed, "failed to open pdf reader", err)
	}

	meta := docmodel.DocumentMetadata{
		FileName: fileName,
		FileSize: int64(len(blob)),
		FileType: "pdf",
		Extra:    map[string]any{},
	}
	extractDocInfo(r, &meta)

	numPages := r.NumPage()
	meta.PageCount = numPages

	var pages []string
	var sparsePages int
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, perr := page.GetPlainText(nil)
		if perr != nil {
			appendExtractionError(&meta, fmt.Sprintf("page %d: %v", i, perr))
			continue
		}
		trimmed := strings.TrimSpace(text)
		if len(trimmed) < sparsePageChars {
			sparsePages++
			if d.UseOCR && d.OCR != nil {
				if ocrText, oerr := d.OCR.OcrPage(nil); oerr == nil && strings.TrimSpace(ocrText) != "" {
					trimmed = strings.TrimSpace(ocrText)
				} else if oerr != nil {
					appendExtractionError(&meta, fmt.Sprintf("page %d ocr fallback failed: %v", i, oerr))
				}
			}
		}
		if trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	if len(pages) == 0 {
		return "", meta, docmodel.NewDecodeError(docmodel.ReasonEmpty, "pdf contains no readable pages")
	}
	if sparsePages > 0 {
		meta.Extra["sparse_page_count"] = sparsePages
	}

	joined := strings.Join(pages, "\n\n")
	return docmodel.NormalizedText(postProcess(joined)), meta, nil
}

// extractDocInfo pulls recognized fields out of the PDF's Info
// dictionary. Any missing key is simply left at its zero value; a
// damaged or absent Info dict is recorded as a recoverable extraction
// error rather than aborting decode.
func extractDocInfo(r *pdf.Reader, meta *docmodel.DocumentMetadata) {
	defer func() {
		if rec := recover(); rec != nil {
			appendExtractionError(meta, fmt.Sprintf("metadata extraction panic: %v", rec))
		}
	}()

	trailer := r.Trailer()
	info := trailer.Key("Info")
	if info.IsNull() {
		return
	}
	meta.Title = info.Key("Title").Text()
	meta.Author = info.Key("Author").Text()
	meta.Subject = info.Key("Subject").Text()
	meta.Creator = info.Key("Creator").Text()
	if cd := info.Key("CreationDate").Text(); cd != "" {
		if t, ok := parsePDFDate(cd); ok {
			meta.CreationDate = t
		}
	}
	if md := info.Key("ModDate").Text(); md != "" {
		if t, ok := parsePDFDate(md); ok {
			meta.ModificationDate = t
		}
	}
}

// parsePDFDate parses the PDF "D:YYYYMMDDHHmmSS" date format, ignoring
// any trailing timezone offset.
func parsePDFDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(s, "D:")
	if len(s) < 14 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102150405", s[:14])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func appendExtractionError(meta *docmodel.DocumentMetadata, msg string) {
	if meta.ExtractionError == "" {
		meta.ExtractionError = msg
		return
	}
	meta.ExtractionError = meta.ExtractionError + "; " + msg
}
