package decode

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"ragcore/internal/rag/docmodel"
)

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DOCXDecoder decodes application/vnd.openxmlformats-officedocument.
// wordprocessingml.document blobs. There is no library in the pipeline's
// dependency set that exposes body-order paragraph/table/header/footer
// walking (the one DOCX library the broader example pool depends on
// only exposes a flattened paragraph list), so the decoder parses the
// OOXML package directly with the standard library's archive/zip and
// encoding/xml. See DESIGN.md for the justification.
type DOCXDecoder struct {
	ExtractTables         bool
	ExtractHeadersFooters bool
	PreserveFormatting    bool
}

func (d *DOCXDecoder) MimeTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

func (d *DOCXDecoder) Extensions() []string { return []string{".docx"} }

func (d *DOCXDecoder) Decode(blob []byte, fileName string) (docmodel.NormalizedText, docmodel.DocumentMetadata, error) {
	if len(blob) == 0 {
		return "", docmodel.DocumentMetadata{}, docmodel.NewDecodeError(docmodel.ReasonEmpty, "docx blob is empty")
	}

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return "", docmodel.DocumentMetadata{}, docmodel.WrapDecodeError(docmodel.ReasonMalformed, "not a valid docx package", err)
	}

	docBytes, err := readZipEntry(zr, "word/document.xml")
	if err != nil {
		return "", docmodel.DocumentMetadata{}, docmodel.WrapDecodeError(docmodel.ReasonMalformed, "missing word/document.xml", err)
	}

	var doc wordDocument
	if err := xml.Unmarshal(docBytes, &doc); err != nil {
		return "", docmodel.DocumentMetadata{}, docmodel.WrapDecodeError(docmodel.ReasonMalformed, "failed to parse document.xml", err)
	}

	meta := docmodel.DocumentMetadata{
		FileName: fileName,
		FileSize: int64(len(blob)),
		FileType: "docx",
		Extra:    map[string]any{},
	}
	if core, err := readZipEntry(zr, "docProps/core.xml"); err == nil {
		applyCoreProperties(core, &meta)
	}

	var sections []string

	if d.ExtractHeadersFooters {
		if headers := extractHeaderFooterBlocks(zr, "word/header"); len(headers) > 0 {
			sections = append(sections, "=== HEADERS ===\n"+strings.Join(dedupe(headers), "\n"))
		}
	}

	paragraphCount := 0
	tableCount := 0
	for _, node := range doc.Body.Nodes {
		switch node.Kind {
		case "p":
			text := node.Para.text(d.PreserveFormatting)
			paragraphCount++
			if strings.TrimSpace(text) != "" {
				sections = append(sections, text)
			}
		case "tbl":
			tableCount++
			if d.ExtractTables {
				if formatted := node.Table.format(); formatted != "" {
					sections = append(sections, formatted)
				}
			}
		}
	}

	if d.ExtractHeadersFooters {
		if footers := extractHeaderFooterBlocks(zr, "word/footer"); len(footers) > 0 {
			sections = append(sections, "=== FOOTERS ===\n"+strings.Join(dedupe(footers), "\n"))
		}
	}

	if comments := extractComments(zr); len(comments) > 0 {
		sections = append(sections, "=== COMMENTS ===\n"+strings.Join(comments, "\n"))
	}

	meta.Extra["paragraph_count"] = paragraphCount
	meta.Extra["table_count"] = tableCount

	if paragraphCount == 0 && tableCount == 0 {
		return "", meta, docmodel.NewDecodeError(docmodel.ReasonEmpty, "docx has no paragraphs or tables")
	}

	content := postProcess(strings.Join(sections, "\n\n"))
	wordCount := len(strings.Fields(content))
	meta.Extra["word_count"] = wordCount
	meta.PageCount = wordCount / 500
	if meta.PageCount < 1 {
		meta.PageCount = 1
	}

	return docmodel.NormalizedText(content), meta, nil
}

// --- OOXML structures ---

type wordDocument struct {
	Body body `xml:"body"`
}

// body holds the document's paragraphs and tables in the order they
// appear, which a plain struct-tag unmarshal cannot preserve when two
// different element types interleave.
type body struct {
	Nodes []bodyNode
}

type bodyNode struct {
	Kind  string // "p" or "tbl"
	Para  *paragraph
	Table *table
}

func (b *body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "p":
				var p paragraph
				if err := d.DecodeElement(&p, &se); err != nil {
					return err
				}
				b.Nodes = append(b.Nodes, bodyNode{Kind: "p", Para: &p})
			case "tbl":
				var t table
				if err := d.DecodeElement(&t, &se); err != nil {
					return err
				}
				b.Nodes = append(b.Nodes, bodyNode{Kind: "tbl", Table: &t})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if se.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Props *runProps `xml:"rPr"`
	Texts []string  `xml:"t"`
}

type runProps struct {
	Bold      *toggle    `xml:"b"`
	Italic    *toggle    `xml:"i"`
	Underline *underline `xml:"u"`
}

type toggle struct {
	Val string `xml:"val,attr"`
}

type underline struct {
	Val string `xml:"val,attr"`
}

func (p paragraph) text(preserveFormatting bool) string {
	var sb strings.Builder
	for _, r := range p.Runs {
		t := strings.Join(r.Texts, "")
		if t == "" {
			continue
		}
		if preserveFormatting && r.Props != nil {
			if toggleOn(r.Props.Bold) {
				t = "**" + t + "**"
			}
			if toggleOn(r.Props.Italic) {
				t = "*" + t + "*"
			}
			if underlineOn(r.Props.Underline) {
				t = "_" + t + "_"
			}
		}
		sb.WriteString(t)
	}
	return sb.String()
}

func toggleOn(t *toggle) bool {
	if t == nil {
		return false
	}
	v := strings.ToLower(t.Val)
	return v == "" || v == "1" || v == "true" || v == "on"
}

func underlineOn(u *underline) bool {
	if u == nil {
		return false
	}
	v := strings.ToLower(u.Val)
	return v != "" && v != "none" && v != "0" && v != "false"
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

// format renders a table per the pipeline's plain-text table convention:
// a border of dashes the width of the header row, the header, another
// border, then each data row followed by a border.
func (t table) format() string {
	if len(t.Rows) == 0 {
		return ""
	}
	rows := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		cells := make([]string, 0, len(r.Cells))
		for _, c := range r.Cells {
			var parts []string
			for _, p := range c.Paragraphs {
				if txt := p.text(false); txt != "" {
					parts = append(parts, txt)
				}
			}
			cellText := strings.Join(parts, " ")
			cellText = strings.ReplaceAll(cellText, "\n", " ")
			cells = append(cells, cellText)
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	border := strings.Repeat("-", len(rows[0]))
	lines := make([]string, 0, len(rows)*2+1)
	lines = append(lines, border, rows[0])
	for _, r := range rows[1:] {
		lines = append(lines, border, r)
	}
	lines = append(lines, border)
	return strings.Join(lines, "\n")
}

// --- headers, footers, comments, core properties ---

// extractHeaderFooterBlocks reads every <prefix>*.xml entry (prefix is
// e.g. "word/header") in lexical name order and renders each as plain
// text.
func extractHeaderFooterBlocks(zr *zip.Reader, prefix string) []string {
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, ".xml") {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		b, err := readZipEntry(zr, name)
		if err != nil {
			continue
		}
		var b2 body
		if err := xml.Unmarshal(b, &b2); err != nil {
			continue
		}
		var parts []string
		for _, node := range b2.Nodes {
			if node.Kind == "p" {
				if txt := node.Para.text(false); strings.TrimSpace(txt) != "" {
					parts = append(parts, txt)
				}
			}
		}
		if text := strings.TrimSpace(strings.Join(parts, "\n")); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

type commentsXML struct {
	Comments []struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"comment"`
}

func extractComments(zr *zip.Reader) []string {
	b, err := readZipEntry(zr, "word/comments.xml")
	if err != nil {
		return nil
	}
	var c commentsXML
	if err := xml.Unmarshal(b, &c); err != nil {
		return nil
	}
	var out []string
	for _, comment := range c.Comments {
		var parts []string
		for _, p := range comment.Paragraphs {
			if txt := p.text(false); strings.TrimSpace(txt) != "" {
				parts = append(parts, txt)
			}
		}
		if text := strings.TrimSpace(strings.Join(parts, " ")); text != "" {
			out = append(out, text)
		}
	}
	return out
}

type coreProperties struct {
	Title       string `xml:"title"`
	Creator     string `xml:"creator"`
	Subject     string `xml:"subject"`
	Description string `xml:"description"`
	Created     string `xml:"created"`
	Modified    string `xml:"modified"`
	Revision    string `xml:"revision"`
	Keywords    string `xml:"keywords"`
	Category    string `xml:"category"`
}

func applyCoreProperties(b []byte, meta *docmodel.DocumentMetadata) {
	var cp coreProperties
	if err := xml.Unmarshal(b, &cp); err != nil {
		appendExtractionError(meta, fmt.Sprintf("core properties: %v", err))
		return
	}
	meta.Title = cp.Title
	meta.Author = cp.Creator
	meta.Subject = cp.Subject
	if cp.Created != "" {
		if t, ok := parseISODate(cp.Created); ok {
			meta.CreationDate = t
		}
	}
	if cp.Modified != "" {
		if t, ok := parseISODate(cp.Modified); ok {
			meta.ModificationDate = t
		}
	}
	if cp.Revision != "" {
		if n, err := strconv.Atoi(cp.Revision); err == nil {
			meta.Extra["revision"] = n
		}
	}
	if cp.Keywords != "" {
		meta.Extra["keywords"] = cp.Keywords
	}
	if cp.Category != "" {
		meta.Extra["category"] = cp.Category
	}
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("zip entry not found: %s", name)
}
