package docgen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
}

func writeDocx(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	names := []string{"[Content_Types].xml", "word/document.xml"}
	for name := range entries {
		if name != "[Content_Types].xml" && name != "word/document.xml" {
			names = append(names, name)
		}
	}
	if _, ok := entries["[Content_Types].xml"]; !ok {
		entries["[Content_Types].xml"] = `<?xml version="1.0"?><Types/>`
	}
	for _, name := range names {
		content, ok := entries[name]
		if !ok {
			continue
		}
		w, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func readEntry(t *testing.T, path, name string) string {
	t.Helper()

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read entry %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("entry %s not found in %s", name, path)
	return ""
}

func TestRenderTemplateLeavesUnknownPlaceholders(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "template.docx")
	out := filepath.Join(dir, "out", "filled.docx")

	writeDocx(t, tpl, map[string]string{
		"word/document.xml": documentXML(`<w:p><w:r><w:t>Title: {{research_title}}</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Chair: {{panel_chair}}</w:t></w:r></w:p>`),
	})

	if err := RenderTemplate(tpl, out, map[string]string{"research_title": "Study of X"}); err != nil {
		t.Fatalf("RenderTemplate returned error: %v", err)
	}

	doc := readEntry(t, out, "word/document.xml")
	if !strings.Contains(doc, "Title: Study of X") {
		t.Fatalf("expected title to be filled, got %s", doc)
	}
	if !strings.Contains(doc, "Chair: {{panel_chair}}") {
		t.Fatalf("expected unresolved placeholder to stay verbatim, got %s", doc)
	}
}

func TestRenderTemplateJoinsSplitRunsAndEscapes(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "template.docx")
	out := filepath.Join(dir, "filled.docx")

	split := `<w:p><w:r><w:t>{{</w:t></w:r><w:proofErr w:type="spellStart"/><w:r><w:t>lead_</w:t></w:r>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t>researcher }}</w:t></w:r></w:p>`
	writeDocx(t, tpl, map[string]string{
		"word/document.xml": documentXML(split + `<w:p><w:r><w:t>{{place_defense}}</w:t></w:r></w:p>`),
	})

	values := map[string]string{
		"lead_researcher": "Ana & <Ben>",
		"place_defense":   "Room 1\nBuilding A",
	}
	if err := RenderTemplate(tpl, out, values); err != nil {
		t.Fatalf("RenderTemplate returned error: %v", err)
	}

	doc := readEntry(t, out, "word/document.xml")
	if !strings.Contains(doc, "Ana &amp; &lt;Ben&gt;") {
		t.Fatalf("expected escaped researcher, got %s", doc)
	}
	if strings.Contains(doc, "lead_") {
		t.Fatalf("expected split placeholder to be replaced, got %s", doc)
	}
	if !strings.Contains(doc, "Room 1</w:t><w:br/>") {
		t.Fatalf("expected newline to become a break, got %s", doc)
	}
}

func TestRenderTemplateMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	err := RenderTemplate(filepath.Join(dir, "missing.docx"), filepath.Join(dir, "out.docx"), nil)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestPatchArchiveWithoutPlaceholdersWritesNothing(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "template.docx")
	out := filepath.Join(dir, "patched.docx")

	writeDocx(t, tpl, map[string]string{
		"word/document.xml": documentXML(`<w:p><w:r><w:t>{{research_title}}</w:t></w:r></w:p>`),
	})
	before, err := os.ReadFile(tpl)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}

	_, err = PatchArchive(tpl, out, Revision{Rev: "3", Date: "January 2, 2026"})
	if !errors.Is(err, ErrNoPlaceholders) {
		t.Fatalf("expected ErrNoPlaceholders, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file, stat returned %v", statErr)
	}

	after, err := os.ReadFile(tpl)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("expected template to be untouched")
	}

	// Overwriting in place must not touch the file either.
	if _, err := PatchArchive(tpl, tpl, Revision{Rev: "3"}); !errors.Is(err, ErrNoPlaceholders) {
		t.Fatalf("expected ErrNoPlaceholders on in-place patch, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the template in %s, found %d entries", dir, len(entries))
	}
}

func TestPatchArchivePatchesHeadersInPlace(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "template.docx")

	writeDocx(t, tpl, map[string]string{
		"word/document.xml": documentXML(`<w:p><w:r><w:t>{{research_title}}</w:t></w:r></w:p>`),
		"word/header1.xml":  `<w:hdr ` + wordNS + `><w:p><w:r><w:t>Rev {{ rev }} / {{da</w:t></w:r><w:r><w:t>te}}</w:t></w:r></w:p></w:hdr>`,
		"word/media/logo.png": "\x89PNG{{rev}}",
	})

	patched, err := PatchArchive(tpl, tpl, Revision{Rev: "4", Date: "March 1, 2026"})
	if err != nil {
		t.Fatalf("PatchArchive returned error: %v", err)
	}
	if len(patched) != 1 || patched[0] != "word/header1.xml" {
		t.Fatalf("expected only the header to be patched, got %v", patched)
	}

	header := readEntry(t, tpl, "word/header1.xml")
	if !strings.Contains(header, "Rev 4 / March 1, 2026") {
		t.Fatalf("expected header to be stamped, got %s", header)
	}
	if doc := readEntry(t, tpl, "word/document.xml"); !strings.Contains(doc, "{{research_title}}") {
		t.Fatalf("expected body placeholders to survive, got %s", doc)
	}
	if media := readEntry(t, tpl, "word/media/logo.png"); media != "\x89PNG{{rev}}" {
		t.Fatalf("expected binary parts to be copied as-is, got %q", media)
	}
}

func TestNativeConverterProducesPDF(t *testing.T) {
	dir := t.TempDir()
	docx := filepath.Join(dir, "filled.docx")
	pdfPath := filepath.Join(dir, "filled.pdf")

	writeDocx(t, docx, map[string]string{
		"word/document.xml": documentXML(
			`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>Application for Oral Defense</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Lead</w:t></w:r><w:r><w:tab/><w:t>Ana</w:t></w:r></w:p>` +
				`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Adviser</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Unknown</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
		),
	})

	if err := NewNativeConverter().Convert(context.Background(), docx, pdfPath); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF header, got %q", data[:min(len(data), 8)])
	}
}

func TestNativeConverterHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewNativeConverter().Convert(ctx, "unused.docx", "unused.pdf")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractParagraphs(t *testing.T) {
	body := documentXML(
		`<w:p><w:pPr><w:jc w:val="right"/></w:pPr><w:r><w:t>Right</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>one</w:t><w:br/><w:t>two</w:t></w:r></w:p>` +
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
	)

	paragraphs, err := extractParagraphs(strings.NewReader(body))
	if err != nil {
		t.Fatalf("extractParagraphs returned error: %v", err)
	}
	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %#v", len(paragraphs), paragraphs)
	}
	if paragraphs[0].text != "Right" || alignCode(paragraphs[0].align) != "R" {
		t.Fatalf("unexpected first paragraph %#v", paragraphs[0])
	}
	if paragraphs[1].text != "one\ntwo" {
		t.Fatalf("expected line break to be kept, got %q", paragraphs[1].text)
	}
	if paragraphs[2].text != "a | b" {
		t.Fatalf("expected table row to be flattened, got %q", paragraphs[2].text)
	}
}

func TestExtractParagraphsIgnoresParagraphProperties(t *testing.T) {
	body := documentXML(
		`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/><w:tab w:val="left" w:pos="1440"/></w:tabs>` +
			`<w:rPr><w:b/></w:rPr></w:pPr><w:r><w:t>Adviser</w:t></w:r><w:r><w:tab/><w:t>{{adviser}}</w:t></w:r></w:p>` +
			`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Bold</w:t></w:r></w:p>`,
	)

	paragraphs, err := extractParagraphs(strings.NewReader(body))
	if err != nil {
		t.Fatalf("extractParagraphs returned error: %v", err)
	}
	if len(paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %#v", len(paragraphs), paragraphs)
	}
	if paragraphs[0].text != "Adviser    {{adviser}}" {
		t.Fatalf("tab stop definitions leaked into text: %q", paragraphs[0].text)
	}
	if paragraphs[0].bold {
		t.Fatalf("paragraph mark formatting should not make the paragraph bold")
	}
	if !paragraphs[1].bold {
		t.Fatalf("expected bold run to mark the paragraph bold")
	}
}

func TestNewConverter(t *testing.T) {
	conv, err := NewConverter("native", "")
	if err != nil {
		t.Fatalf("NewConverter returned error: %v", err)
	}
	if _, ok := conv.(*NativeConverter); !ok {
		t.Fatalf("expected a NativeConverter, got %T", conv)
	}

	if _, err := NewConverter("word", ""); err == nil {
		t.Fatalf("expected an error for an unknown converter")
	}

	if _, err := NewConverter("libreoffice", t.TempDir()); err == nil {
		t.Fatalf("expected an error when LIBREOFFICE_PATH is a directory")
	}
}

func TestFileURLFromPath(t *testing.T) {
	got, err := fileURLFromPath("/tmp/lo profile")
	if err != nil {
		t.Fatalf("fileURLFromPath returned error: %v", err)
	}
	if got != "file:///tmp/lo%20profile" {
		t.Fatalf("unexpected url %q", got)
	}
}
