package docgen

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// NativeConverter lays out the text of a DOCX with fpdf. It keeps paragraphs,
// alignment, bold paragraphs, line breaks and table rows; images and exact Word
// geometry are not reproduced.
type NativeConverter struct {
	FontFamily string
	FontSize   float64
	LineHeight float64
}

func NewNativeConverter() *NativeConverter {
	return &NativeConverter{FontFamily: "Helvetica", FontSize: 11, LineHeight: 6}
}

type paragraph struct {
	text  string
	align string
	bold  bool
}

func (c *NativeConverter) Convert(ctx context.Context, docxPath, pdfPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parts, err := readParts(docxPath)
	if err != nil {
		return err
	}

	var body []byte
	for _, p := range parts {
		if p.header.Name == "word/document.xml" {
			body = p.data
			break
		}
	}
	if body == nil {
		return errors.New("failed to convert to pdf: word/document.xml missing")
	}

	paragraphs, err := extractParagraphs(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to convert to pdf: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, para := range paragraphs {
		if err := ctx.Err(); err != nil {
			return err
		}
		style := ""
		if para.bold {
			style = "B"
		}
		pdf.SetFont(c.FontFamily, style, c.FontSize)
		if strings.TrimSpace(para.text) == "" {
			pdf.Ln(c.LineHeight / 2)
			continue
		}
		pdf.MultiCell(0, c.LineHeight, tr(para.text), "", alignCode(para.align), false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to convert to pdf: %w", err)
	}
	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func alignCode(jc string) string {
	switch jc {
	case "center":
		return "C"
	case "right", "end":
		return "R"
	case "both", "distribute":
		return "J"
	default:
		return "L"
	}
}

func attrValue(start xml.StartElement, local string) string {
	for _, attr := range start.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

// extractParagraphs walks a WordprocessingML body. Table rows are flattened to a
// single line with cells separated by " | ".
func extractParagraphs(r io.Reader) ([]paragraph, error) {
	decoder := xml.NewDecoder(r)

	var (
		out        []paragraph
		current    strings.Builder
		align      string
		bold       bool
		inText     bool
		inRunProps bool
		// pPr holds tab stops and paragraph-mark formatting, not content
		inParaProps bool
		tableDepth int
		cell       strings.Builder
		row        []string
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
				align = ""
				bold = false
			case "pPr":
				inParaProps = true
			case "jc":
				align = attrValue(t, "val")
			case "rPr":
				inRunProps = true
			case "b":
				if inRunProps && !inParaProps {
					v := attrValue(t, "val")
					bold = bold || (v == "" || v == "1" || v == "true")
				}
			case "t":
				inText = true
			case "tab":
				if !inRunProps && !inParaProps {
					current.WriteString("    ")
				}
			case "br", "cr":
				current.WriteString("\n")
			case "tbl":
				tableDepth++
			case "tr":
				row = row[:0]
			case "tc":
				cell.Reset()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "rPr":
				inRunProps = false
			case "pPr":
				inParaProps = false
			case "p":
				text := current.String()
				if tableDepth > 0 {
					if cell.Len() > 0 && text != "" {
						cell.WriteString(" ")
					}
					cell.WriteString(text)
				} else {
					out = append(out, paragraph{text: text, align: align, bold: bold})
				}
			case "tc":
				row = append(row, strings.TrimSpace(cell.String()))
			case "tr":
				out = append(out, paragraph{text: strings.Join(row, " | ")})
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return out, nil
}
