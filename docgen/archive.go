// Package docgen fills, patches and converts DOCX templates.
package docgen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// part is one entry of a DOCX package held in memory.
type part struct {
	header zip.FileHeader
	data   []byte
}

func (p part) isXML() bool {
	name := strings.ToLower(p.header.Name)
	return strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels")
}

// readParts loads every entry of the package at path.
func readParts(path string) ([]part, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer reader.Close()

	parts := make([]part, 0, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read template entry %s: %w", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read template entry %s: %w", file.Name, err)
		}
		parts = append(parts, part{header: file.FileHeader, data: data})
	}
	return parts, nil
}

// writeParts writes a rebuilt package next to outputPath and renames it into
// place, so readers never observe a half-written file.
func writeParts(outputPath string, parts []part) (err error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".docgen-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output docx: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	writer := zip.NewWriter(tmp)
	for _, p := range parts {
		header := p.header
		entry, err := writer.CreateHeader(&header)
		if err != nil {
			writer.Close()
			tmp.Close()
			return fmt.Errorf("failed to write docx entry: %w", err)
		}
		if _, err := entry.Write(p.data); err != nil {
			writer.Close()
			tmp.Close()
			return fmt.Errorf("failed to write docx entry: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to finalize docx: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finalize docx: %w", err)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		return fmt.Errorf("failed to move docx into place: %w", err)
	}
	return nil
}
