package docgen

import (
	"errors"
	"strings"
)

// ErrNoPlaceholders is returned when no part of the package holds {{rev}} or {{date}}.
var ErrNoPlaceholders = errors.New("no {{rev}} or {{date}} placeholder found in document")

// Revision is the stamp written into a canonical template.
type Revision struct {
	Rev  string
	Date string
}

// PatchArchive replaces {{rev}} and {{date}} in every XML part of the package at
// srcPath and writes the rebuilt package to dstPath, which may equal srcPath.
// Nothing is written when neither token appears anywhere. It returns the names
// of the patched parts.
func PatchArchive(srcPath, dstPath string, rev Revision) ([]string, error) {
	if err := CheckTemplate(srcPath); err != nil {
		return nil, err
	}

	parts, err := readParts(srcPath)
	if err != nil {
		return nil, err
	}

	revToken := Placeholder("rev")
	dateToken := Placeholder("date")
	tokens := []string{revToken, dateToken}
	replacer := strings.NewReplacer(
		revToken, formatDocxValue(rev.Rev),
		dateToken, formatDocxValue(rev.Date),
	)

	var patched []string
	for i := range parts {
		if !parts[i].isXML() {
			continue
		}
		content := normalizePlaceholders(string(parts[i].data), tokens)
		if !strings.Contains(content, revToken) && !strings.Contains(content, dateToken) {
			continue
		}
		parts[i].data = []byte(replacer.Replace(content))
		patched = append(patched, parts[i].header.Name)
	}

	if len(patched) == 0 {
		return nil, ErrNoPlaceholders
	}

	if err := writeParts(dstPath, parts); err != nil {
		return nil, err
	}
	return patched, nil
}
