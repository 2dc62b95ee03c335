package docgen

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrTemplateNotFound is returned when the template file does not exist.
var ErrTemplateNotFound = errors.New("template file not found")

// ReservedKeys are placeholders owned by the archive patcher. They are stamped
// into the canonical template and never come from a request.
var ReservedKeys = []string{"rev", "date"}

// IsReserved reports whether key is one of ReservedKeys.
func IsReserved(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, reserved := range ReservedKeys {
		if key == reserved {
			return true
		}
	}
	return false
}

// CheckTemplate returns ErrTemplateNotFound when path is missing.
func CheckTemplate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to access template: %w", err)
	}
	if info.IsDir() {
		return ErrTemplateNotFound
	}
	return nil
}

// RenderTemplate fills every {{key}} of the template with values[key] and writes
// the populated document to outputPath. Placeholders without a value are left
// untouched.
func RenderTemplate(templatePath, outputPath string, values map[string]string) error {
	if err := CheckTemplate(templatePath); err != nil {
		return err
	}

	parts, err := readParts(templatePath)
	if err != nil {
		return err
	}

	replacements := make(map[string]string, len(values))
	placeholders := make([]string, 0, len(values))
	for key, value := range values {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		placeholder := Placeholder(key)
		replacements[placeholder] = formatDocxValue(value)
		placeholders = append(placeholders, placeholder)
	}

	for i := range parts {
		if !parts[i].isXML() {
			continue
		}
		parts[i].data = []byte(fillPlaceholders(string(parts[i].data), placeholders, replacements))
	}

	return writeParts(outputPath, parts)
}

func fillPlaceholders(content string, placeholders []string, replacements map[string]string) string {
	content = normalizePlaceholders(content, placeholders)
	pairs := make([]string, 0, len(replacements)*2)
	for placeholder, value := range replacements {
		pairs = append(pairs, placeholder, value)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}
