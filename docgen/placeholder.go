package docgen

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

var (
	placeholderRegexCache sync.Map
	proofErrTagPattern    = regexp.MustCompile(`<w:proofErr[^>]*/>`)
)

// Placeholder wraps a context key in template braces.
func Placeholder(key string) string {
	return "{{" + key + "}}"
}

// normalizePlaceholders rewrites every occurrence of the given placeholders that
// Word split across runs (or wrote with inner spaces) back to the literal form.
func normalizePlaceholders(content string, placeholders []string) string {
	if len(placeholders) == 0 {
		return content
	}

	content = proofErrTagPattern.ReplaceAllString(content, "")

	keys := append([]string(nil), placeholders...)
	sort.Strings(keys)
	for _, placeholder := range keys {
		content = placeholderRegexFor(placeholder).ReplaceAllString(content, placeholder)
	}
	return content
}

func placeholderRegexFor(placeholder string) *regexp.Regexp {
	if cached, ok := placeholderRegexCache.Load(placeholder); ok {
		return cached.(*regexp.Regexp)
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(placeholder, "{{"), "}}")
	inner = strings.TrimSpace(inner)

	var builder strings.Builder
	gap := `(?:\s|<[^>]+>)*`

	builder.WriteString(`\{`)
	builder.WriteString(gap)
	builder.WriteString(`\{`)
	builder.WriteString(gap)
	for _, r := range inner {
		builder.WriteString(regexp.QuoteMeta(string(r)))
		builder.WriteString(gap)
	}
	builder.WriteString(`\}`)
	builder.WriteString(gap)
	builder.WriteString(`\}`)

	re := regexp.MustCompile(builder.String())
	placeholderRegexCache.Store(placeholder, re)
	return re
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func xmlEscape(value string) string {
	return xmlReplacer.Replace(value)
}

// formatDocxValue escapes value for a w:t element and turns newlines into breaks.
func formatDocxValue(value string) string {
	if value == "" {
		return ""
	}

	value = strings.ReplaceAll(value, "\r\n", "\n")
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		parts[i] = xmlEscape(part)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts, "</w:t><w:br/><w:t xml:space=\"preserve\">")
}
