// Package textnorm normalizes model output for storage and export.
package textnorm

import (
	"strings"
	"unicode/utf8"
)

// MaxCellLength is the largest number of characters a spreadsheet cell accepts.
const MaxCellLength = 32767

// FlattenLines joins the trimmed non-empty lines of s with a single space.
func FlattenLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	parts := strings.Split(s, "\n")
	out := parts[:0]
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// StripInvalidXML drops characters that are not allowed in XML 1.0 documents.
// Invalid UTF-8 bytes become U+FFFD.
func StripInvalidXML(s string) string {
	if isValidXML(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if validXMLRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isValidXML(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !validXMLRune(r) {
			return false
		}
	}
	return true
}

func validXMLRune(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Cell prepares a value for a single spreadsheet or document cell.
func Cell(s string) string {
	return Truncate(StripInvalidXML(FlattenLines(s)), MaxCellLength)
}

// Preview shortens s for log fields.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return Truncate(s, n) + "..."
}

// StripCodeFence removes a surrounding markdown code fence, with or without a language tag.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DisplayWidth approximates the width of a value in spreadsheet columns.
func DisplayWidth(s string) int {
	return utf8.RuneCountInString(s)
}
