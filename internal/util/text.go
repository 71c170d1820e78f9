package util

import "strings"

// NormalizeSpace collapses runs of whitespace (including newlines from XML
// pretty-printing) into single spaces and trims the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
