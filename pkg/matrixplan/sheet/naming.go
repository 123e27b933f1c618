package sheet

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
)

// MaxSheetNameLength is the longest sheet name the format accepts, counted
// in UTF-16 code units.
const MaxSheetNameLength = 31

// DefaultSheetName names the single sheet of a deck without section markers.
const DefaultSheetName = "Test Sheet"

var illegalSheetChars = regexp.MustCompile(`[\s\\/?*\[\]:]+`)

// reservedSheetNames cannot be used as tab names by spreadsheet applications.
var reservedSheetNames = []string{"History"}

// SanitizeSheetName collapses whitespace and the characters \ / ? * [ ] :
// into single spaces, trims, and truncates to MaxSheetNameLength.
// Leading and trailing apostrophes are dropped as the format forbids them.
func SanitizeSheetName(name string) string {
	s := illegalSheetChars.ReplaceAllString(name, " ")
	s = strings.Trim(strings.TrimSpace(s), "'")
	s = truncateName(strings.TrimSpace(s), MaxSheetNameLength)
	return strings.Trim(strings.TrimSpace(s), "'")
}

// SheetNameFromTitle derives a sheet name from the text that follows the
// marker phrase, falling back to "Section <index>".
func SheetNameFromTitle(remainder string, index int) string {
	if name := SanitizeSheetName(remainder); name != "" {
		return name
	}
	return sectionFallback(index)
}

func sectionFallback(index int) string {
	return fmt.Sprintf("Section %d", index)
}

func nameLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// truncateName cuts s to at most n UTF-16 code units without splitting a rune.
func truncateName(s string, n int) string {
	used := 0
	for i, r := range s {
		used += utf16.RuneLen(r)
		if used > n {
			return s[:i]
		}
	}
	return s
}

// NameRegistry hands out unique sheet names. Comparison is case-insensitive
// because sheet tabs are.
type NameRegistry struct {
	taken []string
}

// NewNameRegistry returns a registry that already holds the given names.
func NewNameRegistry(existing ...string) *NameRegistry {
	r := &NameRegistry{}
	r.taken = append(r.taken, reservedSheetNames...)
	r.taken = append(r.taken, existing...)
	return r
}

// Taken reports whether name is already in use.
func (r *NameRegistry) Taken(name string) bool {
	for _, t := range r.taken {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// Reserve returns a unique name based on base and records it. Collisions
// get " (2)", " (3)", ... appended, truncating base so the result still
// fits MaxSheetNameLength. An empty base falls back to "Section <index>".
func (r *NameRegistry) Reserve(base string, index int) string {
	if base == "" {
		base = sectionFallback(index)
	}
	name := base
	for n := 2; r.Taken(name); n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		trimmed := strings.TrimSpace(truncateName(base, MaxSheetNameLength-nameLength(suffix)))
		name = trimmed + suffix
	}
	r.taken = append(r.taken, name)
	return name
}
