package classify

import "strings"

// SanitizeText removes control characters the spreadsheet format cannot
// store (below U+0020 except tab, line feed and carriage return).
func SanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
