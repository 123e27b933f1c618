package classify

import (
	"strings"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
)

// SectionTitle returns the text that marks slide as a section start, or ""
// when the slide does not start a section. The title placeholder is checked
// first, then every text frame in document order.
func SectionTitle(slide models.Slide) string {
	if title, ok := slide.Title(); ok {
		if t := strings.TrimSpace(title); containsMarker(t) {
			return t
		}
	}
	for _, sh := range slide.Shapes {
		if !sh.HasTextFrame() {
			continue
		}
		if t := strings.TrimSpace(sh.Text); containsMarker(t) {
			return t
		}
	}
	return ""
}

// MarkerRemainder returns the trimmed text that follows the marker phrase.
// It returns "" when title has no marker.
func MarkerRemainder(title string) string {
	title = strings.TrimSpace(title)
	lower := strings.ToLower(title)
	idx := strings.Index(lower, MarkerPhrase)
	if idx < 0 {
		return ""
	}
	// ToLower keeps byte offsets for the ASCII marker but not necessarily
	// for what precedes it, so locate the remainder by rune count.
	prefixRunes := len([]rune(lower[:idx])) + len([]rune(MarkerPhrase))
	runes := []rune(title)
	if prefixRunes > len(runes) {
		return ""
	}
	return strings.TrimSpace(string(runes[prefixRunes:]))
}
