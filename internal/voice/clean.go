package voice

import (
	"regexp"
	"strings"
)

var (
	boldMarker    = regexp.MustCompile(`\*\*`)
	headingMarker = regexp.MustCompile(`#{1,3}\s`)
	bulletMarker  = regexp.MustCompile(`[•\-]`)
	paragraphGap  = regexp.MustCompile(`\n{2,}`)
	lineBreak     = regexp.MustCompile(`\n`)
)

// CleanForSpeech strips lightweight markdown so text reads naturally aloud.
// Paragraph and line breaks become sentence pauses.
func CleanForSpeech(text string) string {
	text = boldMarker.ReplaceAllString(text, "")
	text = headingMarker.ReplaceAllString(text, "")
	text = bulletMarker.ReplaceAllString(text, "")
	text = paragraphGap.ReplaceAllString(text, ". ")
	text = lineBreak.ReplaceAllString(text, ". ")
	return strings.TrimSpace(text)
}
