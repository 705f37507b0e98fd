package services

import "regexp"

// Descriptions are authored in a rich-text editor and may contain markup;
// listing and detail views want plain text.
var tagPattern = regexp.MustCompile(`(?is)<.*?>`)

// SanitizeDescription strips angle-bracket-delimited tags from rich text,
// non-greedy and case-insensitive.
func SanitizeDescription(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}
