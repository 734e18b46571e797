package social

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTagLength bounds a normalized tag, in runes
const MaxTagLength = 32

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// NormalizeTag trims whitespace and leading '#' characters and lowercases.
// Length is not checked here; see ValidTagLength.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#")
	return strings.ToLower(strings.TrimSpace(tag))
}

// ValidTagLength reports whether a normalized tag fits the tag column
func ValidTagLength(tag string) bool {
	return utf8.RuneCountInString(tag) <= MaxTagLength
}

// ExtractHashtags returns the distinct normalized hashtags of content in order
// of first appearance. Hashtags longer than MaxTagLength are skipped.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := NormalizeTag(m[1])
		if tag == "" || seen[tag] || !ValidTagLength(tag) {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
