package social

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		expected string
	}{
		{"plain", "golang", "golang"},
		{"hash and case", "#GoLang", "golang"},
		{"spaces", "  #SmallBiz  ", "smallbiz"},
		{"only hashes", "###", ""},
		{"long tag kept whole", "#" + strings.Repeat("x", 40), strings.Repeat("x", 40)},
		{"unicode", "#Café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTag(tt.tag); got != tt.expected {
				t.Errorf("NormalizeTag(%q) = %q, want %q", tt.tag, got, tt.expected)
			}
		})
	}
}

func TestValidTagLength(t *testing.T) {
	if !ValidTagLength(strings.Repeat("é", MaxTagLength)) {
		t.Errorf("ValidTagLength() should count runes, not bytes")
	}
	if ValidTagLength(strings.Repeat("a", MaxTagLength+1)) {
		t.Errorf("ValidTagLength() should reject %d runes", MaxTagLength+1)
	}
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{"none", "no tags here", nil},
		{"single", "launching #Bakery", []string{"bakery"}},
		{"dedupe", "#go #Go #GO", []string{"go"}},
		{"order kept", "#b then #a", []string{"b", "a"}},
		{"punctuation ends tag", "#retail, #local!", []string{"retail", "local"}},
		{"underscore and digits", "#small_biz2024", []string{"small_biz2024"}},
		{"bare hash", "# nothing", nil},
		{"over-long skipped", "#" + strings.Repeat("y", MaxTagLength+1) + " #ok", []string{"ok"}},
		{"max length kept", "#" + strings.Repeat("z", MaxTagLength), []string{strings.Repeat("z", MaxTagLength)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractHashtags(tt.content); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractHashtags(%q) = %v, want %v", tt.content, got, tt.expected)
			}
		})
	}
}
