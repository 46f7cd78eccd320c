package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// maxFilenameLength leaves room for an id prefix and an extension within the
// usual 255 byte limit.
const maxFilenameLength = 200

// SanitizeFilename strips characters that are invalid in filenames on common
// filesystems, normalises whitespace and bounds the length.
func SanitizeFilename(filename string) string {
	// Remove invalid filename characters
	filename = invalidFilenameChars.ReplaceAllString(filename, "")

	// Replace newlines/tabs with spaces
	filename = whitespaceChars.ReplaceAllString(filename, " ")

	// Collapse multiple spaces
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	filename = strings.TrimSpace(filename)

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	if len(filename) > maxFilenameLength {
		filename = truncateUTF8(filename, maxFilenameLength)
		filename = strings.TrimSpace(filename)
	}

	// Leading dots would hide the file or walk up a directory.
	filename = strings.TrimLeft(filename, ".")

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// TitleSlug turns a book title into a filename fragment: sanitised, with
// spaces replaced by underscores.
func TitleSlug(title string) string {
	return strings.ReplaceAll(SanitizeFilename(title), " ", "_")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
