package ai

import "strings"

const ellipsis = "..."

// ClampLine flattens a reply to a single line and truncates it to at most
// maxBytes without splitting a multi-byte character. A truncated reply
// ends with "..." so the cut is visible; the limit is never exceeded.
func ClampLine(s string, maxBytes int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxBytes {
		return s
	}
	cut, suffix := maxBytes, ""
	if maxBytes > len(ellipsis) {
		cut, suffix = maxBytes-len(ellipsis), ellipsis
	}
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
