package forwarded

import (
	"unicode/utf8"
	"unsafe"
)

func isTokenChar(c rune) bool {
	return c < 0x80 && tokenCharTable[c] != 0
}

func isDelimiter(c rune) bool {
	return c < 0x80 && delimiterTable[c] != 0
}

// isPrint reports whether c is a printable ASCII character.
func isPrint(c rune) bool {
	return c >= 0x20 && c <= 0x7E
}

// isExtended reports whether c falls into the 8-bit range accepted
// inside quoted-strings in addition to RFC 7230 qdtext.
func isExtended(c rune) bool {
	return c >= 0x80 && c <= 0xFF
}

func isOWS(c rune) bool {
	return c == ' ' || c == '\t'
}

// nextChar returns the character starting at b[i] and its width in bytes.
//
// Well-formed UTF-8 sequences are classified by their code point. A byte
// that does not start a valid sequence stands for itself, so raw obs-text
// bytes 0x80-0xFF are still reported as extended characters.
func nextChar(b []byte, i int) (rune, int) {
	c := b[i]
	if c < utf8.RuneSelf {
		return rune(c), 1
	}
	r, n := utf8.DecodeRune(b[i:])
	if r == utf8.RuneError && n == 1 {
		return rune(c), 1
	}
	return r, n
}

func lowercaseBytes(b []byte) {
	for i, n := 0, len(b); i < n; i++ {
		p := &b[i]
		*p = toLowerTable[*p]
	}
}

// b2s converts byte slice to a string without memory allocation.
// See https://groups.google.com/forum/#!msg/Golang-Nuts/ENgbUzYvCuU/90yGx7GUAgAJ .
func b2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	return unsafe.String(&b[0], len(b))
}

// s2b converts string to a byte slice without memory allocation.
func s2b(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
