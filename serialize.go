package forwarded

import (
	"sort"
)

// AppendValue appends v to dst as an RFC 7239 value and returns the
// extended buffer.
//
// Non-empty values made of token characters only are appended as is.
// Anything else is appended as a quoted-string. Characters above U+00FF
// are written as escaped octets so the result can be parsed back.
func AppendValue(dst []byte, v string) []byte {
	if isToken(v) {
		return append(dst, v...)
	}
	b := s2b(v)
	dst = append(dst, '"')
	for i := 0; i < len(b); {
		c, n := nextChar(b, i)
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', byte(c))
		case c > 0xFF:
			for _, x := range b[i : i+n] {
				dst = append(dst, '\\', x)
			}
		default:
			dst = append(dst, b[i:i+n]...)
		}
		i += n
	}
	return append(dst, '"')
}

// ValidName reports whether name can be used as a parameter name,
// i.e. whether it is a non-empty RFC 7230 token.
func ValidName(name string) bool {
	return isToken(name)
}

func isToken(v string) bool {
	if len(v) == 0 {
		return false
	}
	for i := 0; i < len(v); i++ {
		if tokenCharTable[v[i]] == 0 {
			return false
		}
	}
	return true
}

func appendPair(dst []byte, name, value string) []byte {
	dst = append(dst, name...)
	dst = append(dst, '=')
	return AppendValue(dst, value)
}

// AppendBytes appends the forwarded-element representation of r to dst
// and returns the extended buffer. Parameters are sorted by name.
func (r Record) AppendBytes(dst []byte) []byte {
	for i, name := range r.sortedNames() {
		if i > 0 {
			dst = append(dst, ';')
		}
		dst = appendPair(dst, name, r[name])
	}
	return dst
}

// String returns the forwarded-element representation of r.
func (r Record) String() string {
	return string(r.AppendBytes(nil))
}

func (r Record) sortedNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AppendRecords appends records to dst as a Forwarded header value and
// returns the extended buffer.
func AppendRecords(dst []byte, records []Record) []byte {
	for i, r := range records {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = r.AppendBytes(dst)
	}
	return dst
}

// AppendBytes appends e to dst as a Forwarded header value with one
// forwarded-element per value and returns the extended buffer.
//
// Parsing the result with ParseElements yields a mapping equal to e.
func (e Elements) AppendBytes(dst []byte) []byte {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	first := true
	for _, name := range names {
		for _, v := range e[name] {
			if !first {
				dst = append(dst, ", "...)
			}
			first = false
			dst = appendPair(dst, name, v)
		}
	}
	return dst
}

// String returns e as a Forwarded header value.
func (e Elements) String() string {
	return string(e.AppendBytes(nil))
}
