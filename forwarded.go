package forwarded

import (
	"github.com/valyala/bytebufferpool"
)

// Well-known parameter names defined by RFC 7239 section 5.
const (
	ParamBy    = "by"
	ParamFor   = "for"
	ParamHost  = "host"
	ParamProto = "proto"
)

// Record holds the parameters of a single forwarded-element, i.e. one
// comma-separated group of the header value.
//
// Keys are lower-cased parameter names. When a name is repeated inside
// a group the last value wins.
type Record map[string]string

// Get returns the value of the given parameter. The name is matched
// case-insensitively.
func (r Record) Get(name string) string {
	return r[normalizeName(name)]
}

// Elements maps every lower-cased parameter name to all of its values in
// the order they appear in the header value, regardless of grouping.
type Elements map[string][]string

// Get returns the first value of the given parameter or an empty string.
// The name is matched case-insensitively.
func (e Elements) Get(name string) string {
	vs := e[normalizeName(name)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns all the values of the given parameter.
// The name is matched case-insensitively.
func (e Elements) Values(name string) []string {
	return e[normalizeName(name)]
}

// Parse parses the value of the Forwarded header into one Record per
// forwarded-element.
//
// The returned error is a *ParseError.
func Parse(s string) ([]Record, error) {
	return ParseBytes(s2b(s))
}

// ParseBytes is like Parse but accepts a byte slice.
func ParseBytes(b []byte) ([]Record, error) {
	var records []Record
	err := Visit(b, func(group int, name, value []byte) bool {
		for len(records) <= group {
			records = append(records, make(Record))
		}
		records[group][string(name)] = string(value)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseElements parses the value of the Forwarded header into a single
// mapping accumulating the values of every parameter.
//
// The returned error is a *ParseError.
func ParseElements(s string) (Elements, error) {
	return ParseElementsBytes(s2b(s))
}

// ParseElementsBytes is like ParseElements but accepts a byte slice.
func ParseElementsBytes(b []byte) (Elements, error) {
	elements := make(Elements)
	err := Visit(b, func(_ int, name, value []byte) bool {
		k := string(name)
		elements[k] = append(elements[k], string(value))
		return true
	})
	if err != nil {
		return nil, err
	}
	return elements, nil
}

// Visit calls f for every name=value pair found in b, in order.
//
// group is the zero-based index of the forwarded-element the pair belongs
// to. name is lower-cased. Quoted values are passed without the quotes and
// with escapes resolved.
//
// f must not retain references to name and value after returning.
// Make name and/or value copies if you need storing them after returning.
//
// Visit stops when f returns false. Pairs passed to f before a syntax
// error is detected are not withdrawn; callers that need all-or-nothing
// semantics should use Parse or ParseElements.
func Visit(b []byte, f func(group int, name, value []byte) bool) error {
	s := scanner{
		b:     b,
		name:  bytebufferpool.Get(),
		token: bytebufferpool.Get(),
	}
	err := s.scan(f)
	bytebufferpool.Put(s.name)
	bytebufferpool.Put(s.token)
	return err
}

func normalizeName(name string) string {
	for i := 0; i < len(name); i++ {
		if c := name[i]; toLowerTable[c] != c {
			b := []byte(name)
			lowercaseBytes(b[i:])
			return b2s(b)
		}
	}
	return name
}
