package forwarded

import (
	"github.com/valyala/bytebufferpool"
)

// scanner holds the state of a single pass over a Forwarded header value.
//
// A parameter name is pending while hasName is set. Until then token
// accumulates the name; afterwards it accumulates the value.
type scanner struct {
	b []byte

	name  *bytebufferpool.ByteBuffer
	token *bytebufferpool.ByteBuffer

	hasName bool

	// escape is set after a backslash inside a quoted-string.
	escape bool

	// quote is set between the opening and the closing DQUOTE.
	quote bool

	// complete is set once a value has been fully read and only
	// optional whitespace or a delimiter may follow.
	complete bool

	// ows is set while optional whitespace may be skipped.
	ows bool

	group int
}

func (s *scanner) scan(f func(group int, name, value []byte) bool) error {
	b := s.b
	for i := 0; i < len(b); {
		c, n := nextChar(b, i)

		if !s.hasName {
			switch {
			case s.ows && isOWS(c):
			case c == '=' && len(s.token.B) > 0:
				s.name.B = append(s.name.B[:0], s.token.B...)
				lowercaseBytes(s.name.B)
				s.token.Reset()
				s.hasName = true
				s.ows = false
			case isTokenChar(c):
				s.ows = false
				s.token.B = append(s.token.B, b[i:i+n]...)
			default:
				return unexpectedCharacter(b, i, n)
			}
			i += n
			continue
		}

		switch {
		case s.escape && (c == '\t' || isPrint(c) || isExtended(c)):
			s.escape = false
			s.token.B = append(s.token.B, b[i:i+n]...)
		case isDelimiter(c) || isExtended(c):
			switch {
			case s.quote:
				switch c {
				case '"':
					s.quote = false
					s.complete = true
				case '\\':
					s.escape = true
				default:
					s.token.B = append(s.token.B, b[i:i+n]...)
				}
			case c == '"' && b[i-1] == '=':
				s.quote = true
			case (c == ',' || c == ';') && (len(s.token.B) > 0 || s.complete):
				if !f(s.group, s.name.B, s.token.B) {
					return nil
				}
				if c == ',' {
					s.group++
				}
				s.hasName = false
				s.token.Reset()
				s.complete = false
				s.ows = true
			default:
				return unexpectedCharacter(b, i, n)
			}
		case isTokenChar(c):
			if !s.quote && s.complete {
				return unexpectedCharacter(b, i, n)
			}
			s.token.B = append(s.token.B, b[i:i+n]...)
		case isOWS(c):
			switch {
			case s.quote:
				s.token.B = append(s.token.B, b[i:i+n]...)
			case s.complete:
				s.ows = true
			case len(s.token.B) > 0:
				s.complete = true
				s.ows = true
			default:
				return unexpectedCharacter(b, i, n)
			}
		default:
			return unexpectedCharacter(b, i, n)
		}
		i += n
	}

	if (len(s.token.B) == 0 && !s.complete) || !s.hasName || s.quote || s.ows {
		return unexpectedEndOfInput(b)
	}
	f(s.group, s.name.B, s.token.B)
	return nil
}
