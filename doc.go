/*
Package forwarded parses the value of the Forwarded HTTP request header
defined by RFC 7239.

The parser provides the following features:

  - Strict, single pass validation of the RFC 7239 grammar with
    case-insensitive parameter names, optional whitespace around
    delimiters and quoted-strings with backslash escapes.
  - 8-bit characters are accepted inside quoted-strings.
  - Errors carry the byte offset of the offending character.
  - Two result shapes: one Record per forwarded-element (see Parse),
    or all values accumulated per parameter name (see ParseElements).
  - Parsed values can be serialized back (see AppendRecords).

Parameter values are opaque: node identifiers, hosts and protocols are
neither validated nor normalized.

See the fasthttpforwarded and forwardedhttp packages for using the parser
with fasthttp and net/http servers.
*/
package forwarded
