package forwarded

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestParsePairs(t *testing.T) {
	t.Parallel()

	testParseSuccess(t, "foo=a,foo=b;bar=c;baz=d;qux=e", []Record{
		{"foo": "a"},
		{"foo": "b", "bar": "c", "baz": "d", "qux": "e"},
	})
	testParseSuccess(t, "for=192.0.2.43", []Record{
		{"for": "192.0.2.43"},
	})
	testParseSuccess(t, `for="[2001:db8:cafe::17]:4711";proto=http;by=203.0.113.43, for=198.51.100.17`, []Record{
		{"for": "[2001:db8:cafe::17]:4711", "proto": "http", "by": "203.0.113.43"},
		{"for": "198.51.100.17"},
	})
}

func TestParseQuotedStrings(t *testing.T) {
	t.Parallel()

	testParseSuccess(t, strings.Join([]string{
		`foo="bar"`,
		`foo="ba\r"`,
		`foo=",;"`,
		`foo=""`,
		`foo=" "`,
		"foo=\"\t\"",
		`foo="\""`,
		`foo="\\"`,
		`foo="¥"`,
		`foo="\§"`,
	}, ","), []Record{
		{"foo": "bar"},
		{"foo": "bar"},
		{"foo": ",;"},
		{"foo": ""},
		{"foo": " "},
		{"foo": "\t"},
		{"foo": `"`},
		{"foo": `\`},
		{"foo": "¥"},
		{"foo": "§"},
	})

	// obs-text that is not valid UTF-8 is kept byte for byte.
	testParseSuccess(t, "foo=\"\xa5\\\xa7\"", []Record{
		{"foo": "\xa5\xa7"},
	})
}

func TestParseOptionalWhitespace(t *testing.T) {
	t.Parallel()

	testParseSuccess(t, `foo=a,foo=b, foo="c" ,foo=d  ,  foo=e`, []Record{
		{"foo": "a"},
		{"foo": "b"},
		{"foo": "c"},
		{"foo": "d"},
		{"foo": "e"},
	})
	testParseSuccess(t, `foo=a;bar=b; baz=c ;qux="d"  ;  norf=e`, []Record{
		{"foo": "a", "bar": "b", "baz": "c", "qux": "d", "norf": "e"},
	})
	testParseSuccess(t, "foo=a,\tfoo=b\t,foo=c", []Record{
		{"foo": "a"},
		{"foo": "b"},
		{"foo": "c"},
	})
}

func TestParseCaseInsensitiveNames(t *testing.T) {
	t.Parallel()

	testParseSuccess(t, "foo=a,Foo=b", []Record{
		{"foo": "a"},
		{"foo": "b"},
	})
	testParseSuccess(t, "FOR=Mixed;Proto=HTTPS", []Record{
		{"for": "Mixed", "proto": "HTTPS"},
	})
}

func TestParseLastValueWins(t *testing.T) {
	t.Parallel()

	testParseSuccess(t, "foo=a;foo=b", []Record{
		{"foo": "b"},
	})
	testParseSuccess(t, `foo=a;FOO="b";bar=c`, []Record{
		{"foo": "b", "bar": "c"},
	})
}

func TestParseUnexpectedCharacter(t *testing.T) {
	t.Parallel()

	// empty parameter names
	testParseError(t, "foo=bar,=baz", "Unexpected character '=' at index 8", 8)
	testParseError(t, "=baz", "Unexpected character '=' at index 0", 0)

	// parameter names not made of 1*tchar
	testParseError(t, "f@r=192.0.2.43", "Unexpected character '@' at index 1", 1)

	// misplaced whitespace
	testParseError(t, "for =192.0.2.43", "Unexpected character ' ' at index 3", 3)
	testParseError(t, "for= 192.0.2.43", "Unexpected character ' ' at index 4", 4)
	testParseError(t, " for=192.0.2.43", "Unexpected character ' ' at index 0", 0)

	// values that are neither tokens nor quoted-strings
	testParseError(t, `foo=b"ar"`, `Unexpected character '"' at index 5`, 5)
	testParseError(t, `foo="ba"r, foo=baz`, "Unexpected character 'r' at index 8", 8)
	testParseError(t, "foo=ba r, foo=baz", "Unexpected character 'r' at index 7", 7)
	testParseError(t, "foo=, foo=baz", "Unexpected character ',' at index 4", 4)
	testParseError(t, `foo="a""b"`, `Unexpected character '"' at index 7`, 7)
	testParseError(t, "foo==bar", "Unexpected character '=' at index 4", 4)

	// escaping outside of quotes
	testParseError(t, `foo=b\ar`, `Unexpected character '\' at index 5`, 5)

	// characters outside of the accepted ranges
	testParseError(t, "foo=Ω, foo=baz", "Unexpected character 'Ω' at index 4", 4)
	testParseError(t, `foo="Ω", foo=baz`, "Unexpected character 'Ω' at index 5", 5)
	testParseError(t, "foo=¥", "Unexpected character '¥' at index 4", 4)
	testParseError(t, "foo=\"\x01\"", "Unexpected character '\x01' at index 5", 5)
	testParseError(t, "foo=\"\\\x7f\"", "Unexpected character '\x7f' at index 6", 6)
}

func TestParseUnexpectedEndOfInput(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"",
		"foo=",
		"foo",
		`foo="bar`,
		`foo="bar\`,
		"foo=bar ",
		`foo="bar" `,
		"foo=bar,",
		"foo=bar;",
		"foo=bar, ",
	} {
		testParseError(t, s, "Unexpected end of input", -1)
	}
}

func TestParseErrorKinds(t *testing.T) {
	t.Parallel()

	_, err := Parse("f@r=a")
	if !errors.Is(err, ErrUnexpectedCharacter) {
		t.Fatalf("unexpected error kind: %v. Expecting %v", err, ErrUnexpectedCharacter)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("unexpected error type %T. Expecting *ParseError", err)
	}
	if pe.Input != "f@r=a" {
		t.Fatalf("unexpected input %q. Expecting %q", pe.Input, "f@r=a")
	}
	if pe.Message != "Unexpected character '@'" {
		t.Fatalf("unexpected message %q. Expecting %q", pe.Message, "Unexpected character '@'")
	}

	_, err = ParseElements("foo=")
	if !errors.Is(err, ErrUnexpectedEndOfInput) {
		t.Fatalf("unexpected error kind: %v. Expecting %v", err, ErrUnexpectedEndOfInput)
	}
}

func TestParseElements(t *testing.T) {
	t.Parallel()

	testParseElementsSuccess(t, "foo=a,foo=b;bar=c;baz=d;qux=e", Elements{
		"foo": {"a", "b"},
		"bar": {"c"},
		"baz": {"d"},
		"qux": {"e"},
	})
	testParseElementsSuccess(t, `foo=a;FOO="b" , Foo=c`, Elements{
		"foo": {"a", "b", "c"},
	})
	testParseElementsSuccess(t, `foo="\""`, Elements{
		"foo": {`"`},
	})

	if _, err := ParseElements("foo=bar,=baz"); err == nil {
		t.Fatalf("expecting error")
	}
}

func TestParseBytes(t *testing.T) {
	t.Parallel()

	b := []byte("for=a;Proto=http, for=b")
	records, err := ParseBytes(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// values must not alias the input
	copy(b, "xxxxxxxxxxxxxxxxxxxxxxx")
	expected := []Record{{"for": "a", "proto": "http"}, {"for": "b"}}
	if !reflect.DeepEqual(records, expected) {
		t.Fatalf("unexpected records %v. Expecting %v", records, expected)
	}

	_, err = ParseBytes([]byte("f@r=a"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Input != "f@r=a" || pe.Index != 1 {
		t.Fatalf("unexpected error: %#v", err)
	}
}

func TestParseOptionalWhitespaceIsInsignificant(t *testing.T) {
	t.Parallel()

	a, err := Parse("foo=a, foo=b ,foo=c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Parse("foo=a,foo=b,foo=c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("unexpected records %v. Expecting %v", a, b)
	}
}

func TestVisit(t *testing.T) {
	t.Parallel()

	var got []string
	err := Visit([]byte(`for=a;by="b", Host=c`), func(group int, name, value []byte) bool {
		got = append(got, strconv.Itoa(group)+":"+string(name)+"="+string(value))
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"0:for=a", "0:by=b", "1:host=c"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected pairs %q. Expecting %q", got, expected)
	}

	// stop early
	n := 0
	err = Visit([]byte("a=1,b=2,c=3"), func(_ int, _, _ []byte) bool {
		n++
		return n < 2
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("unexpected number of calls %d. Expecting 2", n)
	}
}

func TestRecordGet(t *testing.T) {
	t.Parallel()

	records, err := Parse(`For="[2001:db8::1]";PROTO=https`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := records[0]
	if v := r.Get(ParamFor); v != "[2001:db8::1]" {
		t.Fatalf("unexpected for %q. Expecting %q", v, "[2001:db8::1]")
	}
	if v := r.Get("Proto"); v != "https" {
		t.Fatalf("unexpected proto %q. Expecting %q", v, "https")
	}
	if v := r.Get(ParamHost); v != "" {
		t.Fatalf("unexpected host %q. Expecting empty", v)
	}
}

func TestElementsGet(t *testing.T) {
	t.Parallel()

	e, err := ParseElements("for=a, FOR=b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := e.Get("For"); v != "a" {
		t.Fatalf("unexpected for %q. Expecting %q", v, "a")
	}
	if vs := e.Values("FOR"); !reflect.DeepEqual(vs, []string{"a", "b"}) {
		t.Fatalf("unexpected values %q. Expecting %q", vs, []string{"a", "b"})
	}
	if v := e.Get(ParamBy); v != "" {
		t.Fatalf("unexpected by %q. Expecting empty", v)
	}
}

func testParseSuccess(t *testing.T, s string, expected []Record) {
	t.Helper()

	records, err := Parse(s)
	if err != nil {
		t.Fatalf("unexpected error when parsing %q: %v", s, err)
	}
	if !reflect.DeepEqual(records, expected) {
		t.Fatalf("unexpected records for %q: %q. Expecting %q", s, records, expected)
	}
}

func testParseElementsSuccess(t *testing.T, s string, expected Elements) {
	t.Helper()

	elements, err := ParseElements(s)
	if err != nil {
		t.Fatalf("unexpected error when parsing %q: %v", s, err)
	}
	if !reflect.DeepEqual(elements, expected) {
		t.Fatalf("unexpected elements for %q: %q. Expecting %q", s, elements, expected)
	}
}

func testParseError(t *testing.T, s, expectedErr string, expectedIndex int) {
	t.Helper()

	for _, parse := range []func(string) (any, error){
		func(s string) (any, error) { return Parse(s) },
		func(s string) (any, error) { return ParseElements(s) },
	} {
		v, err := parse(s)
		if err == nil {
			t.Fatalf("expecting error when parsing %q. Got %q", s, v)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("unexpected error type %T when parsing %q", err, s)
		}
		if err.Error() != expectedErr {
			t.Fatalf("unexpected error when parsing %q: %q. Expecting %q", s, err, expectedErr)
		}
		if pe.Index != expectedIndex {
			t.Fatalf("unexpected error index when parsing %q: %d. Expecting %d", s, pe.Index, expectedIndex)
		}
		if pe.Input != s {
			t.Fatalf("unexpected error input %q. Expecting %q", pe.Input, s)
		}
	}
}
