// Package forwardedhttp parses and extends the Forwarded header of
// net/http requests.
package forwardedhttp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/lpinca/forwarded"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/net/http/httpguts"
)

// HeaderForwarded is the canonical name of the header defined by RFC 7239.
const HeaderForwarded = "Forwarded"

// DefaultMaxHeaderSize is the maximum combined size of the Forwarded
// header lines accepted by Middleware if not set explicitly.
const DefaultMaxHeaderSize = 8 * 1024

// ErrHeaderTooLarge is returned when the combined Forwarded header lines
// exceed the configured limit.
var ErrHeaderTooLarge = errors.New("forwarded header too large")

// Logger is used for logging formatted messages.
type Logger interface {
	// Printf must have the same semantics as log.Printf.
	Printf(format string, args ...any)
}

var defaultLogger = Logger(log.New(os.Stderr, "", log.LstdFlags))

// ParseHeader parses all the Forwarded lines of h into records.
//
// nil records and nil error are returned if h contains no Forwarded header.
func ParseHeader(h http.Header) ([]forwarded.Record, error) {
	return parseHeader(h, 0)
}

func parseHeader(h http.Header, maxSize int) ([]forwarded.Record, error) {
	bb, ok, err := joinLines(h, maxSize)
	if bb != nil {
		defer bytebufferpool.Put(bb)
	}
	if !ok || err != nil {
		return nil, err
	}
	return forwarded.ParseBytes(bb.B)
}

// ParseHeaderElements parses all the Forwarded lines of h into a single
// mapping accumulating the values of every parameter.
//
// nil elements and nil error are returned if h contains no Forwarded header.
func ParseHeaderElements(h http.Header) (forwarded.Elements, error) {
	bb, ok, err := joinLines(h, 0)
	if bb != nil {
		defer bytebufferpool.Put(bb)
	}
	if !ok || err != nil {
		return nil, err
	}
	return forwarded.ParseElementsBytes(bb.B)
}

// joinLines combines the Forwarded lines of h with commas as RFC 7230
// section 3.2.2 allows.
//
// The returned buffer must be returned to bytebufferpool by the caller.
func joinLines(h http.Header, maxSize int) (*bytebufferpool.ByteBuffer, bool, error) {
	lines := h.Values(HeaderForwarded)
	if len(lines) == 0 {
		return nil, false, nil
	}

	n := len(lines) - 1
	for _, line := range lines {
		n += len(line)
	}
	if maxSize > 0 && n > maxSize {
		return nil, false, ErrHeaderTooLarge
	}

	bb := bytebufferpool.Get()
	for i, line := range lines {
		if i > 0 {
			bb.B = append(bb.B, ',')
		}
		bb.B = append(bb.B, line...)
	}
	return bb, true, nil
}

// Append adds r as the last forwarded-element of the Forwarded header in h.
//
// Proxies use Append to record their own hop. Parameter names are
// lower-cased. An error is returned if r contains names that are not
// tokens, names differing only in case, or values that cannot be sent
// in a header field.
func Append(h http.Header, r forwarded.Record) error {
	if len(r) == 0 {
		return errors.New("cannot append empty forwarded-element")
	}
	r, err := normalizeRecord(r)
	if err != nil {
		return err
	}

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	lines := h.Values(HeaderForwarded)
	if len(lines) > 0 {
		bb.B = append(bb.B, lines[len(lines)-1]...)
		bb.B = append(bb.B, ", "...)
	}
	elem := len(bb.B)
	bb.B = r.AppendBytes(bb.B)

	if !httpguts.ValidHeaderFieldValue(string(bb.B[elem:])) {
		return fmt.Errorf("invalid forwarded-element %q", bb.B[elem:])
	}

	if len(lines) == 0 {
		h.Set(HeaderForwarded, bb.String())
		return nil
	}
	lines[len(lines)-1] = bb.String()
	return nil
}

func normalizeRecord(r forwarded.Record) (forwarded.Record, error) {
	nr := make(forwarded.Record, len(r))
	for name, value := range r {
		if !forwarded.ValidName(name) {
			return nil, fmt.Errorf("invalid parameter name %q", name)
		}
		lname := strings.ToLower(name)
		if _, ok := nr[lname]; ok {
			return nil, fmt.Errorf("duplicate parameter name %q", lname)
		}
		nr[lname] = value
	}
	return nr, nil
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying records.
func NewContext(ctx context.Context, records []forwarded.Record) context.Context {
	return context.WithValue(ctx, contextKey{}, records)
}

// FromContext returns the records stored by Middleware in ctx.
func FromContext(ctx context.Context) []forwarded.Record {
	records, _ := ctx.Value(contextKey{}).([]forwarded.Record)
	return records
}

// Middleware parses the Forwarded header of incoming requests and makes
// the records available to the wrapped handler via FromContext.
//
// It is safe to use a Middleware from concurrently running goroutines.
type Middleware struct {
	// RejectMalformed makes the middleware respond with 400 Bad Request
	// when the header cannot be parsed or is too large.
	//
	// By default malformed headers are logged and treated as absent.
	RejectMalformed bool

	// MaxHeaderSize limits the combined size of the Forwarded header lines.
	//
	// DefaultMaxHeaderSize is used if not set.
	MaxHeaderSize int

	// Logger is used for logging malformed headers.
	//
	// The standard logger from the log package is used if not set.
	Logger Logger
}

// Wrap returns an http.Handler parsing the Forwarded header before calling
// next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		maxSize := m.MaxHeaderSize
		if maxSize <= 0 {
			maxSize = DefaultMaxHeaderSize
		}

		records, err := parseHeader(r.Header, maxSize)
		if err != nil {
			m.logger().Printf("cannot parse %s header from %s: %v", HeaderForwarded, r.RemoteAddr, err)
			if m.RejectMalformed {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			records = nil
		}

		if records != nil {
			r = r.WithContext(NewContext(r.Context(), records))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) logger() Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return defaultLogger
}
