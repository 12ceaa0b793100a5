// Package fasthttpforwarded parses the Forwarded header of requests served
// by fasthttp.
package fasthttpforwarded

import (
	"errors"
	"expvar"

	"github.com/lpinca/forwarded"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

// HeaderForwarded is the name of the header defined by RFC 7239.
const HeaderForwarded = "Forwarded"

// DefaultMaxHeaderSize is the maximum combined size of the Forwarded
// header lines accepted by Handler if not set explicitly.
const DefaultMaxHeaderSize = 8 * 1024

// UserValueKey is the RequestCtx user value key Handler stores the parsed
// records under.
const UserValueKey = "forwarded"

var (
	headersParsed    = expvar.NewInt("forwardedHeadersParsed")
	headersMalformed = expvar.NewInt("forwardedHeadersMalformed")
	headersTooLarge  = expvar.NewInt("forwardedHeadersTooLarge")
)

// ErrHeaderTooLarge is returned when the combined Forwarded header lines
// exceed the configured limit.
var ErrHeaderTooLarge = errors.New("forwarded header too large")

// ParseRequestHeader parses all the Forwarded header lines of h.
//
// Multiple lines are combined with a comma as RFC 7230 section 3.2.2
// allows. nil records and nil error are returned if h contains no
// Forwarded header.
func ParseRequestHeader(h *fasthttp.RequestHeader) ([]forwarded.Record, error) {
	return parseRequestHeader(h, 0)
}

func parseRequestHeader(h *fasthttp.RequestHeader, maxSize int) ([]forwarded.Record, error) {
	lines := h.PeekAll(HeaderForwarded)
	switch len(lines) {
	case 0:
		return nil, nil
	case 1:
		if maxSize > 0 && len(lines[0]) > maxSize {
			return nil, ErrHeaderTooLarge
		}
		return forwarded.ParseBytes(lines[0])
	}

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	for i, line := range lines {
		if i > 0 {
			bb.B = append(bb.B, ',')
		}
		bb.B = append(bb.B, line...)
	}
	if maxSize > 0 && len(bb.B) > maxSize {
		return nil, ErrHeaderTooLarge
	}
	return forwarded.ParseBytes(bb.B)
}

// Handler parses the Forwarded header of every request before passing it
// to Next.
//
// It is safe to call Handler methods from concurrently running goroutines.
type Handler struct {
	// Next is called after the header has been parsed.
	Next fasthttp.RequestHandler

	// RejectMalformed makes Handler respond with 400 Bad Request instead
	// of calling Next when the header cannot be parsed or is too large.
	//
	// By default malformed headers are logged and treated as absent.
	RejectMalformed bool

	// MaxHeaderSize limits the combined size of the Forwarded header lines.
	//
	// DefaultMaxHeaderSize is used if not set.
	MaxHeaderSize int

	// Logger is used for logging malformed headers.
	//
	// ctx.Logger() is used if not set.
	Logger fasthttp.Logger
}

// Handle is a fasthttp.RequestHandler.
//
// The parsed records are available to Next via Records.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	maxSize := h.MaxHeaderSize
	if maxSize <= 0 {
		maxSize = DefaultMaxHeaderSize
	}

	records, err := parseRequestHeader(&ctx.Request.Header, maxSize)
	if err != nil {
		if err == ErrHeaderTooLarge {
			headersTooLarge.Add(1)
		} else {
			headersMalformed.Add(1)
		}
		h.logger(ctx).Printf("cannot parse %s header: %v", HeaderForwarded, err)
		if h.RejectMalformed {
			ctx.Error(fasthttp.StatusMessage(fasthttp.StatusBadRequest), fasthttp.StatusBadRequest)
			return
		}
		records = nil
	} else if records != nil {
		headersParsed.Add(1)
	}

	if records != nil {
		ctx.SetUserValue(UserValueKey, records)
	}
	if h.Next != nil {
		h.Next(ctx)
	}
}

func (h *Handler) logger(ctx *fasthttp.RequestCtx) fasthttp.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return ctx.Logger()
}

// Records returns the records stored by Handler for the given request.
func Records(ctx *fasthttp.RequestCtx) []forwarded.Record {
	records, _ := ctx.UserValue(UserValueKey).([]forwarded.Record)
	return records
}
