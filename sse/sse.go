// Package sse implements an incremental parser for the Server-Sent Events
// wire format.
//
// The parser is fed arbitrarily chunked text and emits one [Message] per
// complete event frame (a blank-line boundary). Output is fully determined
// by the concatenation of the fed chunks: splitting or merging chunks at
// any byte offset never changes the sequence of emitted messages.
package sse

import "strings"

// Message is a single server-sent event: an optional event name and the
// newline-joined contents of its data lines.
type Message struct {
	Event string
	Data  string
}

// Parser decodes an SSE text stream fed in arbitrary chunks.
//
// A Parser holds the undecoded trailing bytes of the last chunk, the
// pending event name, and the pending data lines. It carries no state
// across streams: construct a fresh Parser per stream.
type Parser struct {
	onMessage func(Message)
	buf       string
	event     string
	data      []string
}

// NewParser returns a Parser that calls onMessage for each complete event.
func NewParser(onMessage func(Message)) *Parser {
	return &Parser{onMessage: onMessage}
}

// Feed appends chunk to the internal buffer and processes every complete
// line in it. An incomplete trailing line stays buffered for the next call.
func (p *Parser) Feed(chunk string) {
	p.buf += chunk
	for {
		i := strings.IndexByte(p.buf, '\n')
		if i < 0 {
			return
		}
		line := strings.TrimSuffix(p.buf[:i], "\r")
		p.buf = p.buf[i+1:]
		p.line(line)
	}
}

// End flushes the parser once the stream is closed. Any buffered
// unterminated line is processed as if it had been newline-terminated,
// then a final dispatch is forced so that a trailing event without a
// blank-line boundary is still delivered. Calling End again is a no-op.
func (p *Parser) End() {
	if p.buf != "" {
		line := strings.TrimSuffix(p.buf, "\r")
		p.buf = ""
		p.line(line)
	}
	p.dispatch()
}

func (p *Parser) line(line string) {
	switch {
	case line == "":
		p.dispatch()
	case strings.HasPrefix(line, ":"):
		// comment / keepalive
	default:
		field, value, found := strings.Cut(line, ":")
		if found {
			// At most one leading space of the value is stripped.
			value = strings.TrimPrefix(value, " ")
		}
		switch field {
		case "event":
			p.event = value
		case "data":
			p.data = append(p.data, value)
		}
	}
}

// dispatch emits the pending event, if any. A boundary with nothing
// accumulated (a bare keepalive blank line) emits nothing.
func (p *Parser) dispatch() {
	if p.event == "" && len(p.data) == 0 {
		return
	}
	p.onMessage(Message{Event: p.event, Data: strings.Join(p.data, "\n")})
	p.event = ""
	p.data = nil
}
