package beatsheet

import (
	"encoding/json"
	"fmt"
)

// StreamDecoder consumes streamed JSON text and yields each beat object as soon as it is closed. It accepts
// either {"beats":[{...},...]} or a bare array of beats; text outside the document is ignored.
type StreamDecoder struct {
	buf      []byte
	scanned  int
	stack    []byte
	inString bool
	escaped  bool
	start    int
}

func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{start: -1}
}

// Write appends chunk and returns the beats completed by it.
func (d *StreamDecoder) Write(chunk string) ([]GeneratedBeat, error) {
	d.buf = append(d.buf, chunk...)
	var out []GeneratedBeat
	for ; d.scanned < len(d.buf); d.scanned++ {
		c := d.buf[d.scanned]
		if d.inString {
			switch {
			case d.escaped:
				d.escaped = false
			case c == '\\':
				d.escaped = true
			case c == '"':
				d.inString = false
			}
			continue
		}
		switch c {
		case '"':
			if len(d.stack) > 0 {
				d.inString = true
			}
		case '{', '[':
			if c == '{' && d.atBeatLevel() {
				d.start = d.scanned
			}
			d.stack = append(d.stack, c)
		case '}', ']':
			if len(d.stack) == 0 {
				continue
			}
			d.stack = d.stack[:len(d.stack)-1]
			if c == '}' && d.start >= 0 && d.atBeatLevel() {
				var b GeneratedBeat
				if err := json.Unmarshal(d.buf[d.start:d.scanned+1], &b); err != nil {
					return out, fmt.Errorf("decode streamed beat: %w", err)
				}
				out = append(out, b)
				d.start = -1
			}
		}
	}
	return out, nil
}

// atBeatLevel reports whether an object opened now is an element of the beats array.
func (d *StreamDecoder) atBeatLevel() bool {
	switch len(d.stack) {
	case 1:
		return d.stack[0] == '['
	case 2:
		return d.stack[0] == '{' && d.stack[1] == '['
	}
	return false
}

// Text returns everything received so far.
func (d *StreamDecoder) Text() string { return string(d.buf) }
