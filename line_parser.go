package ambience

import (
	"bytes"
	"strings"
)

// Line is one event line received from a controller
type Line struct {
	// Keyword is the upper-cased event name
	Keyword string
	// Payload is everything after the first space, trimmed
	Payload string
}

// ParseLine splits a raw controller line into keyword and payload.
// Blank lines are rejected.
func ParseLine(raw string) (Line, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Line{}, false
	}
	keyword, payload, _ := strings.Cut(raw, " ")
	return Line{
		Keyword: strings.ToUpper(keyword),
		Payload: strings.TrimSpace(payload),
	}, true
}

// lineWriter turns a byte stream into complete lines. The trailing
// fragment of every write is kept until a later write terminates it.
type lineWriter struct {
	buf    []byte
	onLine func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.buf[:i])
		w.buf = w.buf[i+1:]
		w.onLine(line)
	}
	if len(w.buf) == 0 {
		w.buf = nil
	}
	return len(p), nil
}

// pending returns the unterminated fragment held back so far
func (w *lineWriter) pending() string {
	return string(w.buf)
}
