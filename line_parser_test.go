package ambience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		raw  string
		want Line
		ok   bool
	}{
		{"STATE running", Line{Keyword: "STATE", Payload: "running"}, true},
		{"state Running\r", Line{Keyword: "STATE", Payload: "Running"}, true},
		{"  ERROR disk is full  ", Line{Keyword: "ERROR", Payload: "disk is full"}, true},
		{`Status {"a": 1}`, Line{Keyword: "STATUS", Payload: `{"a": 1}`}, true},
		{"PING", Line{Keyword: "PING"}, true},
		{"", Line{}, false},
		{"   ", Line{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseLine(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineWriterSplitsChunks(t *testing.T) {
	var lines []string
	w := &lineWriter{onLine: func(s string) { lines = append(lines, s) }}

	for _, chunk := range []string{"STA", "TE run", "ning\nERR", "OR x\n\nSTATUS {}", "\n"} {
		n, err := w.Write([]byte(chunk))
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}

	assert.Equal(t, []string{"STATE running", "ERROR x", "", "STATUS {}"}, lines)
	assert.Empty(t, w.pending())
}

func TestLineWriterKeepsFragment(t *testing.T) {
	var lines []string
	w := &lineWriter{onLine: func(s string) { lines = append(lines, s) }}

	_, _ = w.Write([]byte("one\ntwo"))
	assert.Equal(t, []string{"one"}, lines)
	assert.Equal(t, "two", w.pending())

	_, _ = w.Write([]byte("\n"))
	assert.Equal(t, []string{"one", "two"}, lines)
	assert.Empty(t, w.pending())
}
