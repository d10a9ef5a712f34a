package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEchoTo(t *testing.T) {
	tests := map[string]struct {
		msg      string
		args     []any
		expected string
	}{
		"Adds newline":     {msg: "hello", expected: "hello\n"},
		"Keeps newline":    {msg: "hello\n", expected: "hello\n"},
		"Formats":          {msg: "%d passwords", args: []any{3}, expected: "3 passwords\n"},
		"Empty is a blank": {msg: "", expected: "\n"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			echoTo(&buf, tc.msg, tc.args...)
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}
