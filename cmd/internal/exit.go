package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Fatal writes the message to stderr and exits with code 1.
func Fatal(msg string, args ...any) {
	Echo(msg, args...)
	os.Exit(1)
}

// FatalIf calls Fatal with "msg: err" when err is not nil.
func FatalIf(err error, msg string, args ...any) {
	if err == nil {
		return
	}
	Fatal("%s: %v", fmt.Sprintf(msg, args...), err)
}

// Echo writes a user facing message to stderr, so stdout only carries results.
func Echo(msg string, args ...any) {
	echoTo(os.Stderr, msg, args...)
}

func echoTo(w io.Writer, msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = fmt.Fprintf(w, msg, args...)
}
