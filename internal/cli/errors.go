package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/taskgrid/internal/verbosity"
)

// FormatError renders err for the terminal. Below verbose level only the
// message is shown; at verbose and above every wrapped layer is listed with
// its Go type.
func FormatError(err error, level verbosity.Level) string {
	if err == nil {
		return ""
	}
	if level < verbosity.Verbose {
		return "Error: " + err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s", err.Error())
	writeChain(&b, err, 1)
	return b.String()
}

func writeChain(b *strings.Builder, err error, depth int) {
	var next []error
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		next = u.Unwrap()
	default:
		if e := errors.Unwrap(err); e != nil {
			next = []error{e}
		}
	}
	for _, e := range next {
		if e == nil {
			continue
		}
		fmt.Fprintf(b, "\n%s-> [%T] %s", strings.Repeat("  ", depth), e, e.Error())
		writeChain(b, e, depth+1)
	}
}
