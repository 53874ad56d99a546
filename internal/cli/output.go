package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

func success(w io.Writer, format string, args ...any) {
	okColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func warn(w io.Writer, format string, args ...any) {
	warnColor.Fprint(w, "! ")
	fmt.Fprintf(w, format+"\n", args...)
}

func failure(w io.Writer, format string, args ...any) {
	errColor.Fprint(w, "✗ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
