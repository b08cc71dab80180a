// Package printer provides colored status output for the nbweave CLI.
package printer

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// Success prints a success line in green with a checkmark prefix.
func Success(format string, a ...any) {
	green.Fprintf(os.Stdout, "✓ "+format+"\n", a...)
}

// Info prints an informational line in the default color.
func Info(format string, a ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", a...)
}

// Warning prints a warning line in yellow.
func Warning(format string, a ...any) {
	yellow.Fprintf(os.Stderr, "! "+format+"\n", a...)
}

// Error prints an error line in red to stderr.
func Error(format string, a ...any) {
	red.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}
