// Package ui provides the color conventions for CLI output:
// green for success, red for errors, cyan for neutral info, bold for
// headers, dim for secondary detail.
package ui

import "github.com/fatih/color"

// Pre-configured color instances. They respect the global color.NoColor
// setting (and the NO_COLOR environment variable) when called.
var (
	Red   = color.New(color.FgRed)
	Green = color.New(color.FgGreen)
	Cyan  = color.New(color.FgCyan)
	Bold  = color.New(color.Bold)
	Dim   = color.New(color.Faint)
)

// InitColors configures global color output based on the noColor flag.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// Successf prints a formatted green success message with a checkmark prefix.
func Successf(format string, args ...any) {
	_, _ = Green.Printf("✓ "+format+"\n", args...)
}

// Errorf prints a formatted red error message with an X prefix.
func Errorf(format string, args ...any) {
	_, _ = Red.Printf("✗ "+format+"\n", args...)
}

// Infof prints a formatted cyan informational message.
func Infof(format string, args ...any) {
	_, _ = Cyan.Printf(format+"\n", args...)
}
