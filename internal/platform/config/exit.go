package config

import (
	"fmt"
	"io"
	"os"
)

// Exit codes used by beanmachine commands.
const (
	ExitFailure = 1
	// ExitExpectations reports a run that finished but failed its checks.
	ExitExpectations = 2
)

var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	ExitCodef(ExitFailure, format, args...)
}

// ExitCodef writes a formatted error message to stderr and exits with code.
func ExitCodef(code int, format string, args ...any) {
	fmt.Fprintf(stderr, format+"\n", args...)
	exit(code)
}
