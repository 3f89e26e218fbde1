package iocli

import "io"

// IO is the terminal abstraction used by CLI commands
type IO interface {
	io.Writer
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	// ReadSecret reads a line without echo when input is a terminal
	ReadSecret(prompt string) (string, error)
}
