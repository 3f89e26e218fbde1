package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio implements IO over a reader and a writer
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // -1 если ввод не терминал
}

// NewStdio returns IO bound to the process stdin/stdout
func NewStdio() *Stdio {
	s := New(os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		s.fd = fd
	}
	return s
}

// New returns IO over arbitrary streams. Secrets are read as plain lines.
func New(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{in: bufio.NewReader(in), out: out, fd: -1}
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) Println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func (s *Stdio) ReadSecret(prompt string) (string, error) {
	if s.fd < 0 {
		return s.ReadInput(prompt)
	}
	s.Printf("%s", prompt)
	secret, err := term.ReadPassword(s.fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
