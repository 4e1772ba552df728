package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Prompter reads command lines and passwords. Passwords are read without echo
// when fd refers to a terminal; otherwise they are read as plain lines.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	fd      int
}

// NewPrompter creates a Prompter on in. fd is the file descriptor of in, or -1.
func NewPrompter(in io.Reader, out io.Writer, fd int) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out, fd: fd}
}

// ReadLine prints prompt and returns the next trimmed line. ok is false at end of input.
func (p *Prompter) ReadLine(prompt string) (line string, ok bool) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

// ReadPassword prints prompt and reads a password.
func (p *Prompter) ReadPassword(prompt string) (string, error) {
	if p.fd >= 0 && term.IsTerminal(p.fd) {
		fmt.Fprint(p.out, prompt)
		pw, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimRight(p.scanner.Text(), "\r"), nil
}
