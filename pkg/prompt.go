package pkg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when stdin is closed before an answer is given.
var ErrNoInput = errors.New("no input")

// Prompter asks the operator questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask writes question and returns the next line of input. Only the line
// terminator is removed; the answer is otherwise returned as typed.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", fmt.Errorf("%q: %w", strings.TrimSpace(question), ErrNoInput)
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Confirm returns true only for "y" or "Y".
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question)
	if err != nil {
		return false, err
	}
	return strings.ToLower(answer) == "y", nil
}

func (p *Prompter) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}
