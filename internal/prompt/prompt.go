// Package prompt asks the user yes/no questions on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reprompt is written after an answer other than y or n.
const Reprompt = `Write "y" or "n". `

// ErrNoAnswer is returned when the input ends before a valid answer.
var ErrNoAnswer = errors.New("no answer: input closed")

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Func adapts a function to Confirmer.
type Func func(question string) (bool, error)

func (f Func) Confirm(question string) (bool, error) {
	return f(question)
}

// Stdio reads answers line by line from one stream and writes questions to
// another (stderr, so stdout stays free for results).
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdio returns a Confirmer reading from in and writing to out.
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{in: bufio.NewReader(in), out: out}
}

// Confirm writes question and reads lines until one is exactly "y" or "n"
// (surrounding whitespace ignored), re-prompting after anything else.
func (s *Stdio) Confirm(question string) (bool, error) {
	fmt.Fprint(s.out, question)
	for {
		line, err := s.in.ReadString('\n')
		switch strings.TrimSpace(line) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, fmt.Errorf("reading answer: %w", err)
		}
		fmt.Fprint(s.out, Reprompt)
	}
}
