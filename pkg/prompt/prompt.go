// Package prompt asks the operator questions on a line-oriented terminal.
//
// A [Prompter] pairs a [LineReader] (where answers come from) with a writer
// (where questions and menus go). Each question carries a [Mode] that decides
// which answers are accepted; anything else prints "Invalid input." and asks
// again, without a retry limit.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputClosed is returned when no more answers can be read, either
// because stdin reached EOF or the operator aborted with Ctrl+C.
var ErrInputClosed = errors.New("input closed")

// InvalidInput is printed before a question is asked again.
const InvalidInput = "Invalid input."

// Mode decides which answers a question accepts.
type Mode int

const (
	// FreeText accepts any answer verbatim.
	FreeText Mode = iota
	// YesDefault accepts y/n; an empty answer means yes.
	YesDefault
	// NoDefault accepts y/n; an empty answer means no.
	NoDefault
)

// Normalized answers for yes/no questions.
const (
	Yes = "y"
	No  = "n"
)

// Accept validates an answer. For yes/no modes the result is [Yes] or [No];
// ok is false when the answer must be asked again.
//
//	input     YesDefault  NoDefault  FreeText
//	""        y           n          ""
//	y, Y      y           y          input
//	n, N      n           n          input
//	other     reject      reject     input
func (m Mode) Accept(input string) (string, bool) {
	switch m {
	case YesDefault, NoDefault:
		switch strings.ToLower(input) {
		case "":
			if m == YesDefault {
				return Yes, true
			}
			return No, true
		case Yes:
			return Yes, true
		case No:
			return No, true
		}
		return "", false
	default:
		return input, true
	}
}

// Hint returns the bracketed default shown after a yes/no question.
func (m Mode) Hint() string {
	switch m {
	case YesDefault:
		return "[Yn]"
	case NoDefault:
		return "[yN]"
	default:
		return ""
	}
}

// LineReader reads one answer after showing prompt.
// Implementations strip the line terminator.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Prompter asks questions and validates answers.
type Prompter struct {
	in  LineReader
	out io.Writer
}

// New creates a Prompter reading answers from in and writing menus and
// validation messages to out.
func New(in LineReader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Writer returns the writer menus are printed to.
func (p *Prompter) Writer() io.Writer { return p.out }

// Printf writes formatted text to the prompter's output.
func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Println writes a line to the prompter's output.
func (p *Prompter) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// ReadLine reads one raw answer without validation. A multi-line prompt is
// split as in [Prompter.Ask].
func (p *Prompter) ReadLine(prompt string) (string, error) {
	if i := strings.LastIndexByte(prompt, '\n'); i >= 0 {
		p.Println(prompt[:i])
		prompt = prompt[i+1:]
	}
	return p.in.ReadLine(prompt)
}

// Ask shows question until an answer acceptable under mode is given.
// Every line of a multi-line question but the last is printed once before
// reading, since line editors only accept a single-line prompt.
func (p *Prompter) Ask(question string, mode Mode) (string, error) {
	if i := strings.LastIndexByte(question, '\n'); i >= 0 {
		p.Println(question[:i])
		question = question[i+1:]
	}
	prompt := question
	if hint := mode.Hint(); hint != "" && !strings.HasSuffix(question, hint) {
		prompt += " " + hint
	}
	prompt += ": "

	for {
		input, err := p.in.ReadLine(prompt)
		if err != nil {
			return "", err
		}
		if answer, ok := mode.Accept(input); ok {
			return answer, nil
		}
		p.Println(InvalidInput)
	}
}

// Confirm asks a yes/no question. mode must be [YesDefault] or [NoDefault].
func (p *Prompter) Confirm(question string, mode Mode) (bool, error) {
	if mode == FreeText {
		mode = YesDefault
	}
	answer, err := p.Ask(question, mode)
	if err != nil {
		return false, err
	}
	return answer == Yes, nil
}
