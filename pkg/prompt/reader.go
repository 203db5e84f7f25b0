package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ScannerReader reads answers line by line from any reader. It is used for
// piped input and in tests.
type ScannerReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewScannerReader creates a ScannerReader that echoes prompts to out.
func NewScannerReader(in io.Reader, out io.Writer) *ScannerReader {
	return &ScannerReader{in: bufio.NewReader(in), out: out}
}

// ReadLine writes prompt and reads up to the next newline.
// A final line without a newline is still returned; EOF with nothing read
// reports [ErrInputClosed].
func (r *ScannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrInputClosed
			}
		} else {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// LinerReader reads answers from an interactive terminal with line editing.
type LinerReader struct {
	state *liner.State
}

// NewLinerReader takes over the terminal. Call Close to restore it.
func NewLinerReader() *LinerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinerReader{state: state}
}

// ReadLine shows prompt and reads one edited line.
func (r *LinerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return line, nil
}

// Close restores the terminal.
func (r *LinerReader) Close() error {
	return r.state.Close()
}

// NewStdio returns a LineReader for the process's standard input: a
// [LinerReader] when stdin and stdout are terminals, otherwise a
// [ScannerReader]. The returned close function restores the terminal.
func NewStdio() (LineReader, func() error) {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		r := NewLinerReader()
		return r, r.Close
	}
	return NewScannerReader(os.Stdin, os.Stdout), func() error { return nil }
}
