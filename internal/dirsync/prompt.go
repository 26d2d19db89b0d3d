package dirsync

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Decision is the answer to a confirmation prompt.
type Decision int

const (
	// Reprompt means the answer was not understood and the question
	// should be asked again.
	Reprompt Decision = iota
	Proceed
	Abort
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Abort:
		return "abort"
	default:
		return "reprompt"
	}
}

// Prompter asks a yes/no question. An error ends the conversation and is
// treated as Abort by the synchronizer.
type Prompter interface {
	Confirm(question string) (Decision, error)
}

// ParseAnswer maps a typed answer to a Decision.
func ParseAnswer(answer string) Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return Proceed
	case "n", "no":
		return Abort
	default:
		return Reprompt
	}
}

// LinePrompter reads one answer per line from In and writes the question
// to Out.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Confirm(question string) (Decision, error) {
	fmt.Fprintf(p.out, "%s (Y/N) ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return Abort, fmt.Errorf("reading answer: %w", err)
	}
	return ParseAnswer(line), nil
}

// AlwaysProceed is the Prompter behind an explicit --yes.
type AlwaysProceed struct{}

func (AlwaysProceed) Confirm(string) (Decision, error) { return Proceed, nil }
