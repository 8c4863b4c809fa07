package prompt

import (
	"bufio"
	"fmt"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"io"
	"os"
	"strings"
)

// Prompter asks questions on one stream and reads line answers from another.
type Prompter struct {
	// Interactive reports whether answers come from a person at a terminal.
	// Otherwise questions are not printed and answers are read from the piped input as is.
	Interactive func() bool

	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		Interactive: func() bool { return IsTerminal(in) },
		in:          bufio.NewReader(in),
		out:         out,
	}
}

// IsTerminal reports whether r is a file attached to a terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Prompt prints label and returns the next line, trimmed. EOF yields an empty answer.
func (p *Prompter) Prompt(label string) (string, error) {
	interactive := p.interactive()
	if interactive {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.readLine()
	if err == io.EOF && line == "" && interactive {
		fmt.Fprintln(p.out)
	} else if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only y or yes, in any case, confirm.
func (p *Prompter) Confirm(label string) (bool, error) {
	if p.interactive() {
		fmt.Fprintf(p.out, "%s ", label)
	}

	line, err := p.readLine()
	if err != nil && err != io.EOF {
		return false, err
	}
	return IsYes(line), nil
}

func (p *Prompter) interactive() bool {
	return p.Interactive == nil || p.Interactive()
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return line, errors.Wrap(err, "read answer")
	}
	return line, err
}

func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
