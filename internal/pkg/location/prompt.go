package location

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompt is the text of a permission request.
type Prompt struct {
	Title   string
	Message string
}

var PermissionPrompt = Prompt{
	Title:   "Location Permission",
	Message: "Attendance needs access to your location for attendance tracking",
}

// Prompter asks the user for location access.
type Prompter interface {
	Ask(ctx context.Context, p Prompt) (bool, error)
}

// FixedPrompter answers without asking. Used for pre-granted kiosks and tests.
type FixedPrompter bool

func (f FixedPrompter) Ask(context.Context, Prompt) (bool, error) {
	return bool(f), nil
}

// TerminalPrompter asks a y/N question on a terminal. At most one read of in
// is in flight: when ctx ends before the user answers, the read keeps running
// and the next Ask takes its line. Callers sharing in must not read from it
// while a prompt is unanswered.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer

	mu      sync.Mutex
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewTerminalPrompter reuses in when it already is a *bufio.Reader.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

func (t *TerminalPrompter) Ask(ctx context.Context, p Prompt) (bool, error) {
	if _, err := fmt.Fprintf(t.out, "%s\n%s. Allow? [y/N] ", p.Title, p.Message); err != nil {
		return false, err
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-t.read():
		t.mu.Lock()
		t.pending = nil
		t.mu.Unlock()

		if res.err != nil && res.line == "" {
			if res.err == io.EOF {
				return false, nil
			}
			return false, res.err
		}
		switch strings.ToLower(strings.TrimSpace(res.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// read starts a line read unless one is already waiting for input.
func (t *TerminalPrompter) read() <-chan lineResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := t.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		t.pending = ch
	}
	return t.pending
}
