// Package dialog implements blocking prompts on a line-oriented terminal.
//
// Every call resolves exactly once: with the user's answer, or with the
// context's error when the caller gives up first. Input is shared with the
// chat prompt through ReadLine, so only one dialog can be open at a time.
package dialog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

func (k Kind) icon() string {
	switch k {
	case KindSuccess:
		return "✔"
	case KindWarning:
		return "!"
	case KindError:
		return "✖"
	default:
		return "i"
	}
}

func (k Kind) color() lipgloss.Color {
	switch k {
	case KindSuccess:
		return lipgloss.Color("#43b581")
	case KindWarning:
		return lipgloss.Color("#faa61a")
	case KindError:
		return lipgloss.Color("#f04747")
	default:
		return lipgloss.Color("#7289da")
	}
}

var ErrRequired = errors.New("a value is required")

// Field is one input of a Custom dialog.
type Field struct {
	Name     string
	Label    string
	Default  string
	Secret   bool
	Required bool
	Validate func(string) error
}

type ConfirmOptions struct {
	Default bool
}

type line struct {
	text string
	err  error
}

// Terminal reads answers from in and writes dialogs to out.
type Terminal struct {
	in  io.Reader
	out io.Writer
	fd  int

	outMu   sync.Mutex
	once    sync.Once
	pumping atomic.Bool
	lines   chan line
	r       *lipgloss.Renderer
}

func New(in io.Reader, out io.Writer) *Terminal {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Terminal{
		in:    in,
		out:   out,
		fd:    fd,
		lines: make(chan line),
		r:     lipgloss.NewRenderer(out),
	}
}

func (t *Terminal) pump() {
	t.pumping.Store(true)
	go func() {
		reader := bufio.NewReader(t.in)
		for {
			s, err := reader.ReadString('\n')
			if s != "" || err == nil {
				t.lines <- line{text: strings.TrimRight(s, "\r\n")}
			}
			if err != nil {
				t.lines <- line{err: err}
				close(t.lines)
				return
			}
		}
	}()
}

// ReadLine returns the next input line without its newline. It returns
// io.EOF once input is exhausted.
func (t *Terminal) ReadLine(ctx context.Context) (string, error) {
	t.once.Do(t.pump)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// readSecret uses masked terminal input while the shared line reader has not
// taken over stdin, and falls back to a plain line otherwise.
func (t *Terminal) readSecret(ctx context.Context) (string, error) {
	if t.fd < 0 || t.pumping.Load() {
		return t.ReadLine(ctx)
	}
	done := make(chan line, 1)
	go func() {
		b, err := term.ReadPassword(t.fd)
		done <- line{text: string(b), err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-done:
		t.printf("\n")
		return l.text, l.err
	}
}

func (t *Terminal) printf(format string, args ...any) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) title(kind Kind, title string) string {
	return t.r.NewStyle().Foreground(kind.color()).Bold(true).Render(kind.icon() + " " + title)
}

// Alert shows a message. There is nothing to answer, so it returns as soon
// as the message is written.
func (t *Terminal) Alert(_ context.Context, kind Kind, title, message string) {
	if message == "" {
		t.printf("%s\n", t.title(kind, title))
		return
	}
	t.printf("%s: %s\n", t.title(kind, title), message)
}

func (t *Terminal) Error(ctx context.Context, title, message string) {
	t.Alert(ctx, KindError, title, message)
}

func (t *Terminal) Warning(ctx context.Context, title, message string) {
	t.Alert(ctx, KindWarning, title, message)
}

func (t *Terminal) Success(ctx context.Context, title, message string) {
	t.Alert(ctx, KindSuccess, title, message)
}

func (t *Terminal) Info(ctx context.Context, title, message string) {
	t.Alert(ctx, KindInfo, title, message)
}

// Confirm asks a yes/no question defaulting to no. Any failure to get an
// answer counts as no.
func (t *Terminal) Confirm(ctx context.Context, title, message string) bool {
	ok, err := t.ConfirmWith(ctx, title, message, ConfirmOptions{})
	return err == nil && ok
}

func (t *Terminal) ConfirmWith(ctx context.Context, title, message string, opts ConfirmOptions) (bool, error) {
	hint := "[y/N]"
	if opts.Default {
		hint = "[Y/n]"
	}
	t.printf("%s\n", t.title(KindWarning, title))
	for {
		t.printf("%s %s: ", message, hint)
		answer, err := t.ReadLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "":
			return opts.Default, nil
		default:
			t.printf("Please enter 'y' or 'n'.\n")
		}
	}
}

// Prompt asks for one line of text. An empty answer selects def.
func (t *Terminal) Prompt(ctx context.Context, title, message, def string) (string, error) {
	if title != "" {
		t.printf("%s\n", t.title(KindInfo, title))
	}
	return t.ask(ctx, Field{Label: message, Default: def})
}

// Custom collects several fields in order and returns them by name.
func (t *Terminal) Custom(ctx context.Context, title string, fields []Field) (map[string]string, error) {
	if title != "" {
		t.printf("%s\n", t.title(KindInfo, title))
	}
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		v, err := t.ask(ctx, f)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}
	return values, nil
}

func (t *Terminal) ask(ctx context.Context, f Field) (string, error) {
	for {
		if f.Default != "" && !f.Secret {
			t.printf("%s [%s]: ", f.Label, f.Default)
		} else {
			t.printf("%s: ", f.Label)
		}

		var (
			v   string
			err error
		)
		if f.Secret {
			v, err = t.readSecret(ctx)
		} else {
			v, err = t.ReadLine(ctx)
		}
		if err != nil {
			return "", err
		}

		v = strings.TrimSpace(v)
		if v == "" {
			v = f.Default
		}
		if v == "" && f.Required {
			t.printf("%s\n", t.r.NewStyle().Foreground(KindWarning.color()).Render(f.Label+": "+ErrRequired.Error()))
			continue
		}
		if f.Validate != nil {
			if err := f.Validate(v); err != nil {
				t.printf("%s\n", t.r.NewStyle().Foreground(KindWarning.color()).Render(err.Error()))
				continue
			}
		}
		return v, nil
	}
}
