package relaysdk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// SecretPrompter asks for the shared client secret when no token is cached.
type SecretPrompter interface {
	PromptSecret(ctx context.Context) (string, error)
}

// PrompterFunc adapts a function to SecretPrompter.
type PrompterFunc func(ctx context.Context) (string, error)

func (f PrompterFunc) PromptSecret(ctx context.Context) (string, error) { return f(ctx) }

// StaticSecret always answers with secret, e.g. one taken from a flag or the
// environment.
func StaticSecret(secret string) SecretPrompter {
	return PrompterFunc(func(context.Context) (string, error) { return secret, nil })
}

// TerminalPrompter reads the secret from In. On a terminal the input is not
// echoed; otherwise one line is read, which lets scripts pipe the secret in.
type TerminalPrompter struct {
	In     *os.File
	Out    io.Writer
	Prompt string
}

// NewTerminalPrompter prompts on stderr and reads stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr, Prompt: "Enter client secret: "}
}

func (p *TerminalPrompter) PromptSecret(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fd := p.In.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		_, _ = fmt.Fprint(p.Out, p.Prompt)
		secret, err := term.ReadPassword(int(fd))
		_, _ = fmt.Fprintln(p.Out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
