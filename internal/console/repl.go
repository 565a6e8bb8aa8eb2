package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/peterh/liner"

	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// ContinuationPrompt is shown while an unterminated input is collected
const ContinuationPrompt = "... "

// HistoryFile is kept in the user's home directory
const HistoryFile = ".kontrakt_history"

// Prompt returns "<program>(<network>)> "
func (c *Console) Prompt() string {
	return fmt.Sprintf("%s(%s)> ", c.opts.ProgramName, c.opts.Network)
}

// lineReader is the part of liner.State the loop needs
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// Run reads and evaluates lines until .exit or end of input. Ctrl+C at the
// prompt discards the current input; during an evaluation it interrupts it.
func (c *Console) Run(ctx context.Context) error {
	if c.opts.In != os.Stdin {
		return c.run(ctx, newScriptReader(c.opts.In, c.opts.Out))
	}

	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, HistoryFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath != "" {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
	}()

	return c.run(ctx, ln)
}

func (c *Console) run(ctx context.Context, ln lineReader) error {
	defer ln.Close()

	out := c.opts.Out
	style := newStyler(out)

	var pending strings.Builder
	for {
		prompt := c.Prompt()
		if pending.Len() > 0 {
			prompt = ContinuationPrompt
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			pending.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			c.Close()
			return nil
		}
		if err != nil {
			return err
		}

		if pending.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case ".exit":
				c.Close()
				return nil
			case ".help":
				c.printHelp(out)
				continue
			}
		}

		if pending.Len() > 0 {
			pending.WriteString("\n")
		}
		pending.WriteString(line)
		input := pending.String()

		incomplete := false
		evalCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		c.Eval(evalCtx, input, Filename, func(err error, value goja.Value) {
			var codeErr *CodeError
			if errors.As(err, &codeErr) && codeErr.Incomplete {
				incomplete = true
				return
			}
			c.report(out, style, err, value)
		})
		stop()

		if !incomplete {
			ln.AppendHistory(input)
			pending.Reset()
		}
		if err := ctx.Err(); err != nil {
			c.Close()
			return nil
		}
	}
}

// scriptReader feeds the loop from a non-terminal reader. liner only reads
// from os.Stdin, so piped or embedded input goes through here.
type scriptReader struct {
	in  *bufio.Reader
	out io.Writer
}

func newScriptReader(in io.Reader, out io.Writer) *scriptReader {
	return &scriptReader{in: bufio.NewReader(in), out: out}
}

func (r *scriptReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *scriptReader) AppendHistory(string) {}

func (r *scriptReader) Close() error { return nil }

// report prints an evaluation result. Domain errors are shown as a short
// message, script errors with their stack.
func (c *Console) report(out io.Writer, style styler, err error, value goja.Value) {
	if err == nil {
		if value != nil {
			fmt.Fprintln(out, style.render(ValueStyle, FormatValue(value)))
		}
		return
	}

	var (
		domain  *kerror.Error
		script  *ScriptError
		codeErr *CodeError
	)
	switch {
	case errors.As(err, &domain):
		fmt.Fprintln(out, style.render(ErrorStyle, "Error: "+domain.Error()))
	case errors.As(err, &script):
		fmt.Fprintln(out, style.render(ErrorStyle, script.Stack))
	case errors.As(err, &codeErr):
		fmt.Fprintln(out, style.render(ErrorStyle, codeErr.Error()))
	default:
		fmt.Fprintln(out, style.render(ErrorStyle, "Error: "+err.Error()))
	}
}

func (c *Console) printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands run in a separate process:")
	for _, entry := range c.opts.Registry.Entries() {
		name := entry.Name
		if len(entry.Aliases) > 0 && !c.opts.NoAliases {
			name += " (" + strings.Join(entry.Aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-24s %s\n", name, entry.Description)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Anything else is evaluated as JavaScript; top-level await is supported.")
	fmt.Fprintf(out, "  %-24s %s\n", ".help", "Show this help")
	fmt.Fprintf(out, "  %-24s %s\n", ".exit", "Leave the console")
	fmt.Fprintf(out, "  %-24s %s\n", "Ctrl+C", "Discard the current input or interrupt an evaluation")
}
