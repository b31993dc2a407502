package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Makepad-fr/itemdash/internal/flow"
)

// readLine reads one line from the command's input, without the newline.
// EOF with no text counts as an empty answer.
func (a *app) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) ask(label string) (string, error) {
	fmt.Fprintf(a.streams.Out, "%s: ", label)
	s, err := a.readLine()
	return strings.TrimSpace(s), err
}

// askSecret reads without echo when input is a terminal.
func (a *app) askSecret(label string) (string, error) {
	fmt.Fprintf(a.streams.Out, "%s: ", label)
	if f, ok := a.streams.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.streams.Out)
		return string(b), err
	}
	return a.readLine()
}

// stringFlagOrAsk returns the flag value, prompting when it was not given.
func (a *app) stringFlagOrAsk(cmd *cobra.Command, name, label string, secret bool) (string, error) {
	if v, _ := cmd.Flags().GetString(name); cmd.Flags().Changed(name) {
		return v, nil
	}
	if secret {
		return a.askSecret(label)
	}
	return a.ask(label)
}

// confirmer asks on the command's input. Only "y" and "yes" confirm.
func (a *app) confirmer() flow.Confirmer {
	return flow.ConfirmFunc(func(prompt string) bool {
		ans, err := a.ask(prompt + " [y/N]")
		if err != nil {
			return false
		}
		switch strings.ToLower(ans) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("usage: %s", usage)
		}
		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("%s takes no arguments, got %q", cmd.CommandPath(), args[0])
	}
	return nil
}
