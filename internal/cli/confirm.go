package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"shobdo-cli/internal/action"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// confirmer asks on stderr and reads the answer from stdin. yes skips the question.
func confirmer(cmd *cobra.Command, yes bool) func(action.Prompt) bool {
	return func(p action.Prompt) bool {
		if yes {
			return true
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s [y/N] ", p.Title, p.Message)
		line, err := readLine(cmd.InOrStdin())
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo from a terminal, or one line from piped stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	return readLine(cmd.InOrStdin())
}

// cancelled is the output of a declined confirmation.
func cancelled() map[string]any {
	return map[string]any{"data": map[string]any{"ok": false, "cancelled": true}}
}

func actionOut(res action.Result) map[string]any {
	return map[string]any{"data": map[string]any{"ok": true, "message": res.Message}}
}
