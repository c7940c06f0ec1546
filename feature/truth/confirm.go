package truth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Confirmer is the capability to ask the user whether to continue. It is
// injected so non-interactive deployments and tests can replace the terminal.
type Confirmer interface {
	// CanPrompt reports whether asking is possible at all.
	CanPrompt() bool
	// Confirm asks the question and reports the user's answer.
	Confirm(message string) (bool, error)
}

// TerminalConfirmer prompts on stdin when it is attached to a terminal.
type TerminalConfirmer struct{}

func (TerminalConfirmer) CanPrompt() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (TerminalConfirmer) Confirm(message string) (bool, error) {
	fmt.Printf("%s [y/N]: ", message)

	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
