package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/BevinV/Interactive-Rag/internal/mutation"
)

// terminalConfirmer prompts on stdin with a y/N question. The --yes flag
// turns every prompt into an approval for scripted use.
type terminalConfirmer struct{}

func (terminalConfirmer) Confirm(prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}

// confirmer returns the Confirmer used by CLI commands.
func confirmer() mutation.Confirmer {
	return terminalConfirmer{}
}
