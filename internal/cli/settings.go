package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// settingsCmd represents the settings command.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show embedding models and chunking methods",
	Long: `Fetch the embedding models and chunking methods the backend offers
for ingestion, with descriptions and dimensions.`,
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client := newClient()
	models, err := client.Models(ctx)
	if err != nil {
		return err
	}
	methods, err := client.ChunkingMethods(ctx)
	if err != nil {
		return err
	}

	var md strings.Builder
	md.WriteString("# Backend Settings\n\n## Embedding Models\n\n")
	md.WriteString("| Model | Dimensions | Description |\n|---|---|---|\n")
	for _, key := range sortedKeys(models) {
		m := models[key]
		fmt.Fprintf(&md, "| %s | %d | %s |\n", m.Name, m.Dimensions, m.Description)
	}
	md.WriteString("\n## Chunking Methods\n\n")
	for _, key := range sortedKeys(methods) {
		m := methods[key]
		fmt.Fprintf(&md, "- **%s** (`%s`): %s\n", m.Name, key, m.Description)
	}

	rendered, err := renderMarkdown(md.String())
	if err != nil {
		// Fall back to the raw listing if the renderer chokes.
		fmt.Println(md.String())
		return nil
	}
	fmt.Print(rendered)
	return nil
}

// renderMarkdown renders markdown content using glamour.
func renderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
