package cli

import (
	"fmt"

	exportDomain "github.com/felixgeelhaar/markpro/internal/export/domain"
	"github.com/spf13/cobra"
)

var (
	previewInput string
	previewWidth int
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a Markdown preview in the terminal",
	Long: `Render a Markdown document in the terminal using the saved theme.

Without --input the saved draft is previewed.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "input", "i", "", "Markdown file to preview (- for stdin)")
	previewCmd.Flags().IntVarP(&previewWidth, "width", "w", 80, "word wrap width")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a == nil || a.ExportService == nil {
		return fmt.Errorf("export service not available")
	}
	ctx := cmd.Context()

	opts := exportDomain.PreviewOptions{Width: previewWidth}
	var markdown string
	if a.EditorService != nil {
		theme, err := a.EditorService.Theme(ctx)
		if err != nil {
			return err
		}
		opts.Dark = theme.IsDark()
	}

	switch {
	case previewInput != "":
		text, err := readInput(cmd, previewInput)
		if err != nil {
			return err
		}
		markdown = text
	case a.EditorService != nil:
		draft, err := a.EditorService.LoadDraft(ctx)
		if err != nil {
			return err
		}
		markdown = draft
	default:
		return fmt.Errorf("no input: pass --input or configure the editor service")
	}

	rendered, err := a.ExportService.Preview(ctx, markdown, opts)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
