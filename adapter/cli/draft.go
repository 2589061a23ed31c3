package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var draftInput string

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Save or show the working draft",
}

var draftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a Markdown document as the draft",
	Long: `Save a Markdown document as the working draft.

Examples:
  markpro draft save -i notes.md
  echo "# Title" | markpro draft save`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.EditorService == nil {
			return fmt.Errorf("editor service not available")
		}
		text, err := readInput(cmd, draftInput)
		if err != nil {
			return err
		}
		if err := a.EditorService.SaveDraft(cmd.Context(), text); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Draft saved (%d bytes)\n", len(text))
		return nil
	},
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.EditorService == nil {
			return fmt.Errorf("editor service not available")
		}
		text, err := a.EditorService.LoadDraft(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	draftSaveCmd.Flags().StringVarP(&draftInput, "input", "i", "", "Markdown file to save (default stdin)")
	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftShowCmd)
	rootCmd.AddCommand(draftCmd)
}
