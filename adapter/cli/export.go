package cli

import (
	"errors"
	"fmt"
	"os"

	exportDomain "github.com/felixgeelhaar/markpro/internal/export/domain"
	licensingDomain "github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/spf13/cobra"
)

var (
	exportInput  string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <html|pdf>",
	Short: "Export a Markdown document",
	Long: `Export a Markdown document as a standalone HTML page or a PDF.

HTML export is free. PDF export requires a Pro license or an active trial.

Examples:
  markpro export html -i notes.md            # Writes markdown-export-<ms>.html
  markpro export pdf -i notes.md -o notes.pdf
  cat notes.md | markpro export html -o -    # Writes to stdout`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(exportDomain.FormatHTML), string(exportDomain.FormatPDF)},
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Markdown file to export (default stdin)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, - for stdout (default generated filename)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a == nil || a.ExportService == nil {
		return fmt.Errorf("export service not available")
	}

	format, err := exportDomain.ParseFormat(args[0])
	if err != nil {
		return err
	}

	markdown, err := readInput(cmd, exportInput)
	if err != nil {
		return err
	}

	artifact, err := a.ExportService.Export(cmd.Context(), format, markdown)
	if err != nil {
		if errors.Is(err, licensingDomain.ErrUpgradeRequired) {
			printUpgradePrompt(cmd, a.UpgradeURL)
		}
		return err
	}

	return writeArtifact(cmd, artifact, exportOutput)
}

func writeArtifact(cmd *cobra.Command, artifact exportDomain.Artifact, output string) error {
	if output == "-" {
		_, err := cmd.OutOrStdout().Write(artifact.Content)
		return err
	}

	path := output
	if path == "" {
		path = artifact.Filename
	}
	if err := os.WriteFile(path, artifact.Content, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d bytes)\n", path, len(artifact.Content))
	return nil
}

func printUpgradePrompt(cmd *cobra.Command, upgradeURL string) {
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, "PDF export is a Pro feature.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Start a free trial:   markpro license trial")
	fmt.Fprintln(out, "Activate a license:   markpro license activate <license-key>")
	if upgradeURL != "" {
		fmt.Fprintf(out, "Buy a license:        %s\n", upgradeURL)
	}
	fmt.Fprintln(out)
}
