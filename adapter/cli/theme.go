package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or toggle the editor theme",
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.EditorService == nil {
			return fmt.Errorf("editor service not available")
		}
		theme, err := a.EditorService.Theme(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.EditorService == nil {
			return fmt.Errorf("editor service not available")
		}
		theme, err := a.EditorService.ToggleTheme(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", theme)
		return nil
	},
}

func init() {
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeToggleCmd)
	rootCmd.AddCommand(themeCmd)
}
