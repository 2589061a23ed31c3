package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// maxInputBytes bounds documents read from files or stdin.
const maxInputBytes = 16 << 20

// readInput returns the contents of path, or stdin when path is "" or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("input exceeds %d bytes", maxInputBytes)
	}
	return string(data), nil
}
