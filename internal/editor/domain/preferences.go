// Package domain holds editor preferences stored next to the license slot.
package domain

import (
	"context"
	"fmt"
)

// Slot keys, shared with the license slot's storage.
const (
	SlotTheme = "markdown-pro-theme"
	SlotDraft = "markdown-draft"
)

// Theme is the editor color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme applies when nothing is stored.
const DefaultTheme = ThemeLight

// ParseTheme validates a stored or user-supplied theme.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool {
	return t == ThemeDark
}

// DefaultDraft is shown when no draft has been saved.
const DefaultDraft = "# Welcome to Markdown Pro\n\n## Start writing...\n\n" +
	"- This is a **bold** feature\n" +
	"- *Italic* text support\n" +
	"- `Code snippets`\n" +
	"- [Links](https://example.com)\n\n" +
	"```javascript\nconsole.log(\"Hello World!\");\n```"

// Store is the plain string key-value storage the preferences live in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
