// Package render formats assistant replies for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns assistant content into printable text.
type Renderer interface {
	Render(content string) (string, error)
}

// Plain prints content unchanged.
type Plain struct{}

// Render returns content as-is.
func (Plain) Render(content string) (string, error) {
	return content, nil
}

// Markdown renders content through glamour.
type Markdown struct {
	tr *glamour.TermRenderer
}

// NewMarkdown builds a markdown renderer wrapping at width columns.
func NewMarkdown(style string, width int) (*Markdown, error) {
	if strings.TrimSpace(style) == "" {
		style = "dark"
	}
	if width <= 0 {
		width = 80
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Markdown{tr: tr}, nil
}

// Render returns the styled markdown without glamour's surrounding blank lines.
func (m *Markdown) Render(content string) (string, error) {
	out, err := m.tr.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// For picks the markdown renderer when wanted and out is a terminal,
// and Plain otherwise.
func For(markdown bool, out io.Writer) (Renderer, error) {
	if !markdown || !IsTerminal(out) {
		return Plain{}, nil
	}
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return NewMarkdown("dark", width)
}
