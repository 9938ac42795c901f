package format

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const wordWrap = 100

// FormatMarkdown renders a model reply for the terminal. Replies that carry
// no markdown, like backend error texts, come out as plain wrapped text.
func FormatMarkdown(text string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", err
	}
	out, err := renderer.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
