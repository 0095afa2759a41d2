package options

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// Wrap80 reflows help text to 80 columns.
func Wrap80(text string) string {
	return Wrap(text, 80)
}

// Wrap joins text onto one paragraph and word wraps it at width.
func Wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	return wordwrap.String(strings.Join(words, " "), width)
}
