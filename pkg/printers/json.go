package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// JSON writes v as indented JSON, for --json output.
func JSON(w io.Writer, v any) error {
	if w == nil {
		w = color.Output
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("printers: encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
