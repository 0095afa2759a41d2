package options

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/export"
	"tableflip.dev/zdash/pkg/printers"
	"tableflip.dev/zdash/pkg/sections"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
	// Out receives JSON errors. Defaults to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.PersistentFlags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

type jsonError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HandleError reports err as a JSON object when JSON output is on, and
// returns it untouched otherwise.
func (o *OutputOptions) HandleError(err error) error {
	if !o.JSON || err == nil {
		return err
	}
	out := o.Out
	if out == nil {
		out = color.Output
	}
	return printers.JSON(out, jsonError{Error: err.Error(), Code: errorCode(err)})
}

// errorCode gives scripts something stabler than the message to match on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, app.ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(err, app.ErrForbidden):
		return "forbidden"
	case errors.Is(err, api.ErrAuthExpired):
		return "auth_expired"
	case errors.Is(err, api.ErrLoginFailed):
		return "login_failed"
	case errors.Is(err, api.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, export.ErrNotExportable), errors.Is(err, export.ErrNoData):
		return "not_exportable"
	case errors.Is(err, sections.ErrUnknownSection):
		return "unknown_section"
	}
	var rf *api.RequestFailedError
	if errors.As(err, &rf) {
		return fmt.Sprintf("http_%d", rf.Status)
	}
	return ""
}
