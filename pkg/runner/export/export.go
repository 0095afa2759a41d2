// Package export writes the records of a registrations or contacts section
// to a CSV or XLSX file.
package export

import (
	"context"
	"fmt"
	"io"

	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/export"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/printers"
	"tableflip.dev/zdash/pkg/store"
)

// Export runs one export.
type Export struct {
	Service *app.Service
	// Section is a section id such as "pending-registrations".
	Section string
	Format  string
	Dir     string

	JSON bool
	Out  io.Writer
}

func (e *Export) Do(ctx context.Context) error {
	if e.Service == nil {
		return app.ErrNoAPI
	}
	if _, err := e.Service.Require(store.RoleAdmin); err != nil {
		return err
	}
	f, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}
	out, err := e.Service.Export(ctx, e.Section, f, e.Dir)
	if err != nil {
		return err
	}
	if e.JSON {
		return printers.JSON(e.Out, map[string]any{"path": out.Path, "records": out.Records})
	}
	pp := printers.PrettyPrint{Out: e.Out}
	pp.Message(fmt.Sprintf("Exported %d records to %s", out.Records, out.Path), notify.Success)
	return nil
}
