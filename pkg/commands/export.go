package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/runner/export"
	"tableflip.dev/zdash/pkg/snake"
)

func addExport(topLevel *cobra.Command) {
	var format, dir string

	cmd := &cobra.Command{
		Use:   "export <section>",
		Short: "export a registrations or contacts section to CSV or XLSX",
		Example: `
zdash export pending-registrations
zdash export all-contacts --format xlsx --dir ~/Downloads
`,
		Args:              cobra.ExactArgs(1),
		Annotations:       map[string]string{snake.ArgsAnnotation: "Section"},
		ValidArgsFunction: completeSections,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(logStderr, func(e *env) error {
				x := export.Export{
					Service: e.Service,
					Section: args[0],
					Format:  format,
					Dir:     dir,
					JSON:    output.JSON,
					Out:     cmd.OutOrStdout(),
				}
				return x.Do(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "file format: csv or xlsx")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to write into")

	topLevel.AddCommand(cmd)
}
