package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/commands/options"
	"tableflip.dev/zdash/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	var (
		exportDir string
		follow    bool
		mo        = &options.MetricsOptions{}
	)

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the full-screen dashboard",
		Example: `
zdash ui
zdash ui --export-dir ~/Downloads --watch
`,
		ValidArgs: []string{},
		Args:      cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(logFile, func(e *env) error {
				u := ui.UI{
					Service:      e.Service,
					Client:       e.Client,
					PollInterval: e.Config.PollInterval,
					ExportDir:    exportDir,
					Watch:        follow,
					Metrics:      e.Metrics,
					MetricsAddr:  mo.Addr,
					Log:          e.Log,
				}
				return u.Do(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "directory for exports; defaults to the working directory")
	cmd.Flags().BoolVar(&follow, "watch", true, "follow logins and logouts made by other zdash processes")
	options.AddMetricsArg(cmd, mo)

	topLevel.AddCommand(cmd)
}
