package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/commands/options"
	"tableflip.dev/zdash/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	var (
		interval time.Duration
		mo       = &options.MetricsOptions{}
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "print a line whenever pending work grows",
		Long: `Poll the signed-in dashboard's counters (pending registrations and
contact inquiries for admins, new tasks for employees) and print a
notification each time one increases. Stops on Ctrl-C or when the session
ends.`,
		Example: `
zdash watch
zdash watch --interval 1m --metrics-addr 127.0.0.1:9090
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(logStderr, func(e *env) error {
				w := watch.Watch{
					Service:     e.Service,
					Source:      e.Client,
					Interval:    e.Config.PollInterval,
					Metrics:     e.Metrics,
					MetricsAddr: mo.Addr,
					Log:         e.Log,
					JSON:        output.JSON,
					Out:         cmd.OutOrStdout(),
				}
				if interval > 0 {
					w.Interval = interval
				}
				return w.Do(cmd.Context())
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval; defaults to poll_interval from config")
	options.AddMetricsArg(cmd, mo)

	topLevel.AddCommand(cmd)
}
