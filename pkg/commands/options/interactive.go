package options

import (
	"github.com/spf13/cobra"
)

// InteractiveOptions
type InteractiveOptions struct {
	Interactive bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", false,
		`Pick a command and answer its arguments and flags interactively.`)
}

// ConnectionOptions locate the backend and tune logging.
type ConnectionOptions struct {
	BaseURL  string
	LogLevel string
}

func AddConnectionArgs(cmd *cobra.Command, o *ConnectionOptions) {
	cmd.PersistentFlags().StringVar(&o.BaseURL, "base-url", "",
		"Backend API base URL. Overrides base_url in .zdash.yaml and ZDASH_BASE_URL.")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "",
		"Log level: trace, debug, info, warn, error or disabled.")
}

// MetricsOptions expose Prometheus metrics while a long running command runs.
type MetricsOptions struct {
	Addr string
}

func AddMetricsArg(cmd *cobra.Command, o *MetricsOptions) {
	cmd.Flags().StringVar(&o.Addr, "metrics-addr", "",
		`Serve Prometheus metrics on this address, e.g. "127.0.0.1:9090".`)
}
