package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about configuration and where the session is stored.",
		Example: `
zdash info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(logStderr, func(e *env) error {
				s := info.Info{
					Config:      e.Config,
					Persistence: e.Persistence,
					Out:         cmd.OutOrStdout(),
				}
				return s.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
