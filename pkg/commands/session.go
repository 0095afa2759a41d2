package commands

import (
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/runner/session"
	"tableflip.dev/zdash/pkg/snake"
)

func addSession(topLevel *cobra.Command) {
	var selfID, password string

	login := &cobra.Command{
		Use:   "login [self-id]",
		Short: "sign in and store the session",
		Long: `Sign in with a self id and password. Anything not given on the command
line is asked for. The password can also come from ZDASH_PASSWORD.`,
		Example: `
zdash login ADM001
ZDASH_PASSWORD=secret zdash login EMP001 --json
`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{snake.ArgsAnnotation: "Self ID"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				selfID = args[0]
			}
			if password == "" {
				password = os.Getenv("ZDASH_PASSWORD")
			}
			return withEnv(logStderr, func(e *env) error {
				l := session.Login{
					Service:  e.Service,
					SelfID:   selfID,
					Password: password,
					JSON:     output.JSON,
					Out:      cmd.OutOrStdout(),
				}
				if !output.JSON {
					l.Prompt = session.Terminal(cmd.InOrStdin(), cmd.OutOrStdout())
				}
				return l.Do(cmd.Context())
			})
		},
	}
	login.Flags().StringVarP(&password, "password", "p", "", "password; prompted for when omitted")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(logStderr, func(e *env) error {
				l := session.Logout{Service: e.Service, JSON: output.JSON, Out: cmd.OutOrStdout()}
				return l.Do(cmd.Context())
			})
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(logStderr, func(e *env) error {
				w := session.Whoami{Service: e.Service, JSON: output.JSON, Out: cmd.OutOrStdout()}
				return w.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(login, logout, whoami)
}
