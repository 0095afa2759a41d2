package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/runner/list"
	"tableflip.dev/zdash/pkg/snake"
)

func addList(topLevel *cobra.Command) {
	var status string

	listCmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "list registrations, contacts, statistics, tasks or projects",
		Long: `List one kind of record for the signed-in role. Admins see registrations,
contacts and contact statistics; employees see their tasks and all projects;
clients see their own projects.`,
		Example: `
zdash list registrations --status pending
zdash list tasks --status in-progress
zdash list projects --json
`,
		Args:        cobra.ExactArgs(1),
		ValidArgs:   list.Kinds(),
		Annotations: map[string]string{snake.ArgsAnnotation: "Kind"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(logStderr, func(e *env) error {
				l := list.List{
					Service: e.Service,
					Kind:    args[0],
					Status:  status,
					JSON:    output.JSON,
					Out:     cmd.OutOrStdout(),
				}
				return l.Do(cmd.Context())
			})
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", `status filter, e.g. "pending" or "in-progress"; "all" for everything`)

	sectionsCmd := &cobra.Command{
		Use:   "sections",
		Short: "list the sections of the signed-in dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(logStderr, func(e *env) error {
				s := list.Sections{Service: e.Service, JSON: output.JSON, Out: cmd.OutOrStdout()}
				return s.Do(cmd.Context())
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <section>",
		Short: "render one dashboard section",
		Example: `
zdash show dashboard
zdash show pending-registrations
`,
		Args:              cobra.ExactArgs(1),
		Annotations:       map[string]string{snake.ArgsAnnotation: "Section"},
		ValidArgsFunction: completeSections,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(logStderr, func(e *env) error {
				s := list.Show{Service: e.Service, Section: args[0], JSON: output.JSON, Out: cmd.OutOrStdout()}
				return s.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(listCmd, sectionsCmd, showCmd)
}

// completeSections offers the signed-in role's section ids.
func completeSections(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	e, err := newEnv(logFile)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer e.Close()

	sess, err := e.Service.Require()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := e.Service.Registry(sess)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, s := range reg.Sections() {
		ids = append(ids, string(s.ID))
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
