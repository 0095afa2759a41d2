package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/runner/action"
	"tableflip.dev/zdash/pkg/runner/session"
	"tableflip.dev/zdash/pkg/snake"
	"tableflip.dev/zdash/pkg/view"
)

// actionInput is one answer an action needs, taken from a flag.
type actionInput struct {
	flag     string
	label    string
	usage    string
	required bool
}

type actionCommand struct {
	use      string
	short    string
	example  string
	actionID string
	// inputs are in the order the action reads them; required ones first.
	inputs []actionInput
}

func actionCommands() []actionCommand {
	return []actionCommand{{
		use:      "approve <registration-id>",
		short:    "approve a pending registration",
		example:  "zdash approve 42",
		actionID: view.ActionApproveRegistration,
	}, {
		use:      "reject <registration-id>",
		short:    "reject a pending registration",
		example:  `zdash reject 42 --reason "Duplicate request"`,
		actionID: view.ActionRejectRegistration,
		inputs:   []actionInput{{flag: "reason", label: "Rejection reason", usage: "why the registration is rejected", required: true}},
	}, {
		use:      "share <registration-id>",
		short:    "share a registration with another user",
		example:  "zdash share 42 --with EMP001",
		actionID: view.ActionShareRegistration,
		inputs:   []actionInput{{flag: "with", label: "Share with", usage: "self id or email to share with", required: true}},
	}, {
		use:      "assign <contact-id>",
		short:    "assign a contact inquiry",
		example:  "zdash assign 7 --to EMP001",
		actionID: view.ActionAssignContact,
		inputs:   []actionInput{{flag: "to", label: "Assign to", usage: "self id of the assignee", required: true}},
	}, {
		use:      "resolve <contact-id>",
		short:    "mark a contact inquiry resolved",
		example:  "zdash resolve 7",
		actionID: view.ActionResolveContact,
	}, {
		use:      "share-contact <contact-id>",
		short:    "share a contact inquiry with another user",
		example:  `zdash share-contact 7 --with EMP001 --notes "Follow up Monday"`,
		actionID: view.ActionShareContact,
		inputs: []actionInput{
			{flag: "with", label: "Share with", usage: "self id or email to share with", required: true},
			{flag: "notes", label: "Notes", usage: "optional notes for the recipient"},
		},
	}, {
		use:      "task-status <task-id>",
		short:    "change the status of one of your tasks",
		example:  "zdash task-status 12 --status in-progress",
		actionID: view.ActionTaskStatus,
		inputs: []actionInput{{
			flag:     "status",
			label:    "Status",
			usage:    "new status: " + strings.ToLower(strings.Join(record.Statuses(record.KindTask), ", ")),
			required: true,
		}},
	}, {
		use:      "task-note <task-id>",
		short:    "add a note to one of your tasks",
		example:  `zdash task-note 12 --note "Waiting on review"`,
		actionID: view.ActionTaskNote,
		inputs:   []actionInput{{flag: "note", label: "Note", usage: "note text", required: true}},
	}, {
		use:      "task-hours <task-id>",
		short:    "log the hours spent on one of your tasks",
		example:  "zdash task-hours 12 --hours 3",
		actionID: view.ActionTaskHours,
		inputs:   []actionInput{{flag: "hours", label: "Hours", usage: "whole hours spent so far", required: true}},
	}}
}

func addActions(topLevel *cobra.Command) {
	for _, ac := range actionCommands() {
		topLevel.AddCommand(ac.command())
	}
}

func (ac actionCommand) command() *cobra.Command {
	values := make([]string, len(ac.inputs))

	cmd := &cobra.Command{
		Use:         ac.use,
		Short:       ac.short,
		Example:     "\n" + ac.example + "\n",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{snake.ArgsAnnotation: "ID"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var required []string
			for _, in := range ac.inputs {
				if in.required {
					required = append(required, in.label)
				}
			}
			return withEnv(logStderr, func(e *env) error {
				a := action.Action{
					Service:  e.Service,
					ActionID: ac.actionID,
					ID:       args[0],
					Roles:    app.RolesFor(ac.actionID),
					Inputs:   values,
					Required: required,
					JSON:     output.JSON,
					Out:      cmd.OutOrStdout(),
				}
				if !output.JSON {
					a.Prompt = session.Terminal(cmd.InOrStdin(), cmd.OutOrStdout())
				}
				return a.Do(cmd.Context())
			})
		},
	}
	for i, in := range ac.inputs {
		cmd.Flags().StringVar(&values[i], in.flag, "", in.usage)
	}
	return cmd
}
