// Package action runs a dashboard action (approve, reject, share, ...) from
// the command line.
package action

import (
	"context"
	"errors"
	"io"
	"strings"

	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/printers"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/runner/session"
	"tableflip.dev/zdash/pkg/store"
)

// Action performs ActionID on record ID.
type Action struct {
	Service  *app.Service
	ActionID string
	ID       string
	// Roles allowed to run the action. Empty allows any signed-in user.
	Roles []store.Role
	// Inputs answer the action's questions in order.
	Inputs []string
	// Required labels the leading inputs that must be given. Blank ones are
	// asked for with Prompt when it is set.
	Required []string
	Prompt   session.Prompter

	JSON bool
	Out  io.Writer
}

// ResultDTO is the --json shape of an action result.
type ResultDTO struct {
	Action   string            `json:"action"`
	ID       string            `json:"id"`
	Message  string            `json:"message"`
	Severity string            `json:"severity"`
	Details  map[string]string `json:"details,omitempty"`
}

func (a *Action) Do(ctx context.Context) error {
	if a.Service == nil {
		return app.ErrNoAPI
	}
	if _, err := a.Service.Require(a.Roles...); err != nil {
		return err
	}
	id := strings.TrimSpace(a.ID)
	if id == "" {
		return errors.New("record id required")
	}

	inputs := append([]string(nil), a.Inputs...)
	for i, label := range a.Required {
		for len(inputs) <= i {
			inputs = append(inputs, "")
		}
		if strings.TrimSpace(inputs[i]) != "" {
			continue
		}
		if a.Prompt == nil {
			return errors.New(strings.ToLower(label) + " required")
		}
		v, err := a.Prompt(label, false)
		if err != nil {
			return err
		}
		inputs[i] = v
	}

	res, err := a.Service.Perform(ctx, a.ActionID, record.ID(id), inputs...)
	if err != nil {
		return err
	}

	if a.JSON {
		out := ResultDTO{Action: a.ActionID, ID: id, Message: res.Message, Severity: string(res.Severity)}
		if res.Detail != nil {
			out.Details = map[string]string{}
			for _, d := range res.Detail.Details {
				out.Details[d.Label] = d.Value
			}
		}
		return printers.JSON(a.Out, out)
	}
	pp := printers.PrettyPrint{Out: a.Out}
	pp.Message(res.Message, res.Severity)
	if d := res.Detail; d != nil {
		pp.Notification(notify.Notification{Title: d.Title, Message: d.Message, Severity: d.Severity, Details: d.Details})
	}
	return nil
}
