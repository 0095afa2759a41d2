// Package session implements the login, logout and whoami commands.
package session

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/manifoldco/promptui"

	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/printers"
	"tableflip.dev/zdash/pkg/store"
	"tableflip.dev/zdash/pkg/view"
)

// Prompter asks for one line of input. mask hides what is typed.
type Prompter func(label string, mask bool) (string, error)

// Terminal prompts with promptui on in and out.
func Terminal(in io.Reader, out io.Writer) Prompter {
	return func(label string, mask bool) (string, error) {
		p := promptui.Prompt{
			Label: label,
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("required")
				}
				return nil
			},
			Stdin:  io.NopCloser(in),
			Stdout: nopCloser{out},
		}
		if mask {
			p.Mask = '*'
		}
		return p.Run()
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// UserDTO is the --json shape of the signed-in user.
type UserDTO struct {
	SelfID   string `json:"selfId"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
	Role     string `json:"role"`
}

func userDTO(u store.User) UserDTO {
	return UserDTO{SelfID: u.SelfID, Name: u.DisplayName(), UserType: string(u.UserType), Role: u.UserType.Label()}
}

// Login signs in and stores the session. Missing credentials are prompted
// for.
type Login struct {
	Service  *app.Service
	SelfID   string
	Password string
	Prompt   Prompter

	JSON bool
	Out  io.Writer
}

func (l *Login) Do(ctx context.Context) error {
	if l.Service == nil {
		return app.ErrNoAPI
	}
	var err error
	if strings.TrimSpace(l.SelfID) == "" && l.Prompt != nil {
		if l.SelfID, err = l.Prompt("Self ID", false); err != nil {
			return err
		}
	}
	if l.Password == "" && l.Prompt != nil {
		if l.Password, err = l.Prompt("Password", true); err != nil {
			return err
		}
	}

	sess, err := l.Service.Login(ctx, l.SelfID, l.Password)
	if err != nil {
		return err
	}
	if l.JSON {
		return printers.JSON(l.Out, userDTO(sess.User))
	}
	pp := printers.PrettyPrint{Out: l.Out}
	pp.Message("Signed in as "+sess.User.DisplayName()+" ("+sess.User.UserType.Label()+")", notify.Success)
	return nil
}

// Logout clears the stored session.
type Logout struct {
	Service *app.Service

	JSON bool
	Out  io.Writer
}

func (l *Logout) Do(_ context.Context) error {
	if l.Service == nil {
		return app.ErrNoPersistence
	}
	_, had := l.Service.Session()
	if err := l.Service.Logout(); err != nil {
		return err
	}
	if l.JSON {
		return printers.JSON(l.Out, map[string]bool{"signedOut": had})
	}
	pp := printers.PrettyPrint{Out: l.Out}
	if had {
		pp.Message("Signed out.", notify.Info)
	} else {
		pp.Message("No session was stored.", notify.Info)
	}
	return nil
}

// Whoami prints the stored user.
type Whoami struct {
	Service *app.Service

	JSON bool
	Out  io.Writer
}

func (w *Whoami) Do(_ context.Context) error {
	if w.Service == nil {
		return app.ErrNoPersistence
	}
	sess, err := w.Service.Require()
	if err != nil {
		return err
	}
	if w.JSON {
		return printers.JSON(w.Out, userDTO(sess.User))
	}
	pp := printers.PrettyPrint{Out: w.Out}
	pp.Fields(fieldsOf(sess.User))
	return nil
}

func fieldsOf(u store.User) []view.Field {
	return []view.Field{
		{Label: "Self ID", Value: u.SelfID},
		{Label: "Name", Value: u.DisplayName()},
		{Label: "Role", Value: u.UserType.Label()},
	}
}
