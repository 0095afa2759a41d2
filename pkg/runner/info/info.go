package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gosuri/uitable"

	"tableflip.dev/zdash/pkg/config"
	"tableflip.dev/zdash/pkg/store"
)

type Info struct {
	Config      *config.Config
	Persistence store.Persistence
	Out         io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = os.Stdout
	}

	if override := os.Getenv("ZDASH_CONFIG_PATH"); override != "" {
		fmt.Fprintln(out, "ZDASH_CONFIG_PATH found on env, using", override)
	} else {
		fmt.Fprintln(out, "ZDASH_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = config.Load(config.Overrides{})
		if err != nil {
			return err
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Base URL:", n.Config.BaseURL)
	tbl.AddRow("Timeout:", n.Config.Timeout)
	tbl.AddRow("Poll interval:", n.Config.PollInterval)
	tbl.AddRow("Session path:", n.Config.SessionPath)
	tbl.AddRow("Log file:", n.Config.LogFile)
	tbl.AddRow("Log level:", n.Config.LogLevel)
	fmt.Fprintln(out, tbl)

	if n.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}

	sess, ok := n.Persistence.Load()
	if !ok {
		fmt.Fprintln(out, "Session:\n  not logged in")
		return nil
	}
	fmt.Fprintf(out, "Session:\n  %s (%s, %s)\n", sess.User.DisplayName(), sess.User.SelfID, sess.User.UserType.Label())
	return nil
}
