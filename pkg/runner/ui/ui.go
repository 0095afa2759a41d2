// Package ui launches the full-screen dashboard.
package ui

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/metrics"
	"tableflip.dev/zdash/pkg/notify"
	teaui "tableflip.dev/zdash/pkg/tui/app"
)

type UI struct {
	Service *app.Service
	Client  *api.Client

	PollInterval time.Duration
	ExportDir    string
	// Watch follows logins and logouts made by other zdash processes.
	Watch bool

	Metrics     *metrics.Metrics
	MetricsAddr string
	Log         zerolog.Logger
}

func (u *UI) Do(ctx context.Context) error {
	if u.Service == nil || u.Client == nil {
		return app.ErrNoAPI
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if u.MetricsAddr != "" && u.Metrics != nil {
		go func() {
			if err := u.Metrics.Serve(ctx, u.MetricsAddr); err != nil {
				u.Log.Warn().Err(err).Str("addr", u.MetricsAddr).Msg("ui: metrics server")
			}
		}()
	}

	// Action results surface as toasts.
	presenter := notify.New(notify.WithMetrics(u.Metrics))
	u.Service.Notifier = presenter
	return teaui.Run(teaui.Config{
		Service:      u.Service,
		Client:       u.Client,
		Presenter:    presenter,
		PollInterval: u.PollInterval,
		ExportDir:    u.ExportDir,
		Watch:        u.Watch,
		Log:          u.Log,
		Metrics:      u.Metrics,
	})
}
