// Package watch runs the polling notifier without the TUI, printing each
// notification as a line.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/metrics"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/poll"
	"tableflip.dev/zdash/pkg/printers"
	"tableflip.dev/zdash/pkg/store"
)

// ErrNothingToWatch is returned for roles without counters.
var ErrNothingToWatch = errors.New("nothing to watch for this role")

// Watch polls the signed-in dashboard's counters until ctx is done or the
// session ends.
type Watch struct {
	Service  *app.Service
	Source   poll.Source
	Interval time.Duration

	Metrics     *metrics.Metrics
	MetricsAddr string
	Log         zerolog.Logger
	NewTicker   func(time.Duration) poll.Ticker

	JSON bool
	Out  io.Writer
}

type line struct {
	Time     time.Time `json:"time"`
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
}

func (w *Watch) Do(ctx context.Context) error {
	if w.Service == nil || w.Source == nil {
		return app.ErrNoAPI
	}
	sess, err := w.Service.Require()
	if err != nil {
		return err
	}
	counters := poll.CountersFor(sess.User.UserType, w.Source)
	if len(counters) == 0 {
		return fmt.Errorf("%w (%s)", ErrNothingToWatch, sess.User.UserType.Label())
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if w.MetricsAddr != "" && w.Metrics != nil {
		go func() {
			if err := w.Metrics.Serve(ctx, w.MetricsAddr); err != nil {
				w.Log.Warn().Err(err).Str("addr", w.MetricsAddr).Msg("watch: metrics server")
			}
		}()
	}

	events, err := w.Service.Watch(ctx)
	if err != nil {
		w.Log.Warn().Err(err).Msg("watch: session watch unavailable")
	}

	n := &poll.Notifier{
		Counters:      counters,
		Interval:      w.Interval,
		Notify:        func(msg string) { w.print(msg, notify.Info) },
		OnAuthExpired: func() { cancel(api.ErrAuthExpired) },
		NewTicker:     w.NewTicker,
		Log:           w.Log,
		Metrics:       w.Metrics,
	}
	w.print(fmt.Sprintf("Watching as %s (%s)", sess.User.DisplayName(), sess.User.UserType.Label()), notify.Info)
	n.Start(ctx)
	defer n.Stop()

	for {
		select {
		case <-ctx.Done():
			if cause := context.Cause(ctx); errors.Is(cause, api.ErrAuthExpired) || errors.Is(cause, app.ErrNotLoggedIn) {
				return cause
			}
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Type == store.EventSessionCleared {
				w.print("Signed out from another session.", notify.Warning)
				cancel(app.ErrNotLoggedIn)
			}
		}
	}
}

func (w *Watch) print(msg string, sev notify.Severity) {
	if w.JSON {
		_ = printers.JSON(w.Out, line{Time: time.Now(), Severity: string(sev), Message: msg})
		return
	}
	pp := printers.PrettyPrint{Out: w.Out}
	pp.Message(msg, sev)
}
