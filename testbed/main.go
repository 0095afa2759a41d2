// Command testbed serves a seeded in-memory Z+ backend for trying zdash
// without the real service:
//
//	go run ./testbed --trickle 20s &
//	zdash --base-url http://127.0.0.1:8089/api login ADMIN001 -p admin123
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/fakeapi"
	"tableflip.dev/zdash/pkg/record"
)

type options struct {
	addr    string
	ttl     time.Duration
	empty   bool
	trickle time.Duration
	verbose bool
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "testbed",
		Short: "Run a fake Z+ backend seeded with sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, opts)
		},
	}

	rootCmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8089", "listen address")
	rootCmd.Flags().DurationVar(&opts.ttl, "ttl", 24*time.Hour, "lifetime of issued tokens")
	rootCmd.Flags().BoolVar(&opts.empty, "empty", false, "start with no records")
	rootCmd.Flags().DurationVar(&opts.trickle, "trickle", 0, "add a pending registration, contact and task on this interval")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every request")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	if !opts.verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	fo := []fakeapi.Option{fakeapi.WithTTL(opts.ttl), fakeapi.WithLogger(log)}
	if opts.empty {
		fo = append(fo, fakeapi.WithEmpty())
	}
	fake := fakeapi.New(fo...)

	srv := &http.Server{Addr: opts.addr, Handler: fake, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	log.Info().Str("addr", opts.addr).Msg("testbed: serving /api")
	for _, a := range []fakeapi.Account{fakeapi.Admin, fakeapi.Employee, fakeapi.Client} {
		log.Info().Str("selfId", a.SelfID).Str("password", a.Password).Str("role", a.UserType).Msg("testbed: account")
	}

	var tick <-chan time.Time
	if opts.trickle > 0 {
		t := time.NewTicker(opts.trickle)
		defer t.Stop()
		tick = t.C
	}

	for n := 1; ; {
		select {
		case <-ctx.Done():
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-tick:
			trickle(fake, n)
			log.Info().Int("round", n).Msg("testbed: added pending records")
			n++
		}
	}
}

// trickle adds one of each kind of record the dashboards poll for.
func trickle(fake *fakeapi.Server, n int) {
	fake.AddRegistration(record.Registration{
		FirstName:  "Sample",
		LastName:   fmt.Sprintf("Applicant %d", n),
		Email:      fmt.Sprintf("applicant%d@example.com", n),
		Department: "Engineering",
		UserType:   "EMPLOYEE",
	})
	fake.AddContact(record.ContactInquiry{
		FullName: fmt.Sprintf("Visitor %d", n),
		Email:    fmt.Sprintf("visitor%d@example.com", n),
		Subject:  "Question",
		Message:  "Sent from the testbed.",
	})
	fake.AddTask(fakeapi.Employee.SelfID, record.Task{
		Title:    fmt.Sprintf("Follow up #%d", n),
		Priority: record.S("MEDIUM"),
	})
}
