package commands

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/commands/options"
	"tableflip.dev/zdash/pkg/config"
	"tableflip.dev/zdash/pkg/logging"
	"tableflip.dev/zdash/pkg/metrics"
	"tableflip.dev/zdash/pkg/snake"
	"tableflip.dev/zdash/pkg/store"
)

var (
	output = &options.OutputOptions{}
	conn   = &options.ConnectionOptions{}
)

func New() *cobra.Command {
	interactive := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "zdash",
		Short: options.Wrap80("Z+ management platform dashboards in the terminal."),
		Long: options.Wrap80(`Sign in to the Z+ backend and work the admin, employee and client
dashboards from a full-screen UI, one-shot commands or an MCP server.`),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			output.Out = cmd.OutOrStdout()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive.Interactive {
				return cmd.Help()
			}
			argv, err := snake.PromptNext(cmd)
			if err != nil {
				return err
			}
			cmd.SetArgs(argv)
			return cmd.Execute()
		},
	}

	options.AddOutputArg(cmd, output)
	options.AddConnectionArgs(cmd, conn)
	options.InteractiveArgs(cmd, interactive)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addSession(topLevel)
	addList(topLevel)
	addActions(topLevel)
	addExport(topLevel)
	addWatch(topLevel)
	addUI(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// env is everything a command needs to reach the backend.
type env struct {
	Config      *config.Config
	Persistence store.Persistence
	Client      *api.Client
	Service     *app.Service
	Metrics     *metrics.Metrics
	Log         zerolog.Logger

	closers []io.Closer
}

type logTarget int

const (
	// logStderr writes readable lines to stderr.
	logStderr logTarget = iota
	// logFile writes JSON lines to the configured log file; full-screen and
	// stdio commands cannot share the terminal.
	logFile
)

func newEnv(target logTarget) (*env, error) {
	cfg, err := config.Load(config.Overrides{BaseURL: conn.BaseURL, LogLevel: conn.LogLevel})
	if err != nil {
		return nil, err
	}
	e := &env{Config: cfg}

	// One-shot commands stay quiet unless asked.
	level := conn.LogLevel
	if level == "" {
		level = "warn"
	}
	logOpts := logging.Options{Level: level, Pretty: true, Output: os.Stderr}
	if target == logFile {
		logOpts = logging.Options{Level: cfg.LogLevel, Output: io.Discard}
		if cfg.LogFile != "" {
			f, err := logging.OpenFile(cfg.LogFile)
			if err != nil {
				return nil, err
			}
			e.closers = append(e.closers, f)
			logOpts.Output = f
		}
	}
	e.Log = logging.Init(logOpts)

	e.Persistence, err = store.New(cfg, store.WithLogger(e.Log))
	if err != nil {
		e.Close()
		return nil, err
	}

	e.Metrics = metrics.New()
	e.Client = api.New(cfg.BaseURL, e.Persistence, cfg.Timeout)
	e.Client.Log = e.Log
	e.Client.Metrics = e.Metrics

	e.Service = &app.Service{
		API:         e.Client,
		Persistence: e.Persistence,
		Log:         e.Log,
	}
	return e, nil
}

func (e *env) Close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
}

// withEnv builds an env for the duration of run.
func withEnv(target logTarget, run func(e *env) error) error {
	e, err := newEnv(target)
	if err != nil {
		return output.HandleError(err)
	}
	defer e.Close()
	return output.HandleError(run(e))
}
