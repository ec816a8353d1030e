package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/examdesk/internal/api"
	"github.com/me/examdesk/internal/config"
	"github.com/me/examdesk/internal/logging"
	"github.com/me/examdesk/internal/session"
	"github.com/me/examdesk/internal/tokenstore"
)

var (
	flagConfig    string
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagTimeout   time.Duration
	flagPageSize  int

	cfg       config.ClientConfig
	logger    *slog.Logger
	logCloser io.Closer
	store     tokenstore.Store
	guard     *session.Guard
	client    *api.Client
)

// NewRootCmd creates the root cobra command for the examdesk CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examdesk",
		Short: "examdesk: student and exam administration client",
		Long:  "examdesk manages students, exams, questions and images on the exam administration backend.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", config.DefaultPath(), "Config file")
	pf.StringVar(&flagServer, "server", "", "Backend API base URL (or EXAMDESK_SERVER env)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout (default 15s)")
	pf.IntVar(&flagPageSize, "page-size", 0, "Items per page (default 10)")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newStudentsCmd(),
		newExamsCmd(),
		newQuestionsCmd(),
		newImagesCmd(),
		newServeCmd(),
	)

	return root
}

// setup loads configuration, applies flag overrides and builds the
// logger, token store, guard and API client shared by every command.
func setup(cmd *cobra.Command) error {
	teardown()
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = flagServer
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = flagTimeout
	}
	if flags.Changed("page-size") {
		cfg.PageSize = flagPageSize
	}
	if flagDebug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logCloser = logging.New(logging.Options{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	store, err = tokenstore.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	guard = session.NewGuard(store, logger, session.WithNavigator(session.NavigatorFunc(
		func(ctx context.Context, to session.Location) {
			logger.Debug("navigate", "to", string(to))
		})))
	client = api.NewClient(cfg.Server, guard, logger, api.WithTimeout(cfg.RequestTimeout))
	logger.Debug("config loaded", "server", cfg.Server, "token_store", cfg.TokenStore)
	return nil
}

func teardown() {
	if store != nil {
		store.Close()
		store = nil
	}
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

// requireSession runs the guard's mount check for a protected command.
func requireSession(cmd *cobra.Command) error {
	if err := guard.Require(cmd.Context(), session.LocationHome); err != nil {
		return err
	}
	return nil
}

// protected wraps a RunE so it only runs with a valid session.
func protected(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := requireSession(cmd); err != nil {
			return err
		}
		return run(cmd, args)
	}
}
