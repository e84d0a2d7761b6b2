package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/dchat/internal/config"
	"github.com/bnema/dchat/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const skipWireAnnotation = "dchat/skip-wire"

type rootOptions struct {
	configFile string
	verbose    bool
}

func Execute() error {
	return newRootCmd().Execute()
}

// newRootCmd builds the command tree. Each override runs on the wired app
// before the command does.
func newRootCmd(overrides ...func(*app)) *cobra.Command {
	opts := &rootOptions{}
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "dchat",
		Short:         "dchat: a quota-limited AI chat in your terminal",
		Long:          "dchat lets a registered user chat with a remote AI assistant, limited to a daily message quota that refills every morning. Run without a subcommand to open the chat dashboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipWireAnnotation] == "true" {
				return nil
			}

			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}

			logger, err := buildLogger(cfg, opts.verbose)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}

			wired, err := wireApp(cfg, logger)
			if err != nil {
				_ = logger.Sync()
				return err
			}
			*app = *wired
			for _, override := range overrides {
				override(app)
			}

			logger.Debug("command started", zap.String("command", cmd.CommandPath()), zap.String("backend", cfg.State.Backend))
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ~/.dchat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging, also written to stderr")

	rootCmd.AddCommand(
		newVersionCmd(),
		newChatCmd(app),
		newSendCmd(app),
		newStatusCmd(app),
		newThemeCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newQuotaCmd(app),
	)

	return rootCmd
}

// buildLogger writes JSON logs to log.file so the dashboard's screen stays
// clean. --verbose lowers the level to debug and tees to stderr.
func buildLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	zcfg.OutputPaths = nil
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.Log.File)
	}
	if verbose || len(zcfg.OutputPaths) == 0 {
		zcfg.OutputPaths = append(zcfg.OutputPaths, "stderr")
	}

	return zcfg.Build()
}

// sessionError adds the login hint to a missing-session error.
func sessionError(err error) error {
	if errors.Is(err, domain.ErrSessionMissing) {
		return fmt.Errorf("%w, run `dchat login --name <name>`", err)
	}

	return err
}
