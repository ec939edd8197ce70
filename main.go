package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spaces-client/api"
	"spaces-client/config"
	"spaces-client/dialog"
	"spaces-client/render"
	"spaces-client/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `spaces login` first")

var rootCmd = &cobra.Command{
	Use:           "spaces",
	Short:         "Terminal client for Spaces group chat",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagConfig   string
	flagLogLevel string
)

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagConfig, "config", "c", defaultConfigPath(), "config file path")
	flags.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".spaces", "config.yaml")
}

// app bundles what every subcommand needs. Subcommands open it in RunE and
// close it on return.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *store.Store
	client  *api.Client
	view    *render.Terminal
	dialogs *dialog.Terminal
}

func open(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client := api.New(cfg.APIBaseURL, st,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
		api.OnSessionExpired(func() {
			logger.Warn().Msg("[auth] session expired, token cleared")
		}),
	)

	out := cmd.OutOrStdout()
	return &app{
		cfg:     cfg,
		log:     logger,
		store:   st,
		client:  client,
		view:    render.New(out),
		dialogs: dialog.New(cmd.InOrStdin(), out),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("[store] close failed")
	}
}

// requireSession fails fast when there is no token or the token has
// already expired locally.
func (a *app) requireSession() error {
	if !a.store.IsAuthenticated() {
		return errNotLoggedIn
	}
	info, err := a.store.Claims()
	if err != nil {
		a.log.Debug().Err(err).Msg("[auth] token is not a readable JWT, letting the server decide")
		return nil
	}
	if info.Expired(time.Now()) {
		if err := a.store.Clear(); err != nil {
			a.log.Warn().Err(err).Msg("[auth] failed to clear expired session")
		}
		return fmt.Errorf("%w: %w", api.ErrSessionExpired, errNotLoggedIn)
	}
	return nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().Logger(), nil
}
