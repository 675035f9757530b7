package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/younsl/gradesync/pkg/canvas"
	"github.com/younsl/gradesync/pkg/config"
	"github.com/younsl/gradesync/pkg/history"
	"github.com/younsl/gradesync/pkg/logging"
	"github.com/younsl/gradesync/pkg/publishing"
	"github.com/younsl/gradesync/pkg/tui"
	"golang.org/x/term"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gradesync",
		Short: "Canvas SIS Grade Sync Monitor",
		Long: `gradesync is a TUI application for tracking and triggering the
"sync grades to SIS" job of a Canvas course.`,
		Version:       fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "config file path")
	cmd.PersistentFlags().StringP("token", "t", "", "Canvas API token")
	cmd.PersistentFlags().StringP("base-url", "u", "", "Canvas base URL including the API prefix (e.g. canvas.example.edu/api/v1)")
	cmd.PersistentFlags().String("course", "", "Canvas course ID")
	cmd.PersistentFlags().IntP("interval", "i", 0, "Re-check interval in seconds while a sync is in progress")
	cmd.Flags().Bool("no-check", false, "Do not check the sync status on startup")

	cmd.AddCommand(newStatusCmd(), newPublishCmd(), newHistoryCmd())
	return cmd
}

// loadConfig reads .env, the config file and flag overrides, in that order
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if token, _ := cmd.Flags().GetString("token"); token != "" {
		cfg.Canvas.Token = token
	}
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		baseURL = config.NormalizeBaseURL(baseURL)
		if cfg.Publishing.HistoryFile == config.DefaultHistoryFile(cfg.Canvas.BaseURL) {
			cfg.Publishing.HistoryFile = config.DefaultHistoryFile(baseURL)
		}
		cfg.Canvas.BaseURL = baseURL
	}
	if course, _ := cmd.Flags().GetString("course"); course != "" {
		cfg.Canvas.CourseID = course
	}
	if interval, _ := cmd.Flags().GetInt("interval"); interval != 0 {
		cfg.Publishing.Interval = interval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session holds what every command builds from the config
type session struct {
	cfg     *config.Config
	client  *canvas.Client
	history *history.Store
	logger  *slog.Logger
}

func newSession(cfg *config.Config, logger *slog.Logger) (*session, error) {
	client, err := canvas.NewClient(
		cfg.Canvas.Token,
		cfg.Canvas.BaseURL,
		cfg.Canvas.CourseID,
		canvas.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Canvas client: %w", err)
	}

	store, err := history.Open(cfg.Publishing.HistoryFile)
	if err != nil {
		// History is optional; the poller runs without a recorder.
		logger.Warn("history disabled", "path", cfg.Publishing.HistoryFile, "error", err)
		store = nil
	}

	return &session{
		cfg:     cfg,
		client:  client,
		history: store,
		logger:  logger,
	}, nil
}

func (s *session) pollInterval() time.Duration {
	return time.Duration(s.cfg.Publishing.Interval) * time.Second
}

func (s *session) newPoller(presenter publishing.Presenter) *publishing.Poller {
	opts := []publishing.Option{
		publishing.WithInterval(s.pollInterval()),
		publishing.WithLogger(s.logger),
		publishing.WithCourse(s.cfg.Canvas.CourseID),
	}
	if s.history != nil {
		opts = append(opts, publishing.WithRecorder(s.history))
	}
	return publishing.New(s.client, presenter, opts...)
}

func (s *session) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

func run(cmd *cobra.Command, args []string) error {
	// Check if we're running in a terminal, but allow override
	if !isTerminal() && os.Getenv("FORCE_TTY") != "1" {
		fmt.Fprintf(os.Stderr, "Warning: Not running in a TTY. Key input may not work properly.\n")
		fmt.Fprintf(os.Stderr, "Try running in a proper terminal, or set FORCE_TTY=1 to override.\n")
		fmt.Fprintf(os.Stderr, "Terminal info: stdin=%t, stdout=%t, stderr=%t\n",
			term.IsTerminal(int(os.Stdin.Fd())),
			term.IsTerminal(int(os.Stdout.Fd())),
			term.IsTerminal(int(os.Stderr.Fd())))
		fmt.Fprintf(os.Stderr, "Continuing anyway...\n")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := logging.SetupFileLogger(logging.Config{
		File:  cfg.Logging.File,
		Level: cfg.Logging.Level,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, logging disabled\n", err)
		logger, closer = logging.NullLogger(), io.NopCloser(nil)
	}
	defer closer.Close()

	sess, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	checkOnStart := cfg.Publishing.Enabled
	if noCheck, _ := cmd.Flags().GetBool("no-check"); noCheck {
		checkOnStart = false
	}

	tuiConfig := &tui.AppConfig{
		ServerURL:    cfg.Canvas.BaseURL,
		CourseID:     cfg.Canvas.CourseID,
		Timezone:     cfg.Publishing.Timezone,
		Version:      version,
		Interval:     time.Duration(cfg.Publishing.Interval) * time.Second,
		CheckOnStart: checkOnStart,
	}

	logger.Info("starting gradesync", "version", version, "server", cfg.Canvas.BaseURL, "course", cfg.Canvas.CourseID)

	newPoller := func(presenter publishing.Presenter) tui.Poller {
		return sess.newPoller(presenter)
	}
	if err := tui.RunBubbleApp(newPoller, tuiConfig); err != nil {
		return fmt.Errorf("failed to run application: %w", err)
	}

	return nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
