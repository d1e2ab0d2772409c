package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"tday/internal/config"
	"tday/internal/logging"
	"tday/internal/storage"
	"tday/internal/term"
	"tday/internal/ui"
)

// errReported marks a failure whose diagnostic has already been written.
var errReported = errors.New("tday failed")

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "[error] arguments: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdin *os.File, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "tday",
		Short:         "Keep today's todo list in the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if run(cmd.Context(), opts, stdin, stdout, stderr) != 0 {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", config.ResolveConfigPath(), "path to the TOML config file")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "database file, overriding db_path from the config")
	return cmd
}

type options struct {
	configPath string
	dbPath     string
}

// session holds what has to be released on every exit path.
type session struct {
	out      io.Writer
	log      *slog.Logger
	closeLog func() error
	store    *storage.Store
	term     *term.Terminal
	once     sync.Once
}

// shutdown closes the store, restores the terminal and says goodbye. Only
// the first call does anything.
func (s *session) shutdown() {
	s.once.Do(func() {
		if s.store != nil {
			if err := s.store.Close(); err != nil {
				ui.ReportError(s.log, "close database", err)
			}
		}
		if err := s.term.Restore(); err != nil {
			ui.ReportError(s.log, "restore terminal", err)
		}
		fmt.Fprintln(s.out, "Quitting program...")
		if s.closeLog != nil {
			_ = s.closeLog()
		}
	})
}

func run(ctx context.Context, opts options, stdin *os.File, stdout, stderr io.Writer) int {
	s := &session{out: stdout, log: slog.New(logging.NewDiagnosticHandler(stderr, slog.LevelError))}
	defer s.shutdown()

	cfg, err := config.LoadOrCreate(opts.configPath)
	if err != nil {
		ui.ReportError(s.log, "load config", err)
		return 1
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		ui.ReportError(s.log, "load config", err)
		return 1
	}
	log, closeLog, err := logging.New(stderr, level, cfg.LogFile)
	if err != nil {
		ui.ReportError(s.log, "open log file", err)
		return 1
	}
	s.log, s.closeLog = log, closeLog
	s.log.Debug("starting", "config", opts.configPath, "db", cfg.DBPath)

	s.term, err = term.EnterRaw(int(stdin.Fd()))
	if err != nil {
		ui.ReportError(s.log, "enter raw mode", err)
		return 1
	}

	s.store, err = storage.Open(ctx, cfg.DBPath, storage.Options{BusyTimeout: cfg.BusyTimeout()})
	if err != nil {
		ui.ReportError(s.log, "open database", err)
		return 1
	}

	if err := ui.Run(stdin, stdout, ui.New(ctx, s.store, s.log)); err != nil {
		ui.ReportError(s.log, "terminal", err)
		return 1
	}
	return 0
}
