// cmd/storyidx/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storyidx/internal/builder"
	"storyidx/internal/config"
	"storyidx/internal/scaffold"
	"storyidx/internal/server"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type appConfig struct {
	configPath   string
	configSet    bool
	logLevel     string
	contentDir   string
	rawDir       string
	noRaw        bool
	noCategories bool
	unsafe       bool
	port         int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line in args and returns the process exit code.
// Cancelling ctx is a clean exit; any error or panic is a failure.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &panicError{value: r, stack: debug.Stack()}
			}
		}()
		done <- root.ExecuteContext(ctx)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			reportError(stderr, err)
			return 1
		}
		if ctx.Err() != nil {
			fmt.Fprintln(stdout, "\n❌ Cancelled")
		}
		return 0
	case <-ctx.Done():
		fmt.Fprintln(stdout, "\n❌ Cancelled")
		// Give serve a moment to shut its listener down.
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
		return 0
	}
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "❌ Error: %v\n", err)
	var pe *panicError
	if errors.As(err, &pe) {
		w.Write(pe.stack)
		return
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(w, "   caused by: %v\n", cause)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	appCfg := &appConfig{}

	root := &cobra.Command{
		Use:   "storyidx",
		Short: "Build the story index for a static reader site",
		Long: "storyidx scans a directory of YAML chapter files and writes the\n" +
			"index.json the reader front-end loads, plus usage notes for editors.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			appCfg.configSet = cmd.Flags().Changed("config")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := appCfg.load(stderr)
			if err != nil {
				return err
			}
			return buildAll(cfg, logger, appCfg.unsafe, stdout)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&appCfg.configPath, "config", "c", config.DefaultFile, "config file")
	flags.StringVar(&appCfg.logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	flags.StringVar(&appCfg.contentDir, "content", "", "content directory (overrides content_dir)")
	flags.StringVar(&appCfg.rawDir, "raw", "", "raw directory (overrides raw_dir)")
	flags.BoolVar(&appCfg.noRaw, "no-raw", false, "disable raw comparison")
	flags.BoolVar(&appCfg.noCategories, "no-categories", false, "disable series categories")
	flags.BoolVar(&appCfg.unsafe, "unsafe", false, "disable HTML sanitization of the rendered usage notes")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and rebuild the index on changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := appCfg.load(stderr)
			if err != nil {
				return err
			}
			port := cfg.Serve.Port
			if cmd.Flags().Changed("port") {
				port = appCfg.port
			}
			watch := []string{cfg.ContentPath()}
			if raw := cfg.RawPath(); raw != "" {
				watch = append(watch, raw)
			}
			return server.Run(cmd.Context(), server.Options{
				Port:       port,
				SiteDir:    cfg.SitePath(),
				WatchDirs:  watch,
				IgnoreFile: cfg.IgnoreFile,
				Logger:     logger,
			}, func() error {
				return buildAll(cfg, logger, appCfg.unsafe, stdout)
			})
		},
	}
	serveCmd.Flags().IntVarP(&appCfg.port, "port", "p", 1313, "port for the development server")

	initCmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Create a new project with stories/, raw/ and a default config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scaffold.CreateNewProject(args[0])
		},
	}

	newCmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a new story file from the archetype",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := appCfg.load(stderr)
			if err != nil {
				return err
			}
			_, err = scaffold.CreateNewStory(cfg, strings.Join(args, " "))
			return err
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, "storyidx version:", Version)
		},
	}

	root.AddCommand(serveCmd, initCmd, newCmd, versionCmd)
	return root
}

// load reads the config file, applies command-line overrides and sets up
// the logger.
func (a *appConfig) load(stderr io.Writer) (config.Config, *slog.Logger, error) {
	logger := setupLogger(a.logLevel, stderr)

	// Only the default config file is optional.
	if a.configSet {
		if _, err := os.Stat(a.configPath); err != nil {
			return config.Config{}, nil, fmt.Errorf("config file %s: %w", a.configPath, err)
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	// Directories given on the command line are relative to the working
	// directory, not to the config file.
	if a.contentDir != "" {
		if cfg.ContentDir, err = filepath.Abs(a.contentDir); err != nil {
			return config.Config{}, nil, err
		}
	}
	if a.rawDir != "" {
		if cfg.RawDir, err = filepath.Abs(a.rawDir); err != nil {
			return config.Config{}, nil, err
		}
	}
	if a.noRaw {
		cfg.Features.RawCompare = false
	}
	if a.noCategories {
		cfg.Features.Categories = false
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger.Debug("configuration loaded",
		"config", a.configPath,
		"content", cfg.ContentPath(),
		"raw", cfg.RawPath(),
		"categories", cfg.Features.Categories,
	)
	return cfg, logger, nil
}

// setupLogger creates an slog.Logger writing to w.
func setupLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

// buildAll writes the index and, when enabled, the usage notes, then prints
// the summary.
func buildAll(cfg config.Config, logger *slog.Logger, unsafe bool, out io.Writer) error {
	fmt.Fprintln(out, "🔍 Story Index Builder")
	fmt.Fprintln(out, "======================")
	fmt.Fprintf(out, "📁 Stories: %s\n", cfg.ContentPath())
	if raw := cfg.RawPath(); raw != "" {
		fmt.Fprintf(out, "📁 Raw: %s\n", raw)
	}

	idx, err := builder.Run(cfg, builder.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	printSummary(out, cfg, idx)

	if cfg.Features.UsageNotes {
		if _, err := scaffold.WriteUsageNotes(cfg, unsafe); err != nil {
			return fmt.Errorf("usage notes failed: %w", err)
		}
		fmt.Fprintln(out, "✅ Usage notes written")
	}
	fmt.Fprintln(out, "\n🎉 Done!")
	return nil
}

func printSummary(out io.Writer, cfg config.Config, idx *builder.Index) {
	fmt.Fprintf(out, "\n✅ Wrote %s\n", cfg.IndexPath())
	fmt.Fprintf(out, "📚 Total: %d stories\n", idx.TotalCount)

	if idx.HasRawSupport {
		fmt.Fprintf(out, "📄 Raw files: %d\n", idx.RawCount)
		fmt.Fprintf(out, "🔄 With raw: %d/%d stories\n", idx.RawSupported(), idx.TotalCount)
	}
	if len(idx.Categories) > 0 {
		fmt.Fprintf(out, "🗂  Series: %d\n", len(idx.Categories))
	}

	if len(idx.Stories) == 0 {
		return
	}
	fmt.Fprintln(out, "\n📖 Stories:")
	for _, s := range idx.Stories {
		desc := s.Description
		if desc == "" {
			desc = s.Size
		}
		var icons string
		if s.HasRaw {
			icons += " 🔄"
		}
		if s.IsLarge {
			icons += " ⚠️"
		}
		fmt.Fprintf(out, "  • %s (%s)%s\n", s.Title, desc, icons)
	}
}
