// Command pixdupe finds duplicate images under a directory by perceptual
// fingerprint and resolves each duplicate group: delete all but one
// survivor (default), or copy survivors into a destination directory
// with --keep.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pixdupe/internal/config"
	"pixdupe/internal/resolve"
	"pixdupe/internal/scan"
)

// Injected at build time via -ldflags; defaults to "dev".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		keepDir    string
		threads    int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "pixdupe [directory]",
		Short: "Find and resolve duplicate images by perceptual fingerprint",
		Long: `pixdupe scans a directory tree for images, computes a 64-bit perceptual
fingerprint for each, and groups images whose fingerprints are identical.

By default every duplicate group is resolved by deleting all members but
one survivor. With --keep, the survivor of each group is instead copied
into the destination directory and the source tree is left untouched.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Root = args[0]
			}
			if cmd.Flags().Changed("keep") {
				cfg.KeepDir = keepDir
			}
			if cmd.Flags().Changed("threads") {
				cfg.Threads = threads
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "pixdupe.yaml", "path to config file (optional)")
	cmd.Flags().StringVarP(&keepDir, "keep", "k", "", "copy survivors into this directory instead of deleting duplicates")
	cmd.Flags().IntVarP(&threads, "threads", "t", config.DefaultThreads, "number of hashing workers")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	// --keep with no value selects the default destination.
	cmd.Flags().Lookup("keep").NoOptDefVal = config.DefaultKeepDir

	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	if err := cfg.Validate(); err != nil {
		return err
	}

	mode := "delete"
	if cfg.KeepDir != "" {
		mode = "keep"
	}
	slog.Info("pixdupe starting",
		"version", version,
		"root", cfg.Root,
		"mode", mode,
		"threads", cfg.Threads)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Scan ───────────────────────────────────────────────────────────────
	progress := &scan.Progress{}
	barDone := startProgressBar(progress)

	res, err := scan.New(cfg.Root, cfg.Threads).Run(ctx, progress)
	barDone()
	if err != nil {
		return fmt.Errorf("scan interrupted, no files were modified: %w", err)
	}

	fmt.Printf("Scanned %d images (%s), found %d duplicate groups\n",
		res.FilesScanned, humanize.Bytes(uint64(res.BytesScanned)), len(res.Groups))

	// ── Resolve ────────────────────────────────────────────────────────────
	var resolver *resolve.Resolver
	if cfg.KeepDir != "" {
		resolver = resolve.NewKeep(afero.NewOsFs(), cfg.KeepDir)
	} else {
		resolver = resolve.NewDelete(afero.NewOsFs())
	}

	outcomes, stats, resErr := resolver.ResolveAll(ctx, res.Groups)

	printSummary(cfg, res, outcomes, stats)

	if resErr != nil {
		unresolved := len(res.Groups) - stats.GroupsResolved
		return fmt.Errorf("interrupted with %d groups unresolved: %w", unresolved, resErr)
	}
	return nil
}

// startProgressBar launches a ticker that mirrors the scan's atomic
// counters into a terminal progress bar. The returned func stops the
// ticker and finishes the bar.
func startProgressBar(p *scan.Progress) func() {
	bar := progressbar.Default(-1, "hashing images")
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if total := p.FilesFound.Load(); total > 0 {
					bar.ChangeMax64(total)
				}
				_ = bar.Set64(p.Hashed.Load() + p.Skipped.Load())
			case <-stop:
				return
			}
		}
	}()
	return func() {
		close(stop)
		<-done
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

// printSummary reports counts, reclaimed space, and every per-file error
// encountered. Per-file errors are informational — they never change the
// exit code.
func printSummary(cfg *config.Config, res *scan.Result, outcomes []resolve.Outcome, stats resolve.Stats) {
	if cfg.KeepDir != "" {
		fmt.Printf("Copied %d survivors to %s\n", stats.FilesCopied, cfg.KeepDir)
	} else {
		fmt.Printf("Deleted %d duplicates, reclaimed %s\n",
			stats.FilesDeleted, humanize.Bytes(uint64(stats.BytesReclaimed)))
	}

	if len(res.Skips) > 0 {
		fmt.Printf("%d files skipped during scanning:\n", len(res.Skips))
		for _, s := range res.Skips {
			fmt.Printf("  %s: %s\n", s.Path, s.Reason)
		}
	}

	errCount := 0
	for _, out := range outcomes {
		for _, pe := range out.Errors {
			if errCount == 0 {
				fmt.Println("Resolution errors:")
			}
			errCount++
			fmt.Printf("  %s\n", pe)
		}
	}
	if errCount > 0 {
		fmt.Printf("%d paths failed to resolve\n", errCount)
	}
}

// parseLogLevel converts a config string ("debug", "info", "warn",
// "error") to its slog.Level equivalent. Unknown values default to Info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
