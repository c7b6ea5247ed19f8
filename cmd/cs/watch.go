package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/amonks/changespec/syncer"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync periodically and whenever a project file changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var (
	watchInterval time.Duration
	watchLogFile  string
)

const watchDebounce = 500 * time.Millisecond

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Minute, "Time between sync passes")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "Write logs to this file, rotating it as it grows")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchInterval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}

	var logOut io.Writer = os.Stderr
	if watchLogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   watchLogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		defer rotator.Close()
		logOut = rotator
	}

	a, err := openApp(logOut)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	projectsDir := a.store.Dir()
	if err := os.MkdirAll(projectsDir, 0o755); err != nil {
		return fmt.Errorf("create projects directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(projectsDir); err != nil {
		return fmt.Errorf("watch %s: %w", projectsDir, err)
	}

	return watchLoop(ctx, a.syncer, watcher, a.logger, watchInterval)
}

// watchLoop runs the startup trigger once, then the navigate trigger on
// every tick and after each burst of project file changes.
func watchLoop(ctx context.Context, s *syncer.Syncer, watcher *fsnotify.Watcher, logger *log.Logger, interval time.Duration) error {
	runPass(ctx, s, syncer.TriggerStartup, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Printf("watch stopped")
			return nil

		case <-ticker.C:
			runPass(ctx, s, syncer.TriggerNavigate, logger)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isProjectFileEvent(event) {
				continue
			}
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			runPass(ctx, s, syncer.TriggerNavigate, logger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watcher error: %v", err)
		}
	}
}

func runPass(ctx context.Context, s *syncer.Syncer, trigger syncer.Trigger, logger *log.Logger) {
	report, err := s.RunTrigger(ctx, trigger, time.Now())
	for _, result := range report.Advanced() {
		logger.Printf("%s: %s -> %s", result.Name, result.From, result.To)
	}
	if err != nil {
		logger.Printf("%s sync: %v", trigger, err)
	}
}

func isProjectFileEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".json")
}
