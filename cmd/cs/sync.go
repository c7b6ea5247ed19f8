package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/amonks/changespec/changespec"
	"github.com/amonks/changespec/syncer"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [name]",
	Short: "Poll external checks and advance ChangeSpecs",
	Long: `Poll external checks and advance ChangeSpecs.

Without a name, every ChangeSpec is considered. Checks already run within the
throttle window are skipped unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

var (
	syncForce bool
	syncReset bool
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Ignore the throttle window")
	syncCmd.Flags().BoolVar(&syncReset, "reset", false, "Forget when the named ChangeSpec was last checked")
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now()

	if len(args) == 0 {
		if syncReset {
			return fmt.Errorf("--reset requires a changespec name")
		}
		trigger := syncer.TriggerStartup
		if syncForce {
			trigger = syncer.TriggerManual
		}
		report, err := a.syncer.RunTrigger(ctx, trigger, now)
		printSyncReport(os.Stdout, report)
		return err
	}

	name := args[0]
	if syncReset {
		if err := a.cache.Forget(name); err != nil {
			return err
		}
	}

	all, err := a.store.LoadAll()
	if err != nil {
		return err
	}
	cs, ok := changespec.NewIndex(all)[name]
	if !ok {
		return fmt.Errorf("%w: %s", changespec.ErrNotFound, name)
	}
	result, err := a.syncer.SyncOne(ctx, cs, all, now, syncForce)
	if err != nil {
		result.Err = err
	}
	printSyncReport(os.Stdout, syncer.Report{StartedAt: now, Forced: syncForce, Results: []syncer.Result{result}})
	return err
}

func printSyncReport(w io.Writer, report syncer.Report) {
	for _, result := range report.Advanced() {
		fmt.Fprintf(w, "%s: %s -> %s\n", result.Name, result.From.DisplayName(), result.To.DisplayName())
	}
	for _, result := range report.Failed() {
		err := result.Err
		if err == nil {
			err = result.CheckErr
		}
		fmt.Fprintf(w, "%s: %v\n", result.Name, err)
	}

	checked := len(report.Checked())
	throttled := report.Count(syncer.SkipThrottled)
	waiting := report.Count(syncer.SkipIneligible)
	fmt.Fprintf(w, "checked %d, advanced %d", checked, len(report.Advanced()))
	if throttled > 0 {
		fmt.Fprintf(w, ", throttled %d", throttled)
	}
	if waiting > 0 {
		fmt.Fprintf(w, ", waiting on parent %d", waiting)
	}
	fmt.Fprintln(w)
}
