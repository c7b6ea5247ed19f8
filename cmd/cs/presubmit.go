package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var presubmitCmd = &cobra.Command{
	Use:   "presubmit <name>",
	Short: "Launch the presubmit for a ChangeSpec in the background",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresubmit,
}

func init() {
	rootCmd.AddCommand(presubmitCmd)
}

func runPresubmit(cmd *cobra.Command, args []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	updated, err := a.syncer.StartPresubmit(ctx, args[0], time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", updated.Name, updated.Status.DisplayName())
	fmt.Printf("Output: %s\n", updated.PresubmitOutputPath)
	return nil
}
