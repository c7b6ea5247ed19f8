package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amonks/changespec/changespec"
	"github.com/spf13/cobra"
)

var advanceCmd = &cobra.Command{
	Use:       "advance <name> qa|mailed",
	Short:     "Record a completed QA or mailing step",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"qa", "mailed"},
	RunE:      runAdvance,
}

func init() {
	rootCmd.AddCommand(advanceCmd)
}

func runAdvance(cmd *cobra.Command, args []string) error {
	event, err := parseAdvanceStep(args[1])
	if err != nil {
		return err
	}

	a, err := openApp(nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	updated, err := a.syncer.Advance(ctx, args[0], event, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", updated.Name, updated.Status.DisplayName())
	return nil
}

func parseAdvanceStep(step string) (changespec.Event, error) {
	switch strings.ToLower(strings.TrimSpace(step)) {
	case "qa":
		return changespec.QACompletedEvent{}, nil
	case "mailed", "mail":
		return changespec.MailedEvent{}, nil
	default:
		return nil, fmt.Errorf("unknown step %q (want qa or mailed)", step)
	}
}
