package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/changespec/changespec"
	"github.com/amonks/changespec/internal/markdown"
	internalstrings "github.com/amonks/changespec/internal/strings"
	"github.com/amonks/changespec/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one ChangeSpec",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showJSON bool

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}

	all, err := a.store.LoadAll()
	if err != nil {
		return err
	}
	index := changespec.NewIndex(all)
	cs, ok := index[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", changespec.ErrNotFound, args[0])
	}

	if showJSON {
		return writeJSON(cmd.OutOrStdout(), cs)
	}

	fmt.Print(formatChangeSpecDetail(cs, index, a.cache, ui.TerminalWidth(), time.Now()))
	return nil
}

func formatChangeSpecDetail(cs changespec.ChangeSpec, index changespec.Index, cache lastCheckedLookup, width int, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", ui.Heading(cs.Name))
	fmt.Fprintf(&b, "Project:  %s\n", cs.Project)
	fmt.Fprintf(&b, "Status:   %s\n", ui.StatusLabel(cs.Status))
	if cs.HasParent() {
		parent, ok := index.Parent(cs)
		switch {
		case !ok:
			fmt.Fprintf(&b, "Parent:   %s (missing)\n", cs.Parent)
		case parent.Status == changespec.StatusSubmitted:
			fmt.Fprintf(&b, "Parent:   %s\n", cs.Parent)
		default:
			fmt.Fprintf(&b, "Parent:   %s (waiting, %s)\n", cs.Parent, parent.Status.DisplayName())
		}
	}
	if cs.PresubmitOutputPath != "" {
		fmt.Fprintf(&b, "Output:   %s\n", cs.PresubmitOutputPath)
	}
	if cache != nil {
		if last, ok := cache.LastChecked(cs.Name); ok {
			fmt.Fprintf(&b, "Checked:  %s\n", ui.FormatTimeAgo(last, now))
		}
	}
	fmt.Fprintf(&b, "Created:  %s\n", ui.FormatTimeAgo(cs.CreatedAt, now))
	fmt.Fprintf(&b, "Updated:  %s\n", ui.FormatTimeAgo(cs.UpdatedAt, now))

	if !internalstrings.IsBlank(cs.Description) {
		b.WriteString("\n")
		b.Write(markdown.SafeRender(width, 2, []byte(cs.Description)))
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
