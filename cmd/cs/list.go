package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/amonks/changespec/changespec"
	"github.com/amonks/changespec/internal/listflags"
	"github.com/amonks/changespec/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked ChangeSpecs",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var (
	listProject string
	listStatus  string
	listJSON    bool
	listAll     bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listProject, "project", "p", "", "Only show ChangeSpecs in this project")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Only show ChangeSpecs with this status")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listflags.AddAllFlag(listCmd, &listAll)
	addChangeSpecFlagAliases(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}

	all, err := a.store.LoadAll()
	if err != nil {
		return err
	}

	var status changespec.Status
	if listStatus != "" {
		status, err = changespec.ParseStatus(listStatus)
		if err != nil {
			return err
		}
	}

	filtered := filterChangeSpecs(all, listProject, status, listAll || status == changespec.StatusSubmitted)
	if listJSON {
		if filtered == nil {
			filtered = []changespec.ChangeSpec{}
		}
		return writeJSON(cmd.OutOrStdout(), filtered)
	}

	if len(filtered) == 0 {
		fmt.Println("No changespecs found.")
		return nil
	}
	// Gating is evaluated against the unfiltered set.
	fmt.Print(formatChangeSpecTable(filtered, changespec.NewIndex(all), a.cache, time.Now()))
	return nil
}

func filterChangeSpecs(all []changespec.ChangeSpec, project string, status changespec.Status, includeSubmitted bool) []changespec.ChangeSpec {
	var filtered []changespec.ChangeSpec
	for _, cs := range all {
		if !includeSubmitted && cs.Status.IsTerminal() {
			continue
		}
		if project != "" && cs.Project != project {
			continue
		}
		if status != "" && cs.Status != status {
			continue
		}
		filtered = append(filtered, cs)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Project != filtered[j].Project {
			return filtered[i].Project < filtered[j].Project
		}
		return filtered[i].Name < filtered[j].Name
	})
	return filtered
}

type lastCheckedLookup interface {
	LastChecked(name string) (time.Time, bool)
}

func formatChangeSpecTable(items []changespec.ChangeSpec, index changespec.Index, cache lastCheckedLookup, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"NAME", "PROJECT", "STATUS", "PARENT", "CHECKED", "UPDATED"}, len(items))
	for _, cs := range items {
		parent := "-"
		if cs.HasParent() {
			parent = cs.Parent
			if !index.IsEligible(cs) {
				parent += " (waiting)"
			}
		}
		checked := "-"
		if cache != nil {
			if last, ok := cache.LastChecked(cs.Name); ok {
				checked = ui.FormatTimeAgo(last, now)
			}
		}
		builder.AddRow([]string{
			ui.TruncateTableCell(cs.Name),
			cs.Project,
			ui.StatusLabel(cs.Status),
			parent,
			checked,
			ui.FormatTimeAgo(cs.UpdatedAt, now),
		})
	}
	return builder.String()
}
