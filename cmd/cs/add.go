package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/changespec/changespec"
	internalstrings "github.com/amonks/changespec/internal/strings"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start tracking a new ChangeSpec",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var (
	addProject     string
	addParent      string
	addStatus      string
	addDescription string
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addProject, "project", "p", "", "Project the change belongs to (required)")
	addCmd.Flags().StringVar(&addParent, "parent", "", "Name of the ChangeSpec this one is stacked on")
	addCmd.Flags().StringVarP(&addStatus, "status", "s", string(changespec.StatusNeedsPresubmits), "Initial status")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Markdown description")
	_ = addCmd.MarkFlagRequired("project")
	addChangeSpecFlagAliases(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}

	status, err := changespec.ParseStatus(addStatus)
	if err != nil {
		return err
	}

	all, err := a.store.LoadAll()
	if err != nil {
		return err
	}
	name := args[0]
	for _, existing := range all {
		if existing.Name == name {
			return fmt.Errorf("%w: %q already tracked in project %s", changespec.ErrDuplicateName, name, existing.Project)
		}
	}

	now := time.Now()
	created := changespec.ChangeSpec{
		Name:        name,
		Project:     addProject,
		Status:      status,
		Parent:      strings.TrimSpace(addParent),
		Description: internalstrings.TrimTrailingNewlines(internalstrings.NormalizeNewlines(addDescription)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.Save(created); err != nil {
		return err
	}

	fmt.Printf("Added %s (%s) to %s\n", created.Name, created.Status.DisplayName(), created.Project)
	if created.HasParent() && !changespec.IsEligible(created, append(all, created)) {
		fmt.Printf("Waiting on parent %s before checks run\n", created.Parent)
	}
	return nil
}
