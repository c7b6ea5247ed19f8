package main

import (
	"fmt"
	"time"

	"github.com/amonks/changespec/changespec"
	"github.com/amonks/changespec/internal/editor"
	internalstrings "github.com/amonks/changespec/internal/strings"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a ChangeSpec's parent and description",
	Long: `Edit a ChangeSpec's parent and description.

With --parent or --description the change is applied directly; otherwise
the ChangeSpec is opened in $EDITOR. Status cannot be edited.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editParent      string
	editDescription string
)

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editParent, "parent", "", "Set the parent; --parent= clears it")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "Replace the description")
	addChangeSpecFlagAliases(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}

	cs, err := a.store.Find(args[0])
	if err != nil {
		return err
	}

	fields := editor.Fields{Parent: cs.Parent, Description: cs.Description}
	parentSet := cmd.Flags().Changed("parent")
	descriptionSet := cmd.Flags().Changed("description")
	switch {
	case parentSet || descriptionSet:
		if parentSet {
			fields.Parent = editParent
		}
		if descriptionSet {
			fields.Description = internalstrings.TrimTrailingNewlines(internalstrings.NormalizeNewlines(editDescription))
		}
	case editor.IsInteractive():
		fields, err = editor.EditChangeSpec(cs)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("nothing to edit: pass --parent or --description, or run interactively")
	}

	updated, err := fields.Apply(cs)
	if err != nil {
		return err
	}
	if updated.Parent == cs.Parent && updated.Description == cs.Description {
		fmt.Printf("%s unchanged\n", cs.Name)
		return nil
	}
	updated.UpdatedAt = time.Now()
	if err := a.store.Save(updated); err != nil {
		return err
	}

	fmt.Printf("Updated %s\n", updated.Name)
	if updated.HasParent() {
		all, err := a.store.LoadAll()
		if err != nil {
			return err
		}
		if !changespec.IsEligible(updated, all) {
			fmt.Printf("Waiting on parent %s before checks run\n", updated.Parent)
		}
	}
	return nil
}
