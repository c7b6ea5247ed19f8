// Package listflags holds flags shared by listing commands.
package listflags

import "github.com/spf13/cobra"

// AddAllFlag adds --all, which includes submitted ChangeSpecs that list
// commands hide by default.
func AddAllFlag(cmd *cobra.Command, target *bool) {
	if target == nil {
		cmd.Flags().Bool("all", false, "Include submitted changespecs")
		return
	}
	cmd.Flags().BoolVar(target, "all", false, "Include submitted changespecs")
}
