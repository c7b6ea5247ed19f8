package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// changeSpecFlagAliases maps alternate spellings onto ChangeSpec field flags.
var changeSpecFlagAliases = map[string]string{
	"desc":       "description",
	"proj":       "project",
	"stacked-on": "parent",
}

// addChangeSpecFlagAliases installs the aliases whose target flag each
// command defines.
func addChangeSpecFlagAliases(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		aliases := make(map[string]string)
		for alias, target := range changeSpecFlagAliases {
			if cmd.Flags().Lookup(target) != nil {
				aliases[alias] = target
			}
		}
		setFlagAliases(cmd.Flags(), aliases)
	}
}

func setFlagAliases(flags *pflag.FlagSet, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}

	normalize := flags.GetNormalizeFunc()
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if target, ok := aliases[name]; ok {
			name = target
		}
		return normalize(f, name)
	})
}
