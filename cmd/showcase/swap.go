package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/reorder"
)

func newSwapCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "swap <section> <source-key> <target-key>",
		Short: "Exchange two slots, or move a slot to an empty key",
		Long: `Swap drops the slot at source-key onto target-key. When both keys hold
content they exchange payloads. When only the source does, its content is
written to the target and the source is deleted; if the delete fails both
keys hold the same content and the command exits with status 2.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, source, target := args[0], args[1], args[2]
			return c.withApp(cmd.Context(), func(a *app) error {
				engine := a.reorderEngine()
				if err := engine.Load(cmd.Context(), section); err != nil {
					return err
				}
				engine.Start(section, source)
				outcome, err := engine.Drop(cmd.Context(), target)

				if c.flagJSON {
					if perr := printJSON(cmd.OutOrStdout(), outcome); perr != nil {
						return perr
					}
				} else {
					printOutcome(cmd, outcome)
				}
				return err
			})
		},
	}
}

func printOutcome(cmd *cobra.Command, o reorder.Outcome) {
	out := cmd.OutOrStdout()
	switch o.Result {
	case reorder.NoOp:
		fmt.Fprintf(out, "Nothing to do for %s -> %s\n", o.Source, o.Target)
	case reorder.SwappedOK:
		fmt.Fprintf(out, "Swapped %s/%s and %s/%s\n", o.SectionID, o.Source, o.SectionID, o.Target)
	case reorder.MovedOK:
		fmt.Fprintf(out, "Moved %s/%s to %s/%s\n", o.SectionID, o.Source, o.SectionID, o.Target)
	default:
		fmt.Fprintf(out, "Failed %s -> %s\n", o.Source, o.Target)
	}
	if o.Duplicate {
		fmt.Fprintf(out, "Warning: %s and %s now hold the same content; delete one of them\n", o.Source, o.Target)
	}
}
