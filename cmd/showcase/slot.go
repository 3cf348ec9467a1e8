package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/slotkey"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

func newSlotCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Inspect and delete the slots of a section",
	}
	cmd.AddCommand(newSlotListCmd(c), newSlotKeysCmd(c), newSlotDeleteCmd(c))
	return cmd
}

func newSlotListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list <section>",
		Short: "List the stored slots of a section in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				slots, err := a.records.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if c.flagJSON {
					return printJSON(cmd.OutOrStdout(), slots)
				}
				if len(slots) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No slots found.")
					return nil
				}
				rows := make([][]string, 0, len(slots))
				for _, s := range slots {
					rows = append(rows, []string{
						s.SlotKey, string(s.Kind), truncate(s.Title, 30), truncate(s.URL, 60), s.UpdatedAt.Format("2006-01-02 15:04"),
					})
				}
				printTable(cmd.OutOrStdout(), []string{"KEY", "KIND", "TITLE", "URL", "UPDATED"}, rows)
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d slot(s)\n", len(slots))
				return nil
			})
		},
	}
}

type keysView struct {
	Section     string   `json:"section"`
	Addressable []string `json:"addressable"`
	Next        []string `json:"next,omitempty"`
}

func newSlotKeysCmd(c *cli) *cobra.Command {
	var next int
	cmd := &cobra.Command{
		Use:   "keys <section>",
		Short: "Show the keys a section presents and the next free keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				sec, ok := a.registry.Section(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", types.ErrSectionNotFound, args[0])
				}
				existing, err := a.records.Keys(cmd.Context(), sec.ID)
				if err != nil {
					return err
				}
				view := keysView{Section: sec.ID, Addressable: slotkey.Addressable(sec, existing)}
				if next > 0 && sec.AllowAdd {
					view.Next = slotkey.NextKeys(existing, sec.KeyPrefix, next)
				}
				if c.flagJSON {
					return printJSON(cmd.OutOrStdout(), view)
				}
				for _, k := range view.Addressable {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				for _, k := range view.Next {
					fmt.Fprintln(cmd.OutOrStdout(), k, "(next)")
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&next, "next", 0, "also print this many fresh keys")
	return cmd
}

func newSlotDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <section> <key>",
		Short: "Delete the slot at a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				if err := a.records.Delete(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", args[0], args[1])
				return nil
			})
		},
	}
}
