package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func newFieldValueCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field-value",
		Short: "Set and show custom field values of a slot",
	}
	cmd.AddCommand(newFieldValueSetCmd(c), newFieldValueShowCmd(c))
	return cmd
}

func newFieldValueSetCmd(c *cli) *cobra.Command {
	var visible bool
	cmd := &cobra.Command{
		Use:   "set <section> <slot-key> <field-id> [value]",
		Short: "Set (or with no value, clear) one custom field value",
		Long: `Set records the value of a custom field for one slot. Omitting the value
clears it. Without --visible the field is shown iff it holds a value;
--visible=false hides a value without clearing it.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := types.FieldRef{SectionID: args[0], SlotKey: args[1], FieldID: args[2]}
			value := ""
			if len(args) == 4 {
				value = args[3]
			}
			return c.withApp(cmd.Context(), func(a *app) error {
				if err := a.registry.SetFieldValue(cmd.Context(), ref, value); err != nil {
					return err
				}
				if cmd.Flags().Changed("visible") {
					if err := a.registry.SetFieldVisibility(cmd.Context(), ref, visible); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %q (visible: %s)\n", ref, value, yesNo(a.registry.FieldVisible(ref)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&visible, "visible", true, "explicit visibility of the value")
	return cmd
}

type fieldValueView struct {
	FieldID string `json:"field_id"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Visible bool   `json:"visible"`
}

func newFieldValueShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <section> <slot-key>",
		Short: "Show every custom field of a slot with its value and visibility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				sec, ok := a.registry.Section(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", types.ErrSectionNotFound, args[0])
				}
				defs := a.registry.ListFields(sec.ID)
				views := make([]fieldValueView, 0, len(defs))
				for _, d := range defs {
					ref := types.FieldRef{SectionID: sec.ID, SlotKey: args[1], FieldID: d.ID}
					views = append(views, fieldValueView{
						FieldID: d.ID,
						Label:   d.Label,
						Value:   a.registry.FieldValue(ref),
						Visible: a.registry.FieldVisible(ref),
					})
				}
				if c.flagJSON {
					return printJSON(cmd.OutOrStdout(), views)
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{v.FieldID, v.Label, truncate(v.Value, 40), yesNo(v.Visible)})
				}
				printTable(cmd.OutOrStdout(), []string{"FIELD", "LABEL", "VALUE", "VISIBLE"}, rows)
				return nil
			})
		},
	}
}
