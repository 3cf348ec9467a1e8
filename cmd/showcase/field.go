package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func newFieldCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Manage custom field definitions of a user-created section",
	}
	cmd.AddCommand(
		newFieldListCmd(c),
		newFieldAddCmd(c),
		newFieldUpdateCmd(c),
		newFieldRemoveCmd(c),
		newFieldMoveCmd(c),
	)
	return cmd
}

func (c *cli) printFields(cmd *cobra.Command, defs []types.CustomFieldDefinition) error {
	if c.flagJSON {
		return printJSON(cmd.OutOrStdout(), defs)
	}
	rows := make([][]string, 0, len(defs))
	for i, d := range defs {
		rows = append(rows, []string{strconv.Itoa(i), d.ID, d.Label, d.Type, strings.Join(d.Options, ",")})
	}
	printTable(cmd.OutOrStdout(), []string{"#", "ID", "LABEL", "TYPE", "OPTIONS"}, rows)
	return nil
}

func newFieldListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list <section>",
		Short: "List the field definitions of a section in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				if _, ok := a.registry.Section(args[0]); !ok {
					return fmt.Errorf("%w: %s", types.ErrSectionNotFound, args[0])
				}
				return c.printFields(cmd, a.registry.ListFields(args[0]))
			})
		},
	}
}

func newFieldAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <section> <text|dropdown>",
		Short: "Append a field with the default label for its type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				def, err := a.registry.AddField(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return c.printFields(cmd, []types.CustomFieldDefinition{def})
			})
		},
	}
}

func newFieldUpdateCmd(c *cli) *cobra.Command {
	var (
		label   string
		typ     string
		options []string
	)
	cmd := &cobra.Command{
		Use:   "update <section> <field-id>",
		Short: "Change the label, type or dropdown options of a field",
		Long: `Update patches a field definition. Changing the type resets the options
to the defaults of the new type; --options applies to dropdown fields only.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch types.FieldPatch
			if cmd.Flags().Changed("label") {
				patch.Label = &label
			}
			if cmd.Flags().Changed("type") {
				patch.Type = &typ
			}
			if cmd.Flags().Changed("options") {
				patch.Options = options
			}
			return c.withApp(cmd.Context(), func(a *app) error {
				def, err := a.registry.UpdateField(cmd.Context(), args[0], args[1], patch)
				if err != nil {
					return err
				}
				return c.printFields(cmd, []types.CustomFieldDefinition{def})
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "new label")
	cmd.Flags().StringVar(&typ, "type", "", "new type (text, dropdown)")
	cmd.Flags().StringSliceVar(&options, "options", nil, "dropdown options, comma separated")
	return cmd
}

func newFieldRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <section> <field-id>",
		Short: "Remove a field definition; stored values are kept but ignored",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				if err := a.registry.RemoveField(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed field %s from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newFieldMoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "move <section> <from> <to>",
		Short: "Move a field from one position to another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: from %q", types.ErrInvalidIndex, args[1])
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("%w: to %q", types.ErrInvalidIndex, args[2])
			}
			return c.withApp(cmd.Context(), func(a *app) error {
				if err := a.registry.ReorderFields(cmd.Context(), args[0], from, to); err != nil {
					return err
				}
				return c.printFields(cmd, a.registry.ListFields(args[0]))
			})
		},
	}
}
