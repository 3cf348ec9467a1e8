package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

func newSectionCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "List, create and delete sections",
	}
	cmd.AddCommand(newSectionListCmd(c), newSectionCreateCmd(c), newSectionDeleteCmd(c))
	return cmd
}

func newSectionListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and user-created sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				sections := a.registry.ListSections()
				if c.flagJSON {
					return printJSON(cmd.OutOrStdout(), sections)
				}
				rows := make([][]string, 0, len(sections))
				for _, s := range sections {
					rows = append(rows, []string{
						s.ID, s.DisplayName, s.KeyPrefix, strconv.Itoa(s.DefaultSlotCount), yesNo(s.BuiltIn), capabilities(s),
					})
				}
				printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "PREFIX", "SLOTS", "BUILTIN", "FIELDS"}, rows)
				return nil
			})
		},
	}
}

func capabilities(s types.Section) string {
	var caps []string
	if s.HasHeroFields {
		caps = append(caps, "hero")
	}
	if s.HasProductFields {
		caps = append(caps, "product")
	}
	if s.HasJewelryFields {
		caps = append(caps, "jewelry")
	}
	if s.UserCreated() {
		caps = append(caps, "custom")
	}
	if len(caps) == 0 {
		return "-"
	}
	return strings.Join(caps, ",")
}

func newSectionCreateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name...>",
		Short: "Create a section; its ID is the slug of the name",
		Example: `  showcase section create "Festive   Picks!!"
  # -> festive-picks`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				sec, err := a.registry.CreateSection(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if c.flagJSON {
					return printJSON(cmd.OutOrStdout(), sec)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created section %s (%s)\n", sec.ID, sec.DisplayName)
				return nil
			})
		},
	}
}

func newSectionDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user-created section and its custom fields",
		Long: `Delete removes a user-created section with its field definitions, values
and visibility flags. Slots already stored under the section are left in
place. Built-in and unknown IDs are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				id := args[0]
				sec, ok := a.registry.Section(id)
				if err := a.registry.DeleteSection(cmd.Context(), id, nil); err != nil {
					return err
				}
				switch {
				case !ok:
					fmt.Fprintf(cmd.OutOrStdout(), "No section %s\n", id)
				case sec.BuiltIn:
					fmt.Fprintf(cmd.OutOrStdout(), "Section %s is built in and was kept\n", id)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted section %s\n", id)
				}
				return nil
			})
		},
	}
}
