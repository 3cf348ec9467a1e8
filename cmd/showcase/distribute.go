package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/distribute"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

func newDistributeCmd(c *cli) *cobra.Command {
	var (
		targets []string
		edits   editFlags
		jewelry jewelryFlags
	)
	cmd := &cobra.Command{
		Use:   "distribute <file>",
		Short: "Upload one file into the next free slot of several sections",
		Long: `Distribute ingests the same file into every --to section with one shared
jewelry attribute bundle. Only the sub-bundle selected by --subtype is
written. Targets succeed or fail independently. A target must be a section
that grows and carries jewelry attributes; any other section fails.`,
		Example: `  showcase distribute ring.jpg --to rings,earrings --jewelry-type ring \
    --category bridal --subtype diamond --carat 1.2 --clarity VS1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}
			if len(files) != 1 {
				return fmt.Errorf("%w: distribute takes one file, %q matches %d", types.ErrInvalidID, args[0], len(files))
			}

			job := distribute.Job{
				File:    files[0],
				Targets: targets,
				Shared:  jewelry.shared(edits.value()),
			}
			return c.withApp(cmd.Context(), func(a *app) error {
				results, err := a.fanOut().Distribute(cmd.Context(), job)
				if err != nil {
					return err
				}
				return c.reportDistribution(cmd, results)
			})
		},
	}
	cmd.Flags().StringSliceVar(&targets, "to", nil, "target section IDs, comma separated")
	edits.register(cmd.Flags())
	jewelry.register(cmd.Flags())
	return cmd
}

type distributionView struct {
	Section string `json:"section"`
	SlotKey string `json:"slot_key,omitempty"`
	Status  string `json:"status"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c *cli) reportDistribution(cmd *cobra.Command, results []distribute.Result) error {
	views := make([]distributionView, len(results))
	var errs []error
	for i, r := range results {
		views[i] = distributionView{Section: r.SectionID, SlotKey: r.SlotKey, Status: string(r.Status), URL: r.Slot.URL}
		if r.Err != nil {
			views[i].Error = r.Err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", r.SectionID, r.Err))
		}
	}

	if c.flagJSON {
		if err := printJSON(cmd.OutOrStdout(), views); err != nil {
			return err
		}
	} else {
		rows := make([][]string, len(views))
		for i, v := range views {
			detail := v.URL
			if v.Error != "" {
				detail = v.Error
			}
			rows[i] = []string{v.Section, v.SlotKey, v.Status, truncate(detail, 70)}
		}
		printTable(cmd.OutOrStdout(), []string{"SECTION", "KEY", "STATUS", "DETAIL"}, rows)
	}
	return errors.Join(errs...)
}
