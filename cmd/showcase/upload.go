package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/ingest"
	"github.com/mesh-intelligence/showcase/internal/slotkey"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

func newUploadCmd(c *cli) *cobra.Command {
	var (
		key     string
		edits   editFlags
		jewelry jewelryFlags
	)
	cmd := &cobra.Command{
		Use:   "upload <section> <file|glob>...",
		Short: "Upload files into a section",
		Long: `Upload validates each file, stores it with the assets driver and writes
its slot. Without --key every file goes to the next free key of the
section. Patterns support ** (e.g. "shoot/**/*.jpg"). Uploads run
concurrently; one failure does not stop the others.`,
		Example: `  showcase upload hero banner.webm --heading "Festive" --cta-link /festive
  showcase upload rings 'shoot/rings/*.jpg' --subtype gold --purity 22k
  showcase upload featured main.png --key featured-main --price 1200`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args[1:])
			if err != nil {
				return err
			}
			e := edits.value()
			if jewelry.attrs.Subtype != "" {
				v, err := jewelry.attrs.Variant()
				if err != nil {
					return err
				}
				e.Jewelry = v
			}

			return c.withApp(cmd.Context(), func(a *app) error {
				keys, err := uploadKeys(cmd, a, args[0], key, len(files))
				if err != nil {
					return err
				}
				reqs := make([]ingest.Request, len(files))
				for i, f := range files {
					reqs[i] = ingest.Request{SectionID: args[0], SlotKey: keys[i], File: f, Edits: e}
				}
				results := a.pipeline.IngestMany(cmd.Context(), reqs)
				return c.reportUploads(cmd, files, results)
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "slot key to write (single file only)")
	edits.register(cmd.Flags())
	jewelry.register(cmd.Flags())
	return cmd
}

// expandFiles resolves every argument as a doublestar pattern and reads the
// matches. A literal path that matches nothing is an error.
func expandFiles(args []string) ([]types.File, error) {
	var paths []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !slices.Contains(paths, m) {
				paths = append(paths, m)
			}
		}
	}

	files := make([]types.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, types.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// uploadKeys picks the target key of every file.
func uploadKeys(cmd *cobra.Command, a *app, sectionID, key string, n int) ([]string, error) {
	sec, ok := a.registry.Section(sectionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrSectionNotFound, sectionID)
	}
	if key != "" {
		if n != 1 {
			return nil, fmt.Errorf("%w: --key takes exactly one file, got %d", types.ErrInvalidID, n)
		}
		if !sec.AllowAdd && len(sec.Keys) > 0 && !slices.Contains(sec.Keys, key) {
			return nil, fmt.Errorf("%w: %s has keys %v", types.ErrInvalidID, sec.ID, sec.Keys)
		}
		return []string{key}, nil
	}
	if !sec.AllowAdd {
		return nil, fmt.Errorf("%w: %s has fixed keys %v, pass --key", types.ErrInvalidID, sec.ID, sec.Keys)
	}
	existing, err := a.records.Keys(cmd.Context(), sec.ID)
	if err != nil {
		return nil, err
	}
	return slotkey.NextKeys(existing, sec.KeyPrefix, n), nil
}

type uploadView struct {
	File    string `json:"file"`
	SlotKey string `json:"slot_key"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c *cli) reportUploads(cmd *cobra.Command, files []types.File, results []ingest.Result) error {
	views := make([]uploadView, len(results))
	var errs []error
	for i, r := range results {
		views[i] = uploadView{File: files[i].Name, SlotKey: r.SlotKey, URL: r.Slot.URL}
		if r.Err != nil {
			views[i].Error = r.Err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", files[i].Name, r.Err))
		}
	}

	if c.flagJSON {
		if err := printJSON(cmd.OutOrStdout(), views); err != nil {
			return err
		}
	} else {
		rows := make([][]string, len(views))
		for i, v := range views {
			status, detail := "ok", v.URL
			if v.Error != "" {
				status, detail = "failed", v.Error
			}
			rows[i] = []string{v.File, v.SlotKey, status, truncate(detail, 70)}
		}
		printTable(cmd.OutOrStdout(), []string{"FILE", "KEY", "STATUS", "DETAIL"}, rows)
	}
	return errors.Join(errs...)
}
