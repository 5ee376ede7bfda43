package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/duplicates"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

func newDuplicatesCmd() *cobra.Command {
	var exactOnly bool

	cmd := &cobra.Command{
		Use:     "duplicates [root...]",
		Aliases: []string{"dupes"},
		Short:   "List titles that exist more than once",
		Long: `Group videos by title and year (or show, season and episode) and list
every group with more than one copy.

Exact copies (same name once " (1)" and " copy" are stripped, same size) are
planned for deletion, keeping the first. Other copies are alternate versions
and are kept under names tagged with edition, resolution and source.

Examples:
  jellytidy duplicates /srv/media
  jellytidy duplicates /srv/media --exact`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			roots, err := a.roots(args)
			if err != nil {
				return err
			}
			analysis, err := a.analyze(cmd.Context(), roots, "")
			if err != nil {
				return err
			}

			groups := analysis.Duplicates
			if exactOnly {
				groups = withExact(groups)
			}
			if len(groups) == 0 {
				ui.SuccessMsg("No duplicates found")
				return nil
			}

			ui.Section(fmt.Sprintf("Duplicates (%d titles)", len(groups)))
			for _, g := range groups {
				printGroup(g)
			}

			fmt.Println()
			fmt.Print(ui.KeyValues([][2]string{
				{"Titles", ui.FormatCount(len(groups))},
				{"Copies to delete", ui.FormatCount(deletedCount(groups))},
				{"Reclaimable", ui.FormatBytes(analysis.ReclaimableBytes())},
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&exactOnly, "exact", false, "only groups that contain exact copies")

	return cmd
}

func printGroup(g duplicates.Group) {
	title := g.Key.String()
	if g.Tagged {
		title += ui.Dim("  (alternate versions)")
	}
	ui.Subsection(title)

	tbl := ui.NewTable("Status", "Color", "Version", "Size", "Path").
		SetAlign(ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignRight)
	for _, c := range g.Members {
		status := ui.Success("keep")
		if g.IsDeleted(c.ID) {
			status = ui.Error("delete")
		}
		tbl.AddRow(status, ui.QualityColor(c.Info.Color.String()), orDash(c.Info.VersionTag()), ui.FormatBytes(c.Size), c.Path)
	}
	tbl.Print()
}

func withExact(groups []duplicates.Group) []duplicates.Group {
	var out []duplicates.Group
	for _, g := range groups {
		if len(g.Exact) > 0 {
			out = append(out, g)
		}
	}
	return out
}

func deletedCount(groups []duplicates.Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Deleted())
	}
	return n
}
