package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/quality"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

func newQualityCmd() *cobra.Command {
	var (
		csvPath string
		minimum string
	)

	cmd := &cobra.Command{
		Use:   "quality [root...]",
		Short: "Rate every video by resolution and codec",
		Long: `List every video worst first with its quality color:

  BLUE    2160p or above
  GREEN   1080p or above with a modern codec (x265/HEVC/AV1)
  YELLOW  one of the two
  RED     neither

Examples:
  jellytidy quality /srv/media
  jellytidy quality /srv/media --below GREEN
  jellytidy quality /srv/media --csv quality.csv`,
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

			primaries := analysis.ByQuality()
			if minimum != "" {
				primaries = below(primaries, minimum)
			}

			if csvPath != "" {
				if err := writeQualityCSVFile(csvPath, primaries); err != nil {
					return err
				}
				ui.SuccessMsg("Wrote %d rows to %s", len(primaries), csvPath)
				return nil
			}

			ui.Section("Quality")
			tbl := ui.NewTable("Color", "Resolution", "Codec", "Source", "Size", "Path").
				SetAlign(ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignRight)
			for _, p := range primaries {
				tbl.AddRow(
					ui.QualityColor(p.Info.Color.String()),
					orDash(p.Info.Resolution()),
					orDash(p.Info.CodecName),
					orDash(sourceName(p)),
					ui.FormatBytes(p.Size),
					p.Path,
				)
			}
			tbl.Print()

			totals := ui.NewTable("Color", "Files", "Size").SetAlign(ui.AlignLeft, ui.AlignRight, ui.AlignRight)
			var count int
			var bytes int64
			for _, t := range analysis.ColorTotals() {
				totals.AddRow(ui.QualityColor(t.Color.String()), ui.FormatCount(t.Count), ui.FormatBytes(t.Bytes))
				count += t.Count
				bytes += t.Bytes
			}
			totals.SetFooter("Total", ui.FormatCount(count), ui.FormatBytes(bytes))
			totals.Print()
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "write the report as CSV instead of a table")
	cmd.Flags().StringVar(&minimum, "below", "", "only list videos rated below this color (YELLOW, GREEN, BLUE)")

	return cmd
}

func below(primaries []plans.Primary, color string) []plans.Primary {
	limit := quality.ParseColor(color)
	var out []plans.Primary
	for _, p := range primaries {
		if p.Info.Color < limit {
			out = append(out, p)
		}
	}
	return out
}

var qualityHeader = []string{"path", "color", "resolution", "tier", "codec", "source", "edition", "size", "score"}

func writeQualityCSVFile(path string, primaries []plans.Primary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeQualityCSV(f, primaries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeQualityCSV(w io.Writer, primaries []plans.Primary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(qualityHeader); err != nil {
		return err
	}
	for _, p := range primaries {
		md := quality.Flatten(p.Info, p.Size, p.IsEpisode())
		row := []string{
			p.Path,
			md.Color,
			md.Resolution,
			md.Tier,
			md.Codec,
			md.Source,
			p.Info.Edition,
			strconv.FormatInt(p.Size, 10),
			strconv.Itoa(md.Score),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sourceName(p plans.Primary) string {
	if p.Info.Source == quality.SourceUnknown {
		return ""
	}
	return p.Info.Source.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
