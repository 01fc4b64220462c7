package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/keagan/squatprep/internal/config"
	"github.com/keagan/squatprep/internal/dataset"
	"github.com/keagan/squatprep/internal/ffmpeg"
	"github.com/keagan/squatprep/internal/frames"
	"github.com/keagan/squatprep/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels [dir]",
	Short: "Count the labeled images of a partition folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		dir := cfg.Output.FullSquatDir
		if len(args) == 1 {
			dir = args[0]
		}

		entries, err := dataset.Scan(dir)
		if err != nil {
			return err
		}
		sum := dataset.Summarize(entries)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d images, %d videos, %d repetitions\n", dir, sum.Total, sum.Videos, sum.Segments)
		for _, label := range sum.Labels() {
			fmt.Fprintf(out, "  label %d: %d\n", label, sum.ByLabel[label])
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the frame ranges each catalog repetition maps to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		catalog, err := config.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return err
		}

		// probing is optional; without ffmpeg only the seconds are shown
		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
		if err != nil {
			log.Warn().Err(err).Msg("ffmpeg unavailable, frame indices omitted")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VIDEO\tSEG\tLABEL\tSTART\tMID\tEND\tFPS\tFRAMES\tFULL SQUAT")

		for _, video := range catalog.Videos {
			fps := 0.0
			if exec != nil {
				info, err := exec.ProbeVideo(cmd.Context(), cfg.VideoPath(video.Name))
				if err != nil {
					log.Warn().Err(err).Str("video", video.Name).Msg("probe failed")
				} else {
					fps = info.FPS
				}
			}

			for idx, seg := range video.Segments {
				start, mid, end, err := seg.Seconds()
				if err != nil {
					return err
				}

				framesCol, windowCol := "-", "-"
				if fps > 0 {
					r := frames.Index(fps, start, mid, end, cfg.FullSquat.FramesEachSide)
					framesCol = fmt.Sprintf("%d-%d (mid %d)", r.Start, r.End, r.Mid)
					if lo, hi, ok := r.ClippedWindow(); ok {
						windowCol = fmt.Sprintf("%d-%d", lo, hi)
					}
				}

				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%.3f\t%s\t%s\n",
					video.Name, idx, seg.Label,
					util.FormatSeconds(start), util.FormatSeconds(mid), util.FormatSeconds(end),
					fps, framesCol, windowCol)
			}
		}

		return w.Flush()
	},
}
