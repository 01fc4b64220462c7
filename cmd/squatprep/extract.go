package main

import (
	"context"
	"fmt"
	"time"

	"github.com/keagan/squatprep/internal/config"
	"github.com/keagan/squatprep/internal/dataset"
	"github.com/keagan/squatprep/internal/ffmpeg"
	"github.com/keagan/squatprep/internal/metrics"
	"github.com/keagan/squatprep/internal/normalize"
	"github.com/keagan/squatprep/internal/pipeline"
	"github.com/keagan/squatprep/internal/pose"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var extractFlags struct {
	sequence  bool
	fullSquat bool
	original  bool
	reset     bool
	keepGoing bool
	workers   int
	noPose    bool
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract labeled frames for every catalog repetition",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		var partitions []string
		if extractFlags.sequence {
			partitions = append(partitions, string(dataset.Sequence))
		}
		if extractFlags.fullSquat {
			partitions = append(partitions, string(dataset.FullSquat))
		}
		mode, err := dataset.ParseMode(partitions)
		if err != nil {
			return fmt.Errorf("%w: pass --sequence and/or --full-squat", err)
		}

		catalog, err := config.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return err
		}

		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
		if err != nil {
			return fmt.Errorf("failed to initialize ffmpeg: %w", err)
		}

		estimator, err := newEstimator(cfg, extractFlags.noPose)
		if err != nil {
			return err
		}
		defer estimator.Close()

		renderer := pose.NewRenderer(cfg.Pose.LineWidth, cfg.Pose.JointRadius, cfg.Pose.ScoreThreshold)
		normalizer, err := normalize.New(cfg.Image.Width, cfg.Image.Height, estimator, renderer)
		if err != nil {
			return err
		}

		store, err := dataset.NewStore(log.Logger, map[dataset.Partition]string{
			dataset.Sequence:  cfg.Output.SequenceDir,
			dataset.FullSquat: cfg.Output.FullSquatDir,
		}, cfg.Image.JPEGQuality)
		if err != nil {
			return err
		}

		pipe, err := pipeline.New(log.Logger, cfg, catalog, pipeline.FFmpegSource(exec), normalizer, store)
		if err != nil {
			return err
		}

		if cfg.MetricsAddr != "" {
			srv := metrics.StartMetricsServer(cfg.MetricsAddr, log.Logger)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}()
		}

		workers := extractFlags.workers
		if workers == 0 {
			workers = cfg.Concurrency
		}

		report, err := pipe.Run(cmd.Context(), pipeline.RunOptions{
			Mode:         mode,
			Reset:        extractFlags.reset,
			KeepOriginal: extractFlags.original,
			KeepGoing:    extractFlags.keepGoing,
			Workers:      workers,
		})
		if err != nil {
			return err
		}

		written := report.Written()
		decoded, skipped := report.Frames()
		log.Info().
			Str("run_id", report.RunID).
			Int("sequence", written[dataset.Sequence]).
			Int("full_squat", written[dataset.FullSquat]).
			Int("decoded", decoded).
			Int("skipped", skipped).
			Int("failed_videos", len(report.Failed())).
			Msg("extraction complete")

		return nil
	},
}

func newEstimator(cfg *config.Config, noPose bool) (pose.Estimator, error) {
	if noPose {
		log.Warn().Msg("pose estimation disabled, skeleton overlays will be empty")
		return &pose.Static{}, nil
	}
	return pose.NewONNXEstimator(log.Logger, pose.ONNXConfig{
		ModelPath:         cfg.Pose.ModelPath,
		SharedLibraryPath: cfg.Pose.SharedLibraryPath,
		InputSize:         cfg.Pose.InputSize,
		InputType:         cfg.Pose.InputType,
		InputName:         cfg.Pose.InputName,
		OutputName:        cfg.Pose.OutputName,
		ScoreThreshold:    cfg.Pose.ScoreThreshold,
	})
}

func init() {
	f := extractCmd.Flags()
	f.BoolVar(&extractFlags.sequence, "sequence", false, "write every frame of each repetition")
	f.BoolVar(&extractFlags.fullSquat, "full-squat", false, "write the frames around the deepest point")
	f.BoolVar(&extractFlags.original, "original", false, "draw skeletons on the frame instead of a black canvas")
	f.BoolVar(&extractFlags.reset, "reset", false, "empty the selected output folders first")
	f.BoolVar(&extractFlags.keepGoing, "keep-going", false, "log failed videos and continue")
	f.IntVar(&extractFlags.workers, "workers", 0, "videos processed at once (default: config concurrency)")
	f.BoolVar(&extractFlags.noPose, "no-pose", false, "skip pose estimation")
}
