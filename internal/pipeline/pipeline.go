package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/keagan/squatprep/internal/config"
	"github.com/keagan/squatprep/internal/dataset"
	"github.com/keagan/squatprep/internal/ffmpeg"
	"github.com/keagan/squatprep/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pipeline runs the extraction over every video of a catalog
type Pipeline struct {
	logger     zerolog.Logger
	catalog    *config.Catalog
	rawDir     string
	halfWidth  int
	source     VideoSource
	normalizer FrameNormalizer
	writer     Writer
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, cfg *config.Config, catalog *config.Catalog, source VideoSource, normalizer FrameNormalizer, writer Writer) (*Pipeline, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if source == nil || normalizer == nil || writer == nil {
		return nil, fmt.Errorf("video source, normalizer and writer are required")
	}

	return &Pipeline{
		logger:     logger.With().Str("component", "pipeline").Logger(),
		catalog:    catalog,
		rawDir:     cfg.RawDataDir,
		halfWidth:  cfg.FullSquat.FramesEachSide,
		source:     source,
		normalizer: normalizer,
		writer:     writer,
	}, nil
}

// Run extracts every segment of every catalog video. Videos go in catalog
// order and segments in list order; with more than one worker distinct
// videos are processed concurrently. The report is returned even when the
// run fails.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if err := opts.Mode.Validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	began := time.Now()
	report := &Report{RunID: uuid.NewString()}
	logger := p.logger.With().Str("run_id", report.RunID).Logger()

	logger.Info().
		Str("mode", opts.Mode.String()).
		Int("videos", len(p.catalog.Videos)).
		Int("segments", p.catalog.SegmentCount()).
		Int("workers", workers).
		Bool("reset", opts.Reset).
		Msg("starting extraction")

	if opts.Reset {
		for _, part := range opts.Mode.Partitions() {
			if err := p.writer.Reset(part); err != nil {
				return report, err
			}
		}
	}

	extractor := NewExtractor(logger, p.normalizer, p.writer, opts.Mode, opts.KeepOriginal, p.halfWidth)

	videos := make([]VideoReport, len(p.catalog.Videos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, video := range p.catalog.Videos {
		if gctx.Err() != nil {
			break
		}
		i, video := i, video
		g.Go(func() error {
			// an earlier video may have failed while this one waited
			if err := gctx.Err(); err != nil {
				return err
			}
			metrics.ActiveWorkers.Inc()
			defer metrics.ActiveWorkers.Dec()

			vr, err := p.processVideo(gctx, logger, extractor, video)
			videos[i] = vr
			if err == nil {
				return nil
			}

			metrics.VideosFailed.Inc()
			if opts.KeepGoing && ctx.Err() == nil {
				logger.Warn().Err(err).Str("video", video.Name).Msg("video failed, continuing")
				return nil
			}
			return fmt.Errorf("video %s: %w", video.Name, err)
		})
	}

	err := g.Wait()

	for _, vr := range videos {
		if vr.Name != "" {
			report.Videos = append(report.Videos, vr)
		}
	}
	report.Duration = time.Since(began)

	decoded, skipped := report.Frames()
	written := report.Written()
	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.
		Int("videos", len(report.Videos)).
		Int("failed", len(report.Failed())).
		Int("decoded", decoded).
		Int("skipped", skipped).
		Int("sequence", written[dataset.Sequence]).
		Int("full_squat", written[dataset.FullSquat]).
		Dur("took", report.Duration).
		Msg("extraction finished")

	return report, err
}

func (p *Pipeline) processVideo(ctx context.Context, logger zerolog.Logger, extractor *Extractor, video config.Video) (VideoReport, error) {
	vr := VideoReport{Name: video.Name}
	path := filepath.Join(p.rawDir, video.Name)

	capture, err := p.source.Open(ctx, path)
	if err != nil {
		vr.Err = fmt.Errorf("%w: %s: %w", ErrCatalogMismatch, path, err)
		return vr, vr.Err
	}
	defer capture.Close()

	logger.Info().
		Str("video", video.Name).
		Float64("fps", capture.FPS()).
		Int("segments", len(video.Segments)).
		Msg("processing video")

	for idx, seg := range video.Segments {
		prefix := dataset.Prefix{Video: video.Name, Segment: idx, Label: seg.Label}
		sr, err := extractor.Extract(ctx, capture, prefix, seg)
		vr.Segments = append(vr.Segments, sr)
		if err != nil {
			vr.Err = err
			return vr, err
		}
	}

	return vr, nil
}

// FFmpegSource opens videos through the ffmpeg executor
func FFmpegSource(exec *ffmpeg.Executor) VideoSource {
	return ffmpegSource{exec: exec}
}

type ffmpegSource struct {
	exec *ffmpeg.Executor
}

func (s ffmpegSource) Open(ctx context.Context, path string) (Capture, error) {
	c, err := s.exec.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return c, nil
}
