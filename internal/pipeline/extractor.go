package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/keagan/squatprep/internal/config"
	"github.com/keagan/squatprep/internal/dataset"
	"github.com/keagan/squatprep/internal/frames"
	"github.com/keagan/squatprep/internal/metrics"
	"github.com/rs/zerolog"
)

// Extractor writes the frames of one repetition into the selected
// partitions.
type Extractor struct {
	logger       zerolog.Logger
	normalizer   FrameNormalizer
	writer       Writer
	mode         dataset.Mode
	keepOriginal bool
	halfWidth    int
}

// NewExtractor returns an extractor keeping halfWidth frames on each side of
// the deepest point for the full-squat partition.
func NewExtractor(logger zerolog.Logger, normalizer FrameNormalizer, writer Writer, mode dataset.Mode, keepOriginal bool, halfWidth int) *Extractor {
	return &Extractor{
		logger:       logger.With().Str("component", "extractor").Logger(),
		normalizer:   normalizer,
		writer:       writer,
		mode:         mode,
		keepOriginal: keepOriginal,
		halfWidth:    halfWidth,
	}
}

// Extract reads frames StartFrame..EndFrame of seg from capture. Frames that
// fail to decode are counted and skipped. A frame no selected partition
// wants is read but never normalized.
func (e *Extractor) Extract(ctx context.Context, capture Capture, prefix dataset.Prefix, seg config.Segment) (SegmentReport, error) {
	began := time.Now()
	report := SegmentReport{
		Prefix:  prefix,
		Written: make(map[dataset.Partition]int),
	}

	start, mid, end, err := seg.Seconds()
	if err != nil {
		return report, fmt.Errorf("segment %s: %w", prefix, err)
	}

	r := frames.Index(capture.FPS(), start, mid, end, e.halfWidth)
	report.Range = r

	if err := capture.Seek(r.Start); err != nil {
		return report, fmt.Errorf("segment %s: seek to frame %d: %w", prefix, r.Start, err)
	}

	wantSequence := e.mode.Has(dataset.Sequence)
	wantFullSquat := e.mode.Has(dataset.FullSquat)

	for i := 0; i <= r.Last(); i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		frame := capture.Read()
		if !frame.OK() {
			report.Skipped++
			metrics.FramesSkipped.Inc()
			e.logger.Debug().
				Str("segment", prefix.String()).
				Int("local", i).
				Int("frame", r.Start+i).
				AnErr("reason", frame.Err).
				Msg("frame skipped")
			continue
		}
		report.Decoded++
		metrics.FramesDecoded.Inc()

		toSequence := wantSequence
		toFullSquat := wantFullSquat && r.InWindow(i)
		if !toSequence && !toFullSquat {
			continue
		}

		img, err := e.normalizer.Normalize(ctx, frame.Image, e.keepOriginal)
		if err != nil {
			return report, fmt.Errorf("segment %s frame %d: normalize: %w", prefix, i, err)
		}

		name := dataset.ArtifactName(prefix, i)
		if toSequence {
			if err := e.writer.Write(dataset.Sequence, name, img); err != nil {
				return report, err
			}
			report.Written[dataset.Sequence]++
		}
		if toFullSquat {
			if err := e.writer.Write(dataset.FullSquat, name, img); err != nil {
				return report, err
			}
			report.Written[dataset.FullSquat]++
		}
	}

	report.Duration = time.Since(began)
	metrics.SegmentsProcessed.Inc()
	metrics.SegmentDuration.Observe(report.Duration.Seconds())

	e.logger.Info().
		Str("segment", prefix.String()).
		Int("start_frame", r.Start).
		Int("end_frame", r.End).
		Int("decoded", report.Decoded).
		Int("skipped", report.Skipped).
		Int("sequence", report.Written[dataset.Sequence]).
		Int("full_squat", report.Written[dataset.FullSquat]).
		Dur("took", report.Duration).
		Msg("segment extracted")

	return report, nil
}
