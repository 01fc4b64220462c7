package pipeline

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/keagan/squatprep/internal/dataset"
	"github.com/keagan/squatprep/internal/ffmpeg"
	"github.com/keagan/squatprep/internal/frames"
)

// ErrCatalogMismatch is returned when a catalog entry has no readable video
var ErrCatalogMismatch = errors.New("catalog video cannot be opened")

// Capture is a seekable sequential frame source over one video
type Capture interface {
	FPS() float64
	Seek(frame int) error
	Read() ffmpeg.Frame
	Close() error
}

// VideoSource opens captures by path
type VideoSource interface {
	Open(ctx context.Context, path string) (Capture, error)
}

// FrameNormalizer turns a raw frame into a dataset image
type FrameNormalizer interface {
	Normalize(ctx context.Context, raw image.Image, keepOriginal bool) (*image.RGBA, error)
}

// Writer persists artifacts into partitions
type Writer interface {
	Reset(p dataset.Partition) error
	Write(p dataset.Partition, name string, img image.Image) error
}

// RunOptions configures one batch run
type RunOptions struct {
	// Mode selects the partitions written; it must not be empty
	Mode dataset.Mode
	// Reset empties the selected partition folders first
	Reset bool
	// KeepOriginal draws skeletons on the frame instead of a black canvas
	KeepOriginal bool
	// KeepGoing logs a failed video and continues with the next one
	KeepGoing bool
	// Workers is the number of videos processed at once
	Workers int
}

// SegmentReport describes one extracted repetition
type SegmentReport struct {
	Prefix   dataset.Prefix
	Range    frames.Range
	Decoded  int
	Skipped  int
	Written  map[dataset.Partition]int
	Duration time.Duration
}

// VideoReport describes one video of the catalog
type VideoReport struct {
	Name     string
	Segments []SegmentReport
	Err      error
}

// Report summarises a batch run
type Report struct {
	RunID    string
	Videos   []VideoReport
	Duration time.Duration
}

// Failed returns the videos that ended with an error
func (r *Report) Failed() []VideoReport {
	var failed []VideoReport
	for _, v := range r.Videos {
		if v.Err != nil {
			failed = append(failed, v)
		}
	}
	return failed
}

// Written totals artifacts per partition across all videos
func (r *Report) Written() map[dataset.Partition]int {
	total := make(map[dataset.Partition]int)
	for _, v := range r.Videos {
		for _, s := range v.Segments {
			for p, n := range s.Written {
				total[p] += n
			}
		}
	}
	return total
}

// Frames totals decoded and skipped frames across all videos
func (r *Report) Frames() (decoded, skipped int) {
	for _, v := range r.Videos {
		for _, s := range v.Segments {
			decoded += s.Decoded
			skipped += s.Skipped
		}
	}
	return decoded, skipped
}
