package ffmpeg

import (
	"image"
	"time"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	Frames     int
	VideoCodec string
}

// Frame is the outcome of one Read. A frame that could not be decoded has
// no image and carries the reason in Err.
type Frame struct {
	Index int
	Image *image.RGBA
	Err   error
}

// OK reports whether the frame was decoded
func (f Frame) OK() bool {
	return f.Err == nil && f.Image != nil
}

// Skipped builds a frame result for a read that produced nothing
func Skipped(index int, reason error) Frame {
	return Frame{Index: index, Err: reason}
}
