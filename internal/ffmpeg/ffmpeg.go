package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// ErrVideoNotFound is returned when a video file does not exist
var ErrVideoNotFound = errors.New("video not found")

// Executor locates the ffmpeg binaries and opens captures on video files
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates a new ffmpeg executor
func New(logger zerolog.Logger, threads int) (*Executor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     threads,
	}, nil
}

// Open probes a video and returns a capture positioned nowhere; call Seek
// before the first Read.
func (e *Executor) Open(ctx context.Context, path string) (*Capture, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	info, err := e.ProbeVideo(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%s has no video stream", path)
	}
	if info.FPS <= 0 {
		return nil, fmt.Errorf("%s reports no usable frame rate", path)
	}

	e.logger.Debug().
		Str("video", path).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Msg("opened capture")

	return newCapture(ctx, e, info), nil
}

// decodeArgs builds the ffmpeg arguments that stream rgb24 frames starting
// at the given offset in seconds.
func (e *Executor) decodeArgs(path string, offset float64) []string {
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}

	if e.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.threads))
	}

	// Orientation is fixed later by the normalizer, so frames must keep
	// the probed dimensions.
	args = append(args, "-noautorotate")

	if offset > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.6f", offset))
	}

	return append(args,
		"-i", path,
		"-an", "-sn",
		"-fps_mode", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
}

// streamLog forwards ffmpeg stderr lines to the debug log
func (e *Executor) streamLog(r io.Reader, path string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		e.logger.Debug().Str("video", path).Str("ffmpeg", scanner.Text()).Msg("decoder output")
	}
}
