package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"
)

// ErrNotPositioned is the skip reason for reads before the first Seek
var ErrNotPositioned = errors.New("capture not positioned")

// Capture decodes a video sequentially into RGBA frames. It mirrors the
// get(fps) / set(position) / read() shape of a video-capture handle: Seek
// starts decoding at a frame index and every Read returns the next frame.
//
// A Capture is not safe for concurrent use.
type Capture struct {
	ctx        context.Context
	exec       *Executor
	info       *VideoInfo
	frameBytes int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr sync.WaitGroup

	// next is the index of the frame the following Read returns
	next   int
	broken bool
	buf    []byte
}

func newCapture(ctx context.Context, e *Executor, info *VideoInfo) *Capture {
	return &Capture{
		ctx:        ctx,
		exec:       e,
		info:       info,
		frameBytes: info.Width * info.Height * 3,
		next:       -1,
	}
}

// FPS returns the video frame rate
func (c *Capture) FPS() float64 {
	return c.info.FPS
}

// Info returns the probed metadata
func (c *Capture) Info() *VideoInfo {
	return c.info
}

// Seek positions the capture so the next Read returns frame index. Seeking
// to the position the stream is already at keeps the running decoder, which
// makes back-to-back segments a linear read.
func (c *Capture) Seek(index int) error {
	if index < 0 {
		return fmt.Errorf("seek to negative frame %d", index)
	}
	if c.cmd != nil && !c.broken && index == c.next {
		return nil
	}

	c.stop()

	// Land half a frame early so rounding of index/fps never skips the
	// requested frame; ffmpeg emits the first frame at or after the offset.
	offset := (float64(index) - 0.5) / c.info.FPS
	args := c.exec.decodeArgs(c.info.FilePath, offset)

	cmd := exec.CommandContext(c.ctx, c.exec.ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	c.stderr.Add(1)
	go func() {
		defer c.stderr.Done()
		c.exec.streamLog(stderr, c.info.FilePath)
	}()

	c.cmd = cmd
	c.stdout = stdout
	c.next = index
	c.broken = false

	c.exec.logger.Debug().
		Str("video", c.info.FilePath).
		Int("frame", index).
		Float64("offset", offset).
		Msg("decoder started")

	return nil
}

// Read decodes the next frame. Failures are reported in the returned Frame
// rather than as an error: end of stream, a truncated frame or a read before
// Seek all come back as skipped frames.
func (c *Capture) Read() Frame {
	if c.cmd == nil {
		return Skipped(c.next, ErrNotPositioned)
	}
	if c.broken {
		return Skipped(c.next, io.ErrUnexpectedEOF)
	}

	if c.buf == nil {
		c.buf = make([]byte, c.frameBytes)
	}

	index := c.next
	if _, err := io.ReadFull(c.stdout, c.buf); err != nil {
		c.broken = true
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Skipped(index, fmt.Errorf("truncated frame %d: %w", index, err))
		}
		return Skipped(index, err)
	}

	c.next++
	return Frame{Index: index, Image: rgbToImage(c.buf, c.info.Width, c.info.Height)}
}

// Close stops the decoder
func (c *Capture) Close() error {
	c.stop()
	return nil
}

func (c *Capture) stop() {
	if c.cmd == nil {
		return
	}
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	// The stderr reader finishes once the killed process closes its end;
	// Wait then reports the kill, which is expected here.
	c.stderr.Wait()
	_ = c.cmd.Wait()

	c.cmd = nil
	c.stdout = nil
}

// rgbToImage expands packed rgb24 pixels into an opaque RGBA image
func rgbToImage(data []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for src, dst := 0, 0; src+2 < len(data) && dst+3 < len(img.Pix); src, dst = src+3, dst+4 {
		img.Pix[dst] = data[src]
		img.Pix[dst+1] = data[src+1]
		img.Pix[dst+2] = data[src+2]
		img.Pix[dst+3] = 0xFF
	}
	return img
}
