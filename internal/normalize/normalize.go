// Package normalize turns a decoded video frame into a dataset image: fixed
// size, upright, with the detected skeleton drawn in.
package normalize

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/keagan/squatprep/internal/pose"
	"github.com/nfnt/resize"
)

// Normalizer resizes, rotates and overlays pose on frames. It is safe for
// concurrent use when its Estimator is.
type Normalizer struct {
	width     int
	height    int
	estimator pose.Estimator
	renderer  *pose.Renderer
}

// New returns a Normalizer producing images of height x width after rotation
func New(width, height int, estimator pose.Estimator, renderer *pose.Renderer) (*Normalizer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %dx%d", width, height)
	}
	if estimator == nil || renderer == nil {
		return nil, fmt.Errorf("estimator and renderer are required")
	}
	return &Normalizer{
		width:     width,
		height:    height,
		estimator: estimator,
		renderer:  renderer,
	}, nil
}

// Normalize resizes raw to width x height ignoring aspect ratio, rotates it
// 90 degrees clockwise and draws the detected skeletons. With keepOriginal
// the skeleton is drawn on the rotated frame, otherwise on a black canvas of
// the same size.
func (n *Normalizer) Normalize(ctx context.Context, raw image.Image, keepOriginal bool) (*image.RGBA, error) {
	resized := resize.Resize(uint(n.width), uint(n.height), raw, resize.Bilinear)
	rotated := RotateClockwise(resized)

	skeletons, err := n.estimator.Infer(ctx, rotated)
	if err != nil {
		return nil, fmt.Errorf("pose inference: %w", err)
	}

	canvas := rotated
	if !keepOriginal {
		canvas = image.NewRGBA(rotated.Bounds())
		draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	}

	return n.renderer.Draw(canvas, skeletons), nil
}

// RotateClockwise transposes img and mirrors it horizontally, a quarter turn
// clockwise. A w x h input becomes h x w.
func RotateClockwise(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, h, w))

	src, ok := img.(*image.RGBA)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// transpose puts (x, y) at (y, x); the flip sends column y to h-1-y
			if ok {
				i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				j := out.PixOffset(h-1-y, x)
				copy(out.Pix[j:j+4], src.Pix[i:i+4])
				continue
			}
			out.Set(h-1-y, x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}
