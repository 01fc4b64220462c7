package normalize

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/keagan/squatprep/internal/pose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEstimator struct{}

func (failingEstimator) Infer(context.Context, image.Image) ([]pose.Skeleton, error) {
	return nil, errors.New("model exploded")
}

func (failingEstimator) Close() error { return nil }

func uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func newTestNormalizer(t *testing.T, est pose.Estimator) *Normalizer {
	t.Helper()
	n, err := New(6, 4, est, pose.NewRenderer(1, 1, 0.3))
	require.NoError(t, err)
	return n
}

func TestRotateClockwise(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img.SetRGBA(0, 0, red)
	img.SetRGBA(3, 1, blue)

	out := RotateClockwise(img)
	assert.Equal(t, image.Rect(0, 0, 2, 4), out.Bounds())
	// top-left moves to top-right, bottom-right to bottom-left
	assert.Equal(t, red, out.RGBAAt(1, 0))
	assert.Equal(t, blue, out.RGBAAt(0, 3))
}

func TestRotateClockwiseGenericImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(0, 0, color.Gray{Y: 200})

	out := RotateClockwise(img)
	assert.Equal(t, image.Rect(0, 0, 1, 3), out.Bounds())
	assert.Equal(t, color.RGBA{R: 200, G: 200, B: 200, A: 255}, out.RGBAAt(0, 0))
}

func TestNormalizeSize(t *testing.T) {
	n := newTestNormalizer(t, &pose.Static{})

	out, err := n.Normalize(context.Background(), uniform(64, 48, color.White), true)
	require.NoError(t, err)
	// resized to 6x4, then rotated
	assert.Equal(t, image.Rect(0, 0, 4, 6), out.Bounds())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(2, 3))
}

func TestNormalizeBlankCanvas(t *testing.T) {
	est := &pose.Static{}
	n := newTestNormalizer(t, est)

	out, err := n.Normalize(context.Background(), uniform(64, 48, color.White), false)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 6), out.Bounds())
	for y := 0; y < 6; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(x, y))
		}
	}
	assert.Equal(t, 1, est.Calls())
}

func TestNormalizeDrawsSkeleton(t *testing.T) {
	var s pose.Skeleton
	s.Keypoints[pose.LeftHip] = pose.Keypoint{X: 0.1, Y: 0.5, Score: 1}
	s.Keypoints[pose.RightHip] = pose.Keypoint{X: 0.9, Y: 0.5, Score: 1}
	n := newTestNormalizer(t, &pose.Static{Skeletons: []pose.Skeleton{s}})

	out, err := n.Normalize(context.Background(), uniform(64, 48, color.White), false)
	require.NoError(t, err)
	assert.NotEqual(t, color.RGBA{A: 255}, out.RGBAAt(2, 3))
}

func TestNormalizeEstimatorError(t *testing.T) {
	n := newTestNormalizer(t, failingEstimator{})

	_, err := n.Normalize(context.Background(), uniform(8, 8, color.White), false)
	assert.ErrorContains(t, err, "model exploded")
}

func TestNewRejectsBadSize(t *testing.T) {
	_, err := New(0, 4, &pose.Static{}, pose.NewRenderer(1, 1, 0))
	assert.Error(t, err)
}
