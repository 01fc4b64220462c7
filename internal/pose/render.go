package pose

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// discSegments is the number of edges used to approximate a joint disc
const discSegments = 16

// Renderer rasterises skeletons onto an image.
type Renderer struct {
	LineWidth   float64
	JointRadius float64
	// Threshold hides joints, and the limbs touching them, whose score is
	// below it.
	Threshold float64

	LimbColor  color.Color
	JointColor color.Color
}

// NewRenderer returns a renderer with the default palette
func NewRenderer(lineWidth, jointRadius, threshold float64) *Renderer {
	return &Renderer{
		LineWidth:   lineWidth,
		JointRadius: jointRadius,
		Threshold:   threshold,
		LimbColor:   color.RGBA{R: 0, G: 255, B: 0, A: 255},
		JointColor:  color.RGBA{R: 255, G: 0, B: 0, A: 255},
	}
}

// Draw paints every skeleton onto canvas and returns it. Keypoints are
// normalised, so they are scaled to the canvas bounds.
func (r *Renderer) Draw(canvas *image.RGBA, skeletons []Skeleton) *image.RGBA {
	if len(skeletons) == 0 {
		return canvas
	}

	bounds := canvas.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	limbs := vector.NewRasterizer(w, h)
	joints := vector.NewRasterizer(w, h)
	drewLimb, drewJoint := false, false

	for _, s := range skeletons {
		for _, l := range Limbs {
			a, b := s.Keypoints[l.From], s.Keypoints[l.To]
			if !r.visible(a) || !r.visible(b) {
				continue
			}
			ax, ay := a.X*float64(w), a.Y*float64(h)
			bx, by := b.X*float64(w), b.Y*float64(h)
			if addLine(limbs, ax, ay, bx, by, r.LineWidth) {
				drewLimb = true
			}
		}

		for _, k := range s.Keypoints {
			if !r.visible(k) || r.JointRadius <= 0 {
				continue
			}
			addDisc(joints, k.X*float64(w), k.Y*float64(h), r.JointRadius)
			drewJoint = true
		}
	}

	// joints go on top of limbs
	if drewLimb {
		limbs.Draw(canvas, bounds, image.NewUniform(r.LimbColor), image.Point{})
	}
	if drewJoint {
		joints.Draw(canvas, bounds, image.NewUniform(r.JointColor), image.Point{})
	}

	return canvas
}

func (r *Renderer) visible(k Keypoint) bool {
	return k.Score >= r.Threshold
}

// addLine adds the rectangle covering a segment of the given width. Zero
// length or zero width segments add nothing.
func addLine(z *vector.Rasterizer, ax, ay, bx, by, width float64) bool {
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length == 0 || width <= 0 {
		return false
	}

	nx, ny := -dy/length*width/2, dx/length*width/2
	z.MoveTo(float32(ax+nx), float32(ay+ny))
	z.LineTo(float32(bx+nx), float32(by+ny))
	z.LineTo(float32(bx-nx), float32(by-ny))
	z.LineTo(float32(ax-nx), float32(ay-ny))
	z.ClosePath()
	return true
}

func addDisc(z *vector.Rasterizer, cx, cy, radius float64) {
	z.MoveTo(float32(cx+radius), float32(cy))
	for i := 1; i < discSegments; i++ {
		theta := 2 * math.Pi * float64(i) / discSegments
		z.LineTo(float32(cx+radius*math.Cos(theta)), float32(cy+radius*math.Sin(theta)))
	}
	z.ClosePath()
}
