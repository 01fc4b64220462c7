// Package pose detects human skeletons in frames and draws them.
package pose

import (
	"context"
	"image"
	"sync/atomic"
)

// Joint indexes follow the COCO 17-keypoint layout.
const (
	Nose = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle

	NumKeypoints
)

// Keypoint is a joint position normalised to [0, 1] in both axes, with the
// model's confidence.
type Keypoint struct {
	X     float64
	Y     float64
	Score float64
}

// Skeleton is one detected person.
type Skeleton struct {
	Keypoints [NumKeypoints]Keypoint
	Score     float64
}

// Limb connects two joints.
type Limb struct {
	From, To int
}

// Limbs is the set of bones drawn for a skeleton.
var Limbs = []Limb{
	{Nose, LeftEye}, {Nose, RightEye}, {LeftEye, LeftEar}, {RightEye, RightEar},
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip},
	{LeftHip, RightHip},
	{LeftHip, LeftKnee}, {LeftKnee, LeftAnkle},
	{RightHip, RightKnee}, {RightKnee, RightAnkle},
}

// Estimator finds skeletons in an image.
type Estimator interface {
	Infer(ctx context.Context, img image.Image) ([]Skeleton, error)
	Close() error
}

// Static returns the same skeletons for every image. It stands in for a
// model when overlays are not wanted or in tests.
type Static struct {
	Skeletons []Skeleton
	calls     atomic.Int64
}

// Infer returns the configured skeletons
func (s *Static) Infer(ctx context.Context, img image.Image) ([]Skeleton, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.calls.Add(1)
	return s.Skeletons, nil
}

// Calls is the number of Infer calls so far
func (s *Static) Calls() int {
	return int(s.calls.Load())
}

// Close is a no-op
func (s *Static) Close() error {
	return nil
}
