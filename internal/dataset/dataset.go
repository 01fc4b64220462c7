// Package dataset names, writes and reads the labeled images of the output
// partitions.
package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNoPartitions is returned for a Mode that selects no partition
	ErrNoPartitions = errors.New("no output partition selected")

	// ErrBadArtifactName is returned when a file name does not follow
	// {video}_{segment}_{label}_{frame}.jpg
	ErrBadArtifactName = errors.New("malformed artifact name")
)

// Partition is one output folder of the dataset.
type Partition string

const (
	// Sequence holds every frame of each repetition
	Sequence Partition = "sequence"
	// FullSquat holds only the frames around the deepest point
	FullSquat Partition = "full_squat"
)

// Partitions lists every partition in write order
var Partitions = []Partition{Sequence, FullSquat}

func (p Partition) bit() Mode {
	switch p {
	case Sequence:
		return ModeSequence
	case FullSquat:
		return ModeFullSquat
	}
	return 0
}

// Mode is the set of partitions a run produces.
type Mode uint8

const (
	ModeSequence Mode = 1 << iota
	ModeFullSquat

	ModeAll = ModeSequence | ModeFullSquat
)

// Has reports whether p is selected
func (m Mode) Has(p Partition) bool {
	b := p.bit()
	return b != 0 && m&b != 0
}

// Partitions returns the selected partitions in write order
func (m Mode) Partitions() []Partition {
	var out []Partition
	for _, p := range Partitions {
		if m.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects the empty set
func (m Mode) Validate() error {
	if m&ModeAll == 0 {
		return ErrNoPartitions
	}
	return nil
}

func (m Mode) String() string {
	parts := m.Partitions()
	if len(parts) == 0 {
		return "none"
	}
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = string(p)
	}
	return strings.Join(names, "+")
}

// ParseMode builds a Mode from partition names. Names are case-insensitive
// and "-" may be used instead of "_".
func ParseMode(names []string) (Mode, error) {
	var m Mode
	for _, name := range names {
		p := Partition(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
		b := p.bit()
		if b == 0 {
			return 0, fmt.Errorf("unknown partition %q", name)
		}
		m |= b
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}

// Prefix identifies one repetition: {video}_{segment}_{label}
type Prefix struct {
	Video   string
	Segment int
	Label   int
}

func (p Prefix) String() string {
	return fmt.Sprintf("%s_%d_%d", p.Video, p.Segment, p.Label)
}

// Artifact is one written image.
type Artifact struct {
	Prefix
	// Frame is the index local to the repetition, 0 at its first frame
	Frame int
}

// Name is the artifact's file name
func (a Artifact) Name() string {
	return ArtifactName(a.Prefix, a.Frame)
}

// ArtifactName returns {video}_{segment}_{label}_{frame}.jpg
func ArtifactName(prefix Prefix, frame int) string {
	return fmt.Sprintf("%s_%d.jpg", prefix, frame)
}

// The video part is greedy so video names may themselves contain '_'.
var artifactPattern = regexp.MustCompile(`^(.+)_(\d+)_(\d+)_(\d+)\.jpg$`)

// ParseArtifactName recovers the fields of a name built by ArtifactName.
func ParseArtifactName(name string) (Artifact, error) {
	m := artifactPattern.FindStringSubmatch(name)
	if m == nil {
		return Artifact{}, fmt.Errorf("%w: %q", ErrBadArtifactName, name)
	}

	nums := make([]int, 3)
	for i, s := range m[2:] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Artifact{}, fmt.Errorf("%w: %q: %v", ErrBadArtifactName, name, err)
		}
		nums[i] = n
	}

	return Artifact{
		Prefix: Prefix{Video: m[1], Segment: nums[0], Label: nums[1]},
		Frame:  nums[2],
	}, nil
}
