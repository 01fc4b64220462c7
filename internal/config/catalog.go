package config

import (
	"fmt"
	"os"

	"github.com/keagan/squatprep/internal/timecode"
	"gopkg.in/yaml.v3"
)

// Segment is one annotated squat repetition inside a video.
type Segment struct {
	Start timecode.TimeCode `yaml:"start"`
	Mid   timecode.TimeCode `yaml:"mid"`
	End   timecode.TimeCode `yaml:"end"`
	Label int               `yaml:"label"`
}

// Seconds parses the three time codes of the segment.
func (s Segment) Seconds() (start, mid, end float64, err error) {
	if start, err = s.Start.Seconds(); err != nil {
		return
	}
	if mid, err = s.Mid.Seconds(); err != nil {
		return
	}
	end, err = s.End.Seconds()
	return
}

// Validate checks that the time codes parse and start < mid < end.
func (s Segment) Validate() error {
	start, mid, end, err := s.Seconds()
	if err != nil {
		return err
	}
	if !(start < mid && mid < end) {
		return fmt.Errorf("mid %s must lie strictly between start %s and end %s", s.Mid, s.Start, s.End)
	}
	if s.Label < 0 {
		return fmt.Errorf("label must not be negative, got %d", s.Label)
	}
	return nil
}

// Video is a raw video file and its repetitions, in annotation order.
type Video struct {
	Name     string
	Segments []Segment
}

// Catalog maps video file names to their repetitions. Videos keep the order
// in which they appear in the catalog file.
type Catalog struct {
	Videos []Video
}

// UnmarshalYAML walks the mapping node directly so document order survives.
func (c *Catalog) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: catalog must be a mapping of video name to segments", node.Line)
	}

	seen := make(map[string]bool, len(node.Content)/2)
	videos := make([]Video, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var name string
		if err := key.Decode(&name); err != nil {
			return fmt.Errorf("line %d: video name: %w", key.Line, err)
		}
		if seen[name] {
			return fmt.Errorf("line %d: duplicate video %q", key.Line, name)
		}
		seen[name] = true

		var segments []Segment
		if err := value.Decode(&segments); err != nil {
			return fmt.Errorf("line %d: segments of %q: %w", value.Line, name, err)
		}
		videos = append(videos, Video{Name: name, Segments: segments})
	}

	c.Videos = videos
	return nil
}

// Validate checks every segment of every video.
func (c *Catalog) Validate() error {
	for _, v := range c.Videos {
		for i, seg := range v.Segments {
			if err := seg.Validate(); err != nil {
				return fmt.Errorf("%s segment %d: %w", v.Name, i, err)
			}
		}
	}
	return nil
}

// Lookup returns the video entry with the given name.
func (c *Catalog) Lookup(name string) (Video, bool) {
	for _, v := range c.Videos {
		if v.Name == name {
			return v, true
		}
	}
	return Video{}, false
}

// SegmentCount is the number of repetitions across all videos.
func (c *Catalog) SegmentCount() int {
	n := 0
	for _, v := range c.Videos {
		n += len(v.Segments)
	}
	return n
}

// LoadCatalog reads and validates a catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &cat, nil
}
