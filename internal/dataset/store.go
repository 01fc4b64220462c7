package dataset

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/keagan/squatprep/internal/metrics"
	"github.com/keagan/squatprep/pkg/util"
	"github.com/rs/zerolog"
)

// Store writes artifacts into one directory per partition.
type Store struct {
	logger  zerolog.Logger
	dirs    map[Partition]string
	quality int
}

// NewStore maps each partition to its folder
func NewStore(logger zerolog.Logger, dirs map[Partition]string, quality int) (*Store, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality must be in [1, 100], got %d", quality)
	}
	for _, p := range Partitions {
		if dirs[p] == "" {
			return nil, fmt.Errorf("no folder for partition %s", p)
		}
	}
	return &Store{
		logger:  logger.With().Str("component", "dataset").Logger(),
		dirs:    dirs,
		quality: quality,
	}, nil
}

// Dir returns the folder of p
func (s *Store) Dir(p Partition) string {
	return s.dirs[p]
}

// Reset deletes the folder of p with everything in it and recreates it
// empty.
func (s *Store) Reset(p Partition) error {
	dir, ok := s.dirs[p]
	if !ok {
		return fmt.Errorf("unknown partition %s", p)
	}
	if err := util.RemakeDir(dir); err != nil {
		return fmt.Errorf("reset %s: %w", p, err)
	}
	s.logger.Info().Str("partition", string(p)).Str("dir", dir).Msg("partition reset")
	return nil
}

// Write encodes img as JPEG under name in the folder of p. An existing file
// is replaced.
func (s *Store) Write(p Partition, name string, img image.Image) error {
	dir, ok := s.dirs[p]
	if !ok {
		return fmt.Errorf("unknown partition %s", p)
	}
	if err := util.EnsureDir(dir); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	err := util.WriteFileAtomic(path, func(f *os.File) error {
		return jpeg.Encode(f, img, &jpeg.Options{Quality: s.quality})
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	metrics.ArtifactsWritten.WithLabelValues(string(p)).Inc()
	s.logger.Debug().Str("partition", string(p)).Str("file", name).Msg("artifact written")
	return nil
}

// Entry is an image found in a partition folder.
type Entry struct {
	Path string
	Artifact
}

// Scan lists the artifacts of dir sorted by file name. Files that are not
// .jpg are ignored; a .jpg whose name does not parse is an error.
func Scan(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".jpg") {
			continue
		}
		names = append(names, f.Name())
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		a, err := ParseArtifactName(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Path: filepath.Join(dir, name), Artifact: a})
	}
	return entries, nil
}

// Summary counts artifacts per label.
type Summary struct {
	Total    int
	ByLabel  map[int]int
	Videos   int
	Segments int
}

// Summarize aggregates scanned entries
func Summarize(entries []Entry) Summary {
	s := Summary{ByLabel: make(map[int]int)}
	videos := make(map[string]bool)
	segments := make(map[Prefix]bool)
	for _, e := range entries {
		s.Total++
		s.ByLabel[e.Label]++
		videos[e.Video] = true
		segments[e.Prefix] = true
	}
	s.Videos = len(videos)
	s.Segments = len(segments)
	return s
}

// Labels returns the labels present, ascending
func (s Summary) Labels() []int {
	labels := make([]int, 0, len(s.ByLabel))
	for l := range s.ByLabel {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return labels
}
