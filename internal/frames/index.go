// Package frames converts annotated second offsets into video frame indices
// and derives the full-squat window around a repetition's midpoint.
package frames

// Range holds the absolute frame indices of one repetition and the
// full-squat window expressed in segment-local indices (0 at Start).
type Range struct {
	Start int
	Mid   int
	End   int

	FullSquatStart int
	FullSquatEnd   int
}

// Index truncates fps*seconds into frame indices and builds the window of
// halfWidth frames on each side of the midpoint.
func Index(fps, start, mid, end float64, halfWidth int) Range {
	r := Range{
		Start: int(fps * start),
		Mid:   int(fps * mid),
		End:   int(fps * end),
	}

	center := r.Mid - r.Start
	r.FullSquatStart = center - halfWidth
	r.FullSquatEnd = center + halfWidth
	return r
}

// Len is the number of local indices visited, End-Start inclusive.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Last is the highest local index of the segment.
func (r Range) Last() int {
	return r.End - r.Start
}

// InWindow reports whether local index i falls in the full-squat window.
func (r Range) InWindow(i int) bool {
	return i >= r.FullSquatStart && i <= r.FullSquatEnd
}

// ClippedWindow intersects the window with [0, Last()]. ok is false when the
// intersection is empty.
func (r Range) ClippedWindow() (lo, hi int, ok bool) {
	lo, hi = r.FullSquatStart, r.FullSquatEnd
	if lo < 0 {
		lo = 0
	}
	if hi > r.Last() {
		hi = r.Last()
	}
	return lo, hi, lo <= hi
}
