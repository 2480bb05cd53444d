package timeline

import (
	"errors"
	"sort"
)

// ErrDuplicateCut reports an attempt to add a cut point that is already
// present.
var ErrDuplicateCut = errors.New("cut point already exists")

// ErrCutOutOfRange reports a cut point outside (0, duration).
var ErrCutOutOfRange = errors.New("cut point outside media duration")

// CutPoints is the ordered, de-duplicated set of split boundaries inside
// the media, in seconds ascending.
type CutPoints struct {
	points []float64
}

func (c *CutPoints) Points() []float64 {
	out := make([]float64, len(c.points))
	copy(out, c.points)
	return out
}

func (c *CutPoints) Len() int {
	return len(c.points)
}

// Add inserts a cut point, keeping the set sorted. Exact duplicates and
// points outside (0, duration) are rejected.
func (c *CutPoints) Add(t, duration float64) error {
	if t <= 0 || t >= duration {
		return ErrCutOutOfRange
	}
	for _, p := range c.points {
		if p == t {
			return ErrDuplicateCut
		}
	}
	c.points = append(c.points, t)
	sort.Float64s(c.points)
	return nil
}

// Remove drops the i-th cut point; out-of-range indices are ignored.
func (c *CutPoints) Remove(i int) {
	if i < 0 || i >= len(c.points) {
		return
	}
	c.points = append(c.points[:i], c.points[i+1:]...)
}

// FromSorted restores a cut point set from persisted state. The slice is
// trusted to already be sorted and de-duplicated, matching what Add
// produces.
func FromSorted(points []float64) CutPoints {
	c := CutPoints{points: make([]float64, len(points))}
	copy(c.points, points)
	return c
}

// Segment is one derived interval of the media: the i-th segment covers
// [Offset, Offset+Duration). Offset is the timestamp shift applied when
// the segment's subtitle fragment is merged into the global track.
type Segment struct {
	Index    int
	Offset   float64
	Duration float64
}

// Segments derives the implicit segment list from the cut points: the
// boundaries are 0, cuts..., totalDuration, giving len(cuts)+1 segments.
// The cut set invariant (sorted, unique, inside the duration) is enforced
// at insertion and trusted here.
func Segments(cuts CutPoints, totalDuration float64) []Segment {
	boundaries := append([]float64{0}, cuts.points...)
	boundaries = append(boundaries, totalDuration)

	segments := make([]Segment, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		segments[i] = Segment{
			Index:    i,
			Offset:   boundaries[i],
			Duration: boundaries[i+1] - boundaries[i],
		}
	}
	return segments
}
