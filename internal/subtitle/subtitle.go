package subtitle

import (
	"errors"
	"sort"
)

// ErrInvalidInterval reports an entry or window whose start is not
// strictly before its end.
var ErrInvalidInterval = errors.New("invalid interval: start must be before end")

// Entry is a single subtitle cue. Start and End are seconds from the
// track origin; Text holds one or more lines joined by "\n".
type Entry struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Track is an ordered sequence of entries. A well-formed track is sorted
// by start time with contiguous 1-based indices; callers restore both via
// SortByStart and Reindex after structural edits.
type Track struct {
	Entries []Entry
}

// stable sort by start time; ties keep their relative order
func (t *Track) SortByStart() {
	sort.SliceStable(t.Entries, func(i, j int) bool {
		return t.Entries[i].Start < t.Entries[j].Start
	})
}

// rewrites indices to 1..N matching current order
func (t *Track) Reindex() {
	for i := range t.Entries {
		t.Entries[i].Index = i + 1
	}
}

// adds offset seconds to every entry's timestamps
func (t *Track) Shift(offset float64) {
	for i := range t.Entries {
		t.Entries[i].Start += offset
		t.Entries[i].End += offset
	}
}

// RemoveInRange drops every entry overlapping the half-open window
// [start, end), including partial overlaps. Destructive; callers snapshot
// first if they need undo.
func (t *Track) RemoveInRange(start, end float64) {
	kept := t.Entries[:0]
	for _, e := range t.Entries {
		if e.End <= start || e.Start >= end {
			kept = append(kept, e)
		}
	}
	t.Entries = kept
}

// InsertSorted places the entry before the first existing entry whose
// start is later, appending if none. It does not deduplicate or check
// overlap; callers normally RemoveInRange the entry's window first.
func (t *Track) InsertSorted(e Entry) {
	pos := len(t.Entries)
	for i, existing := range t.Entries {
		if existing.Start > e.Start {
			pos = i
			break
		}
	}
	t.Entries = append(t.Entries, Entry{})
	copy(t.Entries[pos+1:], t.Entries[pos:])
	t.Entries[pos] = e
}

// InsertMany inserts each entry, then sorts and reindexes once at the end
// so the track invariants hold regardless of insertion order.
func (t *Track) InsertMany(entries []Entry) {
	for _, e := range entries {
		t.InsertSorted(e)
	}
	t.SortByStart()
	t.Reindex()
}

// ReconcileWindow replaces the track's coverage of [start, end) with the
// given entries, which must already be in track-global coordinates. The
// window wins over anything previously covering it.
func ReconcileWindow(t *Track, start, end float64, entries []Entry) error {
	if start >= end {
		return ErrInvalidInterval
	}
	t.RemoveInRange(start, end)
	t.InsertMany(entries)
	return nil
}
