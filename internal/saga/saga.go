// Package saga computes per-level unlock status for the saga map.
package saga

import (
	"sort"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

// LookAhead is the fog-of-war window: levels whose day number is more than
// this many days past the highest reached day are hidden from the map.
const LookAhead = 20

type Status string

const (
	StatusLocked    Status = "locked"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Entry pairs a level with its resolved status.
type Entry struct {
	Level  deepsafe.Level
	Status Status
}

// Resolve scans levels in ascending day order and assigns each a status.
// The first level not in completed becomes the single active one; everything
// after it is locked unless separately completed. Completing a later level
// out of order does not move the active pointer forward.
//
// The returned slice is filtered to the visibility window: only levels with
// day number <= high-water mark + LookAhead are kept, where the high-water
// mark is the highest day reached (completed or active).
func Resolve(levels []deepsafe.Level, completed map[string]bool) []Entry {
	if len(levels) == 0 {
		return nil
	}

	ordered := make([]deepsafe.Level, len(levels))
	copy(ordered, levels)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DayNumber < ordered[j].DayNumber
	})

	highWater := 0
	nextIsActive := true

	entries := make([]Entry, 0, len(ordered))
	for _, l := range ordered {
		e := Entry{Level: l, Status: StatusLocked}
		switch {
		case completed[l.ID]:
			e.Status = StatusCompleted
			if l.DayNumber > highWater {
				highWater = l.DayNumber
			}
		case nextIsActive:
			e.Status = StatusActive
			if l.DayNumber > highWater {
				highWater = l.DayNumber
			}
			nextIsActive = false
		}
		entries = append(entries, e)
	}

	visible := entries[:0]
	for _, e := range entries {
		if e.Level.DayNumber <= highWater+LookAhead {
			visible = append(visible, e)
		}
	}
	return visible
}

// Active returns the single active entry, or nil when every level is
// completed.
func Active(entries []Entry) *Entry {
	for i := range entries {
		if entries[i].Status == StatusActive {
			return &entries[i]
		}
	}
	return nil
}
