package saga

import (
	"fmt"
	"testing"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

func makeLevels(days ...int) []deepsafe.Level {
	levels := make([]deepsafe.Level, 0, len(days))
	for _, d := range days {
		levels = append(levels, deepsafe.Level{
			ID:        fmt.Sprintf("level-%d", d),
			DayNumber: d,
			Title:     fmt.Sprintf("Day %d", d),
		})
	}
	return levels
}

func completedSet(days ...int) map[string]bool {
	c := make(map[string]bool)
	for _, d := range days {
		c[fmt.Sprintf("level-%d", d)] = true
	}
	return c
}

func statuses(entries []Entry) []Status {
	out := make([]Status, len(entries))
	for i, e := range entries {
		out[i] = e.Status
	}
	return out
}

func TestResolveEmpty(t *testing.T) {
	if got := Resolve(nil, nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestResolveNoneCompleted(t *testing.T) {
	entries := Resolve(makeLevels(1, 2, 3), completedSet())

	want := []Status{StatusActive, StatusLocked, StatusLocked}
	got := statuses(entries)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("level %d: status = %q, want %q", i+1, got[i], want[i])
		}
	}
}

func TestResolveExampleFromDesign(t *testing.T) {
	// Levels 1-5 with {1,2} completed: [completed, completed, active, locked, locked].
	entries := Resolve(makeLevels(1, 2, 3, 4, 5), completedSet(1, 2))

	want := []Status{StatusCompleted, StatusCompleted, StatusActive, StatusLocked, StatusLocked}
	got := statuses(entries)
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("level %d: status = %q, want %q", i+1, got[i], want[i])
		}
	}
}

func TestResolveAllCompleted(t *testing.T) {
	entries := Resolve(makeLevels(1, 2, 3), completedSet(1, 2, 3))

	for _, e := range entries {
		if e.Status != StatusCompleted {
			t.Errorf("day %d: status = %q, want completed", e.Level.DayNumber, e.Status)
		}
	}
	if Active(entries) != nil {
		t.Error("expected no active entry when all levels are completed")
	}
}

func TestResolveAtMostOneActive(t *testing.T) {
	cases := []map[string]bool{
		completedSet(),
		completedSet(1),
		completedSet(1, 3),
		completedSet(2, 4),
		completedSet(1, 2, 3, 4, 5),
	}
	for _, completed := range cases {
		entries := Resolve(makeLevels(1, 2, 3, 4, 5), completed)
		active := 0
		for _, e := range entries {
			if e.Status == StatusActive {
				active++
			}
		}
		if active > 1 {
			t.Errorf("completed=%v: %d active entries, want at most 1", completed, active)
		}
	}
}

func TestResolveOutOfOrderCompletionDoesNotSkipAhead(t *testing.T) {
	// Day 5 completed, day 3 not: the active level stays at day 1.
	entries := Resolve(makeLevels(1, 2, 3, 4, 5), completedSet(5))

	active := Active(entries)
	if active == nil {
		t.Fatal("expected an active entry")
	}
	if active.Level.DayNumber != 1 {
		t.Errorf("active day = %d, want 1", active.Level.DayNumber)
	}

	// The out-of-order completion still shows as completed.
	last := entries[len(entries)-1]
	if last.Level.DayNumber != 5 || last.Status != StatusCompleted {
		t.Errorf("day 5: status = %q, want completed", last.Status)
	}
}

func TestResolveActiveIsLowestIncomplete(t *testing.T) {
	entries := Resolve(makeLevels(1, 2, 3, 4, 5), completedSet(1, 2, 4))

	active := Active(entries)
	if active == nil {
		t.Fatal("expected an active entry")
	}
	if active.Level.DayNumber != 3 {
		t.Errorf("active day = %d, want 3", active.Level.DayNumber)
	}
}

func TestResolveFogOfWar(t *testing.T) {
	days := make([]int, 0, 60)
	for d := 1; d <= 60; d++ {
		days = append(days, d)
	}

	// Nothing completed: high-water mark is day 1, window ends at day 21.
	entries := Resolve(makeLevels(days...), completedSet())
	for _, e := range entries {
		if e.Level.DayNumber > 1+LookAhead {
			t.Errorf("visible level at day %d beyond window %d", e.Level.DayNumber, 1+LookAhead)
		}
	}
	if len(entries) != 1+LookAhead {
		t.Errorf("got %d visible levels, want %d", len(entries), 1+LookAhead)
	}

	// Days 1-10 completed: window extends to day 31.
	entries = Resolve(makeLevels(days...), completedSet(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	maxDay := 0
	for _, e := range entries {
		if e.Level.DayNumber > maxDay {
			maxDay = e.Level.DayNumber
		}
	}
	if maxDay != 11+LookAhead {
		t.Errorf("max visible day = %d, want %d", maxDay, 11+LookAhead)
	}
}

func TestResolveUnsortedInput(t *testing.T) {
	entries := Resolve(makeLevels(3, 1, 2), completedSet(1))

	if entries[0].Level.DayNumber != 1 || entries[0].Status != StatusCompleted {
		t.Errorf("first entry: day %d status %q, want day 1 completed", entries[0].Level.DayNumber, entries[0].Status)
	}
	if entries[1].Level.DayNumber != 2 || entries[1].Status != StatusActive {
		t.Errorf("second entry: day %d status %q, want day 2 active", entries[1].Level.DayNumber, entries[1].Status)
	}
}
