package quiz

// Lives mirrors the authoritative heart counter for responsive play.
// Mutations saturate: the counter never goes below zero or above max.
// Refresh (Set) always overwrites local state — last writer wins, no
// conflict resolution.
type Lives struct {
	current  int
	max      int
	infinite bool
}

func NewLives(current, max int) *Lives {
	l := &Lives{max: max}
	l.Set(current)
	return l
}

// Decrement removes one heart, saturating at zero. It reports whether a
// heart was actually consumed; infinite lives make it a no-op.
func (l *Lives) Decrement() bool {
	if l.infinite || l.current == 0 {
		return false
	}
	l.current--
	return true
}

// Refill restores the counter to max.
func (l *Lives) Refill() {
	l.current = l.max
}

// Set overwrites the counter from an authoritative refresh, clamped to
// [0, max].
func (l *Lives) Set(n int) {
	if n < 0 {
		n = 0
	}
	if n > l.max {
		n = l.max
	}
	l.current = n
}

func (l *Lives) SetInfinite(v bool) { l.infinite = v }

func (l *Lives) Empty() bool {
	return !l.infinite && l.current == 0
}

func (l *Lives) Count() int { return l.current }
func (l *Lives) Max() int   { return l.max }
