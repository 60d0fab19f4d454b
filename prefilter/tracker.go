package prefilter

// Tracker drives a Prefilter through one recovering scan and retires it when
// it stops paying off.
//
// After a lexical error the scanner asks Next where to resume, and calls
// Confirm if a token starts there. A candidate pays off when it is
// confirmed, or when it jumps over at least MinSkip bytes that would
// otherwise have been retried one character at a time. Once Warmup
// candidates have been judged and too few paid off, the tracker retires:
// Next returns -1, IsActive reports false, and the scanner goes back to
// single steps.
//
// A Tracker belongs to a single scan and is not safe for concurrent use.
type Tracker struct {
	inner  Prefilter
	config TrackerConfig
	stats  TrackerStats

	// open is set between Next returning a candidate and the scanner
	// coming back, either through Confirm or the following Next.
	open    bool
	openFar bool

	active bool
}

// TrackerConfig holds configuration for the tracker.
type TrackerConfig struct {
	// Warmup is the number of candidates judged before the tracker may
	// retire. Default: 32
	Warmup uint64

	// MinSkip is the jump, in bytes past the resume offset, that pays for
	// an unconfirmed candidate. Default: 4
	MinSkip int

	// MinPayoff is the smallest acceptable share of candidates that paid
	// off. Default: 0.25
	MinPayoff float64
}

// DefaultTrackerConfig returns the default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Warmup:    32,
		MinSkip:   4,
		MinPayoff: 0.25,
	}
}

// TrackerStats counts what a tracker did during its scan.
type TrackerStats struct {
	Candidates uint64 // offsets returned by Next
	Confirmed  uint64 // candidates where a token started
	Paid       uint64 // candidates that were confirmed or jumped far
	Skipped    uint64 // bytes jumped over between resume offsets and candidates
}

// NewTracker creates a tracker with the default configuration.
// Returns nil if inner is nil.
func NewTracker(inner Prefilter) *Tracker {
	return NewTrackerWithConfig(inner, DefaultTrackerConfig())
}

// NewTrackerWithConfig creates a tracker with a custom configuration.
// Returns nil if inner is nil.
func NewTrackerWithConfig(inner Prefilter, config TrackerConfig) *Tracker {
	if inner == nil {
		return nil
	}
	return &Tracker{inner: inner, config: config, active: true}
}

// Next returns the first candidate at or after from, the offset where the
// scanner would otherwise resume. It returns -1 when the tracker is retired
// or inactive, and also when the prefilter has no candidate left; callers
// tell these apart with IsActive.
func (t *Tracker) Next(haystack []byte, from int) int {
	if !t.IsActive() {
		return -1
	}
	t.settle()
	if !t.active {
		return -1
	}

	pos := t.inner.Find(haystack, from)
	if pos < 0 {
		return -1
	}
	t.stats.Candidates++
	t.stats.Skipped += uint64(pos - from)
	t.open = true
	t.openFar = pos-from >= t.config.MinSkip
	if t.openFar {
		t.stats.Paid++
	}
	return pos
}

// Confirm records that a token started at the last candidate.
func (t *Tracker) Confirm() {
	if t == nil || !t.open {
		return
	}
	t.stats.Confirmed++
	if !t.openFar {
		t.stats.Paid++
	}
	t.open = false
}

// settle closes the last candidate and retires the tracker when the
// candidates judged so far did not pay off.
func (t *Tracker) settle() {
	t.open = false
	judged := t.stats.Candidates
	if judged == 0 || judged < t.config.Warmup {
		return
	}
	if float64(t.stats.Paid)/float64(judged) < t.config.MinPayoff {
		t.active = false
	}
}

// IsActive reports whether the prefilter is still in use.
func (t *Tracker) IsActive() bool {
	return t != nil && t.active
}

// Stats returns the counters of the scan so far.
func (t *Tracker) Stats() TrackerStats {
	if t == nil {
		return TrackerStats{}
	}
	return t.stats
}

// Reset clears the counters and re-enables the prefilter.
func (t *Tracker) Reset() {
	t.stats = TrackerStats{}
	t.open = false
	t.active = true
}

// Inner returns the wrapped prefilter.
func (t *Tracker) Inner() Prefilter {
	return t.inner
}
