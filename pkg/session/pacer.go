package session

// FramePacer throttles an unbounded upstream frame source down to the analysis
// cadence. Frames that arrive before the interval has elapsed are dropped, not
// queued, so the producer never blocks behind the estimator.
//
// Not safe for concurrent use: the capture loop is the single caller.
type FramePacer struct {
	intervalMs int64
	lastMs     int64
	primed     bool
}

// NewFramePacer returns a pacer gating at targetFPS frames per second
func NewFramePacer(targetFPS int) *FramePacer {
	if targetFPS <= 0 {
		targetFPS = 10
	}
	return &FramePacer{intervalMs: int64(1000 / targetFPS)}
}

// Admit reports whether a frame arriving at tsMs (milliseconds) should be
// forwarded to the estimator. On admission the gate timestamp advances; a
// dropped frame leaves no trace.
func (p *FramePacer) Admit(tsMs int64) bool {
	if p.primed && tsMs-p.lastMs < p.intervalMs {
		return false
	}
	p.lastMs = tsMs
	p.primed = true
	return true
}

// Interval returns the admission interval in milliseconds
func (p *FramePacer) Interval() int64 {
	return p.intervalMs
}
