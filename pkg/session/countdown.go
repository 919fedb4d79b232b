package session

import "github.com/poselab/pose-mirror/pkg/pose"

// Capture is the reference capture state machine: Idle until started, then a
// per second countdown that ends in a single baseline snapshot. The zero value
// is Idle.
//
// Capture is not self synchronizing; the owning Session calls Start and Tick
// under its own serialization point.
type Capture struct {
	seconds   int
	remaining int
	active    bool

	display Display
	live    func() pose.Landmarks //current live keypoint set
	commit  func(pose.Landmarks)  //baseline swap
}

// NewCapture returns an idle capture machine counting down from seconds
func NewCapture(seconds int, display Display, live func() pose.Landmarks, commit func(pose.Landmarks)) *Capture {
	if seconds <= 0 {
		seconds = 5
	}
	return &Capture{
		seconds: seconds,
		display: display,
		live:    live,
		commit:  commit,
	}
}

// Start begins the countdown and publishes the first digit. A start while a
// countdown is already running is ignored; the return value reports whether
// the request was accepted.
func (c *Capture) Start() bool {
	if c.active {
		return false
	}
	c.active = true
	c.remaining = c.seconds
	c.display.ShowCountdown(c.remaining)
	return true
}

// Tick advances the countdown by one period: it publishes the current digit
// and decrements. The tick that reaches zero clears the digit and, if the live
// keypoint set is non empty, commits a defensive copy as the new baseline; an
// empty live set skips the capture silently. Either way the machine returns to
// idle.
func (c *Capture) Tick() {
	if !c.active {
		return
	}

	c.display.ShowCountdown(c.remaining)
	c.remaining--
	if c.remaining > 0 {
		return
	}

	c.display.ClearCountdown()
	c.active = false

	kps := c.live()
	if len(kps) == 0 {
		return
	}
	c.commit(kps.Clone())
	c.display.ShowStatus("Reference pose captured")
}

// Active reports whether a countdown is running
func (c *Capture) Active() bool {
	return c.active
}

// Remaining returns the current countdown value, 0 when idle
func (c *Capture) Remaining() int {
	if !c.active {
		return 0
	}
	return c.remaining
}
