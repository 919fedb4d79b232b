package session

import "github.com/poselab/pose-mirror/pkg/pose"

// Display is the outbound text surface of the session. Implementations draw on
// whatever windowing layer is in use; the session only pushes values.
type Display interface {
	//ShowCountdown shows the current countdown digit
	ShowCountdown(remaining int)
	//ClearCountdown blanks the countdown digit
	ClearCountdown()
	//ShowScore updates the grade letters and numeric score
	ShowScore(s pose.Score)
	//ShowStatus updates the free text status line (capture results,
	//collaborator failures)
	ShowStatus(msg string)
	//Redraw forces the next frame to be presented immediately
	Redraw()
}

// CameraTransform is the camera side mirror collaborator
type CameraTransform interface {
	SetMirror(on bool)
}

// OverlayTransform is the overlay side mirror collaborator. It reports its
// currently applied flag so the reconciliation loop can detect drift.
type OverlayTransform interface {
	SetMirror(on bool)
	Mirrored() bool
}

// Estimator is the external pose estimation collaborator. Submit hands over an
// encoded frame, results come back asynchronously on the Results channel; an
// empty landmark set means nothing was detected. Close releases the estimator
// and ends the Results channel.
type Estimator interface {
	Submit(jpeg []byte, tsMs int64) error
	Results() <-chan pose.Landmarks
	Close() error
}
