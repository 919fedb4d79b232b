package camera

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/poselab/pose-mirror/pkg/pose"
	"github.com/poselab/pose-mirror/pkg/session"
)

// Per group skeleton colors
var (
	faceColor     = color.RGBA{255, 221, 51, 0}
	torsoColor    = color.RGBA{255, 255, 255, 0}
	leftArmColor  = color.RGBA{51, 204, 51, 0}
	rightArmColor = color.RGBA{51, 153, 255, 0}
	leftLegColor  = color.RGBA{204, 102, 255, 0}
	rightLegColor = color.RGBA{255, 128, 0, 0}
	jointColor    = color.RGBA{255, 51, 51, 0}
	textColor     = color.RGBA{255, 255, 255, 0}
	recColor      = color.RGBA{255, 0, 0, 0}
)

// groupColor maps a skeleton group to its draw color
func groupColor(g pose.Group) color.RGBA {
	switch g {
	case pose.GroupFace:
		return faceColor
	case pose.GroupTorso:
		return torsoColor
	case pose.GroupLeftArm:
		return leftArmColor
	case pose.GroupRightArm:
		return rightArmColor
	case pose.GroupLeftLeg:
		return leftLegColor
	default:
		return rightLegColor
	}
}

// Window is the preview surface. It implements the session's Display (text
// updates) and OverlayTransform (mirror flag of the overlay surface)
// collaborator interfaces and rasterizes the core's draw command lists with
// OpenCV primitives.
type Window struct {
	win    *gocv.Window
	canvas gocv.Mat

	mu        sync.Mutex
	mirror    bool
	countdown int //-1 when blank
	score     pose.Score
	hasScore  bool
	status    string
}

// NewWindow opens the preview window
func NewWindow(title string) *Window {
	return &Window{
		win:       gocv.NewWindow(title),
		canvas:    gocv.NewMat(),
		countdown: -1,
	}
}

// SetMirror applies the mirror flag to the overlay surface transform
func (w *Window) SetMirror(on bool) {
	w.mu.Lock()
	w.mirror = on
	w.mu.Unlock()
}

// Mirrored reports the overlay surface transform currently applied
func (w *Window) Mirrored() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mirror
}

// ShowCountdown shows the countdown digit
func (w *Window) ShowCountdown(remaining int) {
	w.mu.Lock()
	w.countdown = remaining
	w.mu.Unlock()
}

// ClearCountdown blanks the countdown digit
func (w *Window) ClearCountdown() {
	w.mu.Lock()
	w.countdown = -1
	w.mu.Unlock()
}

// ShowScore updates the grade text
func (w *Window) ShowScore(s pose.Score) {
	w.mu.Lock()
	w.score = s
	w.hasScore = true
	w.mu.Unlock()
}

// ShowStatus updates the free text status line
func (w *Window) ShowStatus(msg string) {
	w.mu.Lock()
	w.status = msg
	w.mu.Unlock()
}

// Redraw is the display's immediate refresh hook. The preview loop presents
// every captured frame, so the next Present call already picks the new state
// up; nothing is buffered here.
func (w *Window) Redraw() {}

// Present composes one preview frame: the camera image under its preview
// transform, the overlay layer under the overlay surface transform, then the
// text surface. Overlay commands stay in sensor coordinates; only whole
// surfaces are flipped.
func (w *Window) Present(frame gocv.Mat, cameraMirrored bool, dl pose.DrawList, counting bool) {
	frame.CopyTo(&w.canvas)
	if cameraMirrored {
		gocv.Flip(w.canvas, &w.canvas, 1)
	}

	if len(dl.Lines) > 0 || len(dl.Markers) > 0 {
		layer := gocv.NewMatWithSize(frame.Rows(), frame.Cols(), frame.Type())
		defer layer.Close()

		for _, l := range dl.Lines {
			gocv.Line(&layer, pt(l.From), pt(l.To), groupColor(l.Group), 2)
		}
		for _, m := range dl.Markers {
			gocv.Circle(&layer, pt(m.At), 4, jointColor, -1)
		}

		if dl.Mirrored {
			gocv.Flip(layer, &layer, 1)
		}
		gocv.Add(w.canvas, layer, &w.canvas)
	}

	w.drawText(counting)
	w.win.IMShow(w.canvas)
}

// drawText paints the grade, countdown and status surfaces onto the canvas
func (w *Window) drawText(counting bool) {
	w.mu.Lock()
	score := w.score
	hasScore := w.hasScore
	countdown := w.countdown
	status := w.status
	w.mu.Unlock()

	if hasScore {
		head := fmt.Sprintf("Grade %s  %d", score.OverallGrade, score.Overall)
		parts := fmt.Sprintf("Arms %s  Legs %s  Body %s", score.ArmGrade, score.LegGrade, score.BodyGrade)
		gocv.PutText(&w.canvas, head, image.Pt(20, 40), gocv.FontHersheySimplex, 1.2, textColor, 2)
		gocv.PutText(&w.canvas, parts, image.Pt(20, 75), gocv.FontHersheyPlain, 1.4, textColor, 2)
	}

	if countdown >= 0 {
		digit := fmt.Sprintf("%d", countdown)
		gocv.PutText(&w.canvas, digit, image.Pt(w.canvas.Cols()/2-20, w.canvas.Rows()/2), gocv.FontHersheySimplex, 3, textColor, 4)
	}

	if counting {
		gocv.Circle(&w.canvas, image.Pt(w.canvas.Cols()-40, 40), 10, recColor, -1)
		gocv.PutText(&w.canvas, "REC", image.Pt(w.canvas.Cols()-110, 48), gocv.FontHersheyPlain, 1.4, recColor, 2)
	}

	if status != "" {
		gocv.PutText(&w.canvas, status, image.Pt(20, w.canvas.Rows()-20), gocv.FontHersheyPlain, 1.4, textColor, 2)
	}
}

// pt converts a landmark point to pixel coordinates
func pt(p pose.Point) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

// Trigger is one discrete input event from the window's key surface
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerQuit
	TriggerToggleSkeleton
	TriggerStartCapture
	TriggerToggleMirror
	TriggerDynamicCapture
)

// PollKey waits up to delayMs for a key press and maps it onto the session's
// trigger surface
func (w *Window) PollKey(delayMs int) Trigger {
	switch w.win.WaitKey(delayMs) {
	case 'q', 27: //ESC
		return TriggerQuit
	case 's':
		return TriggerToggleSkeleton
	case 'c':
		return TriggerStartCapture
	case 'm':
		return TriggerToggleMirror
	case 'd':
		return TriggerDynamicCapture
	default:
		return TriggerNone
	}
}

// Close releases the window resources
func (w *Window) Close() error {
	w.canvas.Close()
	return w.win.Close()
}

var (
	_ session.Display          = (*Window)(nil)
	_ session.OverlayTransform = (*Window)(nil)
	_ session.CameraTransform  = (*Capture)(nil)
)
