package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/poselab/pose-mirror/pkg/pose"
)

// Config carries the session tuning knobs. Zero values fall back to the stock
// calibration: 10 fps admission, 5 second countdown, 1 second reconciliation.
type Config struct {
	TargetFPS         int
	CountdownSeconds  int
	TickPeriod        time.Duration //countdown tick period, nominal 1s
	ReconcileInterval time.Duration
	Calibration       pose.Calibration
}

// Status is the session snapshot served to the HTTP surface and the window
// text overlay
type Status struct {
	ID          string     `json:"id"`
	Score       pose.Score `json:"score"`
	HasBaseline bool       `json:"has_baseline"`
	Countdown   int        `json:"countdown"`
	Counting    bool       `json:"counting"`
	Mirrored    bool       `json:"mirrored"`
	Skeleton    bool       `json:"skeleton"`
	AdmittedFPS float64    `json:"admitted_fps"`
	Message     string     `json:"message"`
}

// Session owns the shared pose state: the live keypoint set, the reference
// baseline, the mirror flag and the capture countdown. Estimator results, the
// countdown ticker and the external triggers all funnel through one
// serialization point (s.mu plus the run loop); the baseline itself is
// replaced by atomic swap so Evaluate never observes a half written snapshot.
type Session struct {
	id  string
	cfg Config
	log *slog.Logger

	mu       sync.Mutex
	live     pose.Landmarks
	score    pose.Score
	visible  bool
	message  string
	admitted int
	windowAt time.Time
	rate     float64

	baseline atomic.Pointer[pose.Landmarks]

	pacer     *FramePacer
	capture   *Capture
	mirror    *MirrorManager
	estimator Estimator
	display   Display

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New wires a session from its collaborators. The skeleton overlay starts
// visible and the mirror flag starts off.
func New(cfg Config, estimator Estimator, camera CameraTransform, overlay OverlayTransform, display Display, log *slog.Logger) *Session {
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = time.Second
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = time.Second
	}
	if cfg.Calibration == (pose.Calibration{}) {
		cfg.Calibration = pose.DefaultCalibration()
	}

	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		log:       log,
		visible:   true,
		pacer:     NewFramePacer(cfg.TargetFPS),
		estimator: estimator,
		display:   display,
		windowAt:  time.Now(),
	}
	s.mirror = NewMirrorManager(camera, overlay, display, log)
	//live and commit run under s.mu: capture ticks are always issued with the
	//session lock held
	s.capture = NewCapture(cfg.CountdownSeconds, display,
		func() pose.Landmarks { return s.live },
		func(kps pose.Landmarks) { s.baseline.Store(&kps) },
	)
	return s
}

// ID returns the session identity used in logs and status responses
func (s *Session) ID() string {
	return s.id
}

// Start launches the run loop and the mirror reconciliation loop. Close stops
// both.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.mirror.Run(ctx, s.cfg.ReconcileInterval)
	}()
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// run is the single serialization point for estimator results and countdown
// ticks
func (s *Session) run(ctx context.Context) {
	tick := time.NewTicker(s.cfg.TickPeriod)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case kps, ok := <-s.estimator.Results():
			if !ok {
				s.log.Info("session: estimator result channel closed", "session", s.id)
				return
			}
			s.handleResult(kps)
		case <-tick.C:
			s.mu.Lock()
			s.capture.Tick()
			s.mu.Unlock()
		}
	}
}

// OfferFrame offers one captured frame to the admission gate and, when
// admitted, to the estimator. encode is only invoked for admitted frames, so a
// dropped frame costs nothing. Called from the single camera read loop;
// dropped frames never block the producer.
func (s *Session) OfferFrame(tsMs int64, encode func() ([]byte, error)) {
	if s.closed.Load() {
		return
	}
	if !s.pacer.Admit(tsMs) {
		return
	}

	s.mu.Lock()
	s.admitted++
	if elapsed := time.Since(s.windowAt); elapsed >= time.Second {
		s.rate = float64(s.admitted) / elapsed.Seconds()
		s.admitted = 0
		s.windowAt = time.Now()
	}
	s.mu.Unlock()

	jpeg, err := encode()
	if err != nil {
		s.log.Error("session: frame encode failed", "session", s.id, "err", err)
		return
	}

	if err := s.estimator.Submit(jpeg, tsMs); err != nil {
		s.log.Error("session: estimator submit failed", "session", s.id, "err", err)
		s.setMessage("Pose estimator unavailable")
	}
}

// handleResult commits one estimator result as the live keypoint set and, when
// a baseline exists, refreshes the score against it
func (s *Session) handleResult(kps pose.Landmarks) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = kps
	ref := s.baseline.Load()
	if ref == nil {
		return
	}

	s.score = pose.EvaluateWith(s.cfg.Calibration, kps, *ref)
	s.display.ShowScore(s.score)
}

// StartCapture begins the reference capture countdown; ignored while one is
// already running
func (s *Session) StartCapture() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture.Start()
}

// StartDynamic is the reserved dynamic sequence capture trigger. Not
// implemented; it only reports its absence.
func (s *Session) StartDynamic() {
	s.log.Info("session: dynamic capture requested, not implemented", "session", s.id)
	s.setMessage("Dynamic capture is not available")
}

// ToggleSkeleton flips the overlay visibility and returns the new value
func (s *Session) ToggleSkeleton() bool {
	s.mu.Lock()
	s.visible = !s.visible
	v := s.visible
	s.mu.Unlock()
	s.display.Redraw()
	return v
}

// ToggleMirror flips the authoritative mirror flag and returns the new value
func (s *Session) ToggleMirror() bool {
	return s.mirror.Toggle()
}

// Overlay renders the current live keypoint set into a draw command list using
// the current visibility and mirror flags
func (s *Session) Overlay() pose.DrawList {
	s.mu.Lock()
	live := s.live
	visible := s.visible
	s.mu.Unlock()
	return pose.Render(live, visible, s.mirror.Mirrored())
}

// Status returns a consistent snapshot for the HTTP surface and the window
// text overlay
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ID:          s.id,
		Score:       s.score,
		HasBaseline: s.baseline.Load() != nil,
		Countdown:   s.capture.Remaining(),
		Counting:    s.capture.Active(),
		Mirrored:    s.mirror.Mirrored(),
		Skeleton:    s.visible,
		AdmittedFPS: s.rate,
		Message:     s.message,
	}
}

// setMessage records the status line text and pushes it to the display
func (s *Session) setMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
	s.display.ShowStatus(msg)
}

// Close tears the session down: admission stops, the countdown and
// reconciliation loops are cancelled and the estimator is released before
// returning. No callbacks are delivered afterwards.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		s.closeErr = s.estimator.Close()
	})
	return s.closeErr
}
