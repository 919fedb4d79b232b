package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poselab/pose-mirror/pkg/pose"
)

// fakeEstimator is an in-memory estimator double: submitted frames are
// counted, results are pushed by the test
type fakeEstimator struct {
	mu      sync.Mutex
	results chan pose.Landmarks
	submits int
	closed  bool
}

func newFakeEstimator() *fakeEstimator {
	return &fakeEstimator{results: make(chan pose.Landmarks, 8)}
}

func (f *fakeEstimator) Submit(jpeg []byte, tsMs int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("closed")
	}
	f.submits++
	return nil
}

func (f *fakeEstimator) Results() <-chan pose.Landmarks {
	return f.results
}

func (f *fakeEstimator) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.results)
	}
	return nil
}

func (f *fakeEstimator) submitted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

func newTestSession(t *testing.T, cfg Config) (*Session, *fakeEstimator, *fakeTransform, *fakeTransform, *fakeDisplay) {
	t.Helper()
	est := newFakeEstimator()
	cam := &fakeTransform{}
	overlay := &fakeTransform{}
	display := &fakeDisplay{}
	s := New(cfg, est, cam, overlay, display, discardLogger())
	return s, est, cam, overlay, display
}

func TestSessionOfferFrameGatesEncoding(t *testing.T) {
	s, est, _, _, _ := newTestSession(t, Config{TargetFPS: 10})

	encodes := 0
	encode := func() ([]byte, error) {
		encodes++
		return []byte{0xff}, nil
	}

	s.OfferFrame(1000, encode)
	s.OfferFrame(1050, encode) //dropped by the gate, encode never runs
	s.OfferFrame(1100, encode)

	assert.Equal(t, 2, encodes)
	assert.Equal(t, 2, est.submitted())
}

func TestSessionScoresResultsAgainstBaseline(t *testing.T) {
	s, est, _, _, display := newTestSession(t, Config{
		TargetFPS:        10,
		CountdownSeconds: 2,
		TickPeriod:       5 * time.Millisecond,
	})
	s.Start(context.Background())
	defer s.Close()

	kps := testPose()
	est.results <- kps

	//live set lands without a score while no baseline exists
	require.Eventually(t, func() bool {
		return len(s.Overlay().Markers) == pose.NumLandmarks
	}, time.Second, time.Millisecond)
	assert.False(t, s.Status().HasBaseline)
	assert.Empty(t, s.Status().Score.OverallGrade)

	//capture the baseline, then the next result scores against it
	require.True(t, s.StartCapture())
	require.Eventually(t, func() bool {
		return s.Status().HasBaseline
	}, time.Second, time.Millisecond)

	est.results <- kps.Clone()
	require.Eventually(t, func() bool {
		return s.Status().Score.Overall == 100
	}, time.Second, time.Millisecond)

	st := s.Status()
	assert.Equal(t, "A", st.Score.OverallGrade)

	display.mu.Lock()
	shown := len(display.scores)
	display.mu.Unlock()
	assert.NotZero(t, shown)
}

func TestSessionEmptyCaptureLeavesBaseline(t *testing.T) {
	s, _, _, _, _ := newTestSession(t, Config{
		TargetFPS:        10,
		CountdownSeconds: 1,
		TickPeriod:       5 * time.Millisecond,
	})
	s.Start(context.Background())
	defer s.Close()

	require.True(t, s.StartCapture())
	require.Eventually(t, func() bool {
		return !s.Status().Counting
	}, time.Second, time.Millisecond)

	//no live keypoints at the final tick: capture is a silent no-op
	assert.False(t, s.Status().HasBaseline)
}

func TestSessionToggles(t *testing.T) {
	s, _, cam, overlay, _ := newTestSession(t, Config{TargetFPS: 10})

	assert.True(t, s.ToggleMirror())
	assert.True(t, cam.Mirrored())
	assert.True(t, overlay.Mirrored())
	assert.True(t, s.Status().Mirrored)

	assert.False(t, s.ToggleSkeleton())
	assert.False(t, s.Status().Skeleton)
	//a hidden overlay yields no draw commands
	assert.Empty(t, s.Overlay().Lines)
	assert.Empty(t, s.Overlay().Markers)
}

func TestSessionCloseStopsEverything(t *testing.T) {
	s, est, _, _, _ := newTestSession(t, Config{
		TargetFPS:  10,
		TickPeriod: 5 * time.Millisecond,
	})
	s.Start(context.Background())

	require.NoError(t, s.Close())

	est.mu.Lock()
	closed := est.closed
	est.mu.Unlock()
	assert.True(t, closed)

	//admission stops after teardown: encode must not run
	s.OfferFrame(time.Now().UnixMilli(), func() ([]byte, error) {
		t.Fatal("frame admitted after close")
		return nil, nil
	})

	//Close is idempotent
	assert.NoError(t, s.Close())
}

func TestSessionBaselineIsSnapshot(t *testing.T) {
	s, est, _, _, _ := newTestSession(t, Config{
		TargetFPS:        10,
		CountdownSeconds: 1,
		TickPeriod:       5 * time.Millisecond,
	})
	s.Start(context.Background())
	defer s.Close()

	kps := testPose()
	est.results <- kps
	require.Eventually(t, func() bool {
		return len(s.Overlay().Markers) == pose.NumLandmarks
	}, time.Second, time.Millisecond)

	require.True(t, s.StartCapture())
	require.Eventually(t, func() bool {
		return s.Status().HasBaseline
	}, time.Second, time.Millisecond)

	//a later, deformed live set scores against the committed snapshot, not
	//against itself: a self comparison would stay at 100
	bent := testPose()
	bent[pose.LeftWrist] = pose.Point{X: 900, Y: 900}
	bent[pose.RightAnkle] = pose.Point{X: -900, Y: 400}
	est.results <- bent
	require.Eventually(t, func() bool {
		sc := s.Status().Score.Overall
		return sc > 0 && sc < 100
	}, time.Second, time.Millisecond)
}
