package estimate

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poselab/pose-mirror/pkg/pose"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartRejectsEmptyCommand(t *testing.T) {
	_, err := Start(nil, testLogger())
	assert.Error(t, err)
}

func TestStartRejectsMissingBinary(t *testing.T) {
	_, err := Start([]string{"definitely-not-a-real-landmarker"}, testLogger())
	assert.Error(t, err)
}

func TestResultsParsedFromStdout(t *testing.T) {
	//echo emits one well formed result line and exits
	l, err := Start([]string{
		"echo", `{"ts":5,"points":[{"x":1,"y":2},{"x":3,"y":4}]}`,
	}, testLogger())
	require.NoError(t, err)

	select {
	case kps := <-l.Results():
		assert.Equal(t, pose.Landmarks{{X: 1, Y: 2}, {X: 3, Y: 4}}, kps)
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}

	//stdout ended, the channel must close
	select {
	case _, ok := <-l.Results():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("results channel not closed after subprocess exit")
	}

	assert.NoError(t, l.Close())
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	l, err := Start([]string{"echo", "not json at all"}, testLogger())
	require.NoError(t, err)

	select {
	case _, ok := <-l.Results():
		//only the close may be observed, never a keypoint set
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("results channel not closed")
	}

	assert.NoError(t, l.Close())
}

func TestSubmitRoundTrip(t *testing.T) {
	//cat echoes the request line back; it parses as a result with no points,
	//which is the "nothing detected" shape
	l, err := Start([]string{"cat"}, testLogger())
	require.NoError(t, err)

	require.NoError(t, l.Submit([]byte{0xde, 0xad}, 42))

	select {
	case kps := <-l.Results():
		assert.Empty(t, kps)
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}

	require.NoError(t, l.Close())

	//submission after close is refused rather than writing to a dead pipe
	assert.Error(t, l.Submit([]byte{0x01}, 43))
}
