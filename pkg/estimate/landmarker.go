// Package estimate drives the external pose estimation model. The model runs
// as a helper subprocess (a MediaPipe style landmarker script): frames go in
// as JSON lines on stdin, detected keypoint sets come back as JSON lines on
// stdout. The Go side never blocks the camera on the model; submission is a
// pipe write and results are delivered asynchronously on a channel.
package estimate

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/poselab/pose-mirror/pkg/pose"
)

// maxResultLine bounds a single stdout line; a full 33 point result is well
// under 4KB
const maxResultLine = 64 * 1024

// frameRequest is one submitted frame on the subprocess stdin
type frameRequest struct {
	TimestampMs int64  `json:"ts"`
	JPEG        string `json:"jpeg"` //base64 encoded
}

// frameResult is one landmark set on the subprocess stdout. An empty points
// list means no person was detected in the frame.
type frameResult struct {
	TimestampMs int64        `json:"ts"`
	Points      []pose.Point `json:"points"`
}

// Landmarker owns the estimator subprocess. It implements session.Estimator.
// Because this function is the only writer of its results channel, it closes
// the channel when the subprocess output ends.
type Landmarker struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	results chan pose.Landmarks
	log     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Start launches the landmarker subprocess and begins reading its results.
// command is the full argv, e.g. ["python3", "landmarker.py"].
func Start(command []string, log *slog.Logger) (*Landmarker, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("estimate: empty landmarker command")
	}

	cmd := exec.Command(command[0], command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("estimate: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("estimate: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("estimate: starting %q: %w", command[0], err)
	}

	l := &Landmarker{
		cmd:     cmd,
		stdin:   stdin,
		results: make(chan pose.Landmarks, 1),
		log:     log,
	}

	go l.readResults(stdout)
	return l, nil
}

// Submit hands one JPEG encoded frame to the subprocess. A write failure is
// returned to the caller; the session degrades to "no new results" rather
// than crashing.
func (l *Landmarker) Submit(jpeg []byte, tsMs int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("estimate: landmarker closed")
	}

	req := frameRequest{
		TimestampMs: tsMs,
		JPEG:        base64.StdEncoding.EncodeToString(jpeg),
	}
	line, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("estimate: encoding frame: %w", err)
	}
	line = append(line, '\n')

	if _, err := l.stdin.Write(line); err != nil {
		return fmt.Errorf("estimate: writing frame: %w", err)
	}
	return nil
}

// Results is the asynchronous keypoint stream. The channel is closed when the
// subprocess output ends.
func (l *Landmarker) Results() <-chan pose.Landmarks {
	return l.results
}

// Close shuts the subprocess down: stdin closes, the process is waited on and
// no further results are delivered once the channel drains
func (l *Landmarker) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	if err := l.stdin.Close(); err != nil {
		l.log.Warn("estimate: closing landmarker stdin", "err", err)
	}
	if err := l.cmd.Wait(); err != nil {
		return fmt.Errorf("estimate: landmarker exit: %w", err)
	}
	return nil
}

// readResults parses stdout lines into landmark sets until the subprocess
// closes its output, then closes the results channel
func (l *Landmarker) readResults(stdout io.Reader) {
	defer close(l.results)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 4096), maxResultLine)

	for scanner.Scan() {
		var res frameResult
		if err := json.Unmarshal(scanner.Bytes(), &res); err != nil {
			l.log.Warn("estimate: skipping malformed result line", "err", err)
			continue
		}
		//latest wins: if the consumer is gone or busy the result is dropped,
		//never queued behind a stale one
		select {
		case l.results <- pose.Landmarks(res.Points):
		default:
		}
	}

	if err := scanner.Err(); err != nil {
		l.log.Error("estimate: reading landmarker output", "err", err)
	}
}
