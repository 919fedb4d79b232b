package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MirrorManager is the single source of truth for the mirror flag. Toggle
// pushes the new value to the camera transform and the overlay transform in
// the same step; a periodic reconciliation pass re-applies the authoritative
// value if the overlay reports drift (a collaborator re-binding its surface
// can silently revert the transform underneath us).
type MirrorManager struct {
	mu      sync.Mutex
	flag    bool
	camera  CameraTransform
	overlay OverlayTransform
	display Display
	log     *slog.Logger
}

// NewMirrorManager returns a manager with the flag off and both collaborators
// aligned to it
func NewMirrorManager(camera CameraTransform, overlay OverlayTransform, display Display, log *slog.Logger) *MirrorManager {
	m := &MirrorManager{
		camera:  camera,
		overlay: overlay,
		display: display,
		log:     log,
	}
	m.apply()
	return m
}

// Toggle flips the authoritative flag, pushes it to both collaborators and
// forces a redraw. Returns the new value.
func (m *MirrorManager) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flag = !m.flag
	m.apply()
	m.display.Redraw()
	return m.flag
}

// Mirrored returns the authoritative flag value
func (m *MirrorManager) Mirrored() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flag
}

// Reconcile re-applies the authoritative flag if the overlay has drifted from
// it. Called periodically by Run and usable directly from tests.
func (m *MirrorManager) Reconcile() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overlay.Mirrored() == m.flag {
		return
	}
	m.log.Warn("mirror: overlay drifted from authoritative flag, re-applying", "flag", m.flag)
	m.apply()
	m.display.Redraw()
}

// Run drives the reconciliation loop until ctx is cancelled. It must not
// outlive the owning session; the session cancels ctx during teardown.
func (m *MirrorManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reconcile()
		}
	}
}

// apply pushes the current flag to both collaborators. Callers hold m.mu.
func (m *MirrorManager) apply() {
	m.camera.SetMirror(m.flag)
	m.overlay.SetMirror(m.flag)
}
