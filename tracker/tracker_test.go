package tracker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	iface "CamFaceTrack/interface"
	"CamFaceTrack/monitor"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCamera struct {
	frame     []byte
	openErr   error
	cfgErr    error
	failFirst int64
	captures  atomic.Int64
}

func (s *stubCamera) Open(string) error { return s.openErr }

func (s *stubCamera) Configure(iface.CameraConfig) error { return s.cfgErr }

func (s *stubCamera) Close() error { return nil }

func (s *stubCamera) Capture() ([]byte, error) {
	n := s.captures.Add(1)
	if n <= s.failFirst {
		return nil, errors.New("frame dequeue failed")
	}
	return s.frame, nil
}

type stubDetector struct {
	candidates   []iface.Candidate
	scoreFromSeq bool
	detects      atomic.Int64
	lastGrayLen  atomic.Int64
	configured   atomic.Value
}

func (s *stubDetector) LoadCascade(string) error { return nil }

func (s *stubDetector) Configure(p iface.DetectorParams) { s.configured.Store(p) }

func (s *stubDetector) Destroy() {}

func (s *stubDetector) Detect(gray []byte, width, height int) []iface.Candidate {
	n := s.detects.Add(1)
	s.lastGrayLen.Store(int64(len(gray)))
	if s.scoreFromSeq {
		// hand each frame a unique, strictly increasing score so the
		// drain order is observable on the consumer side
		return []iface.Candidate{{X: 0, Y: 0, Width: 2, Height: 2, Score: float32(n)}}
	}
	return s.candidates
}

func newTestController(det *stubDetector, autostart bool) (*Controller, *stubCamera) {
	cam := &stubCamera{frame: make([]byte, 4*2*2)}
	return newTestControllerWith(cam, det, autostart), cam
}

func newTestControllerWith(cam *stubCamera, det *stubDetector, autostart bool) *Controller {
	cfg := iface.CameraConfig{Device: "/dev/video9", Width: 4, Height: 2, Framerate: 30}
	return NewController(cfg, autostart,
		func() iface.Camera { return cam },
		func() iface.FaceDetector { return det })
}

func stopController(t *testing.T, ctrl *Controller) {
	t.Helper()
	ctrl.Enabled = false
	require.Eventually(t, func() bool {
		ctrl.Tick(nil)
		return !ctrl.Running() && ctrl.WorkerCount() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLifecycle(t *testing.T) {
	det := &stubDetector{}
	ctrl, _ := newTestController(det, false)

	t.Run("Test DisabledTickIsIdle", func(t *testing.T) {
		ctrl.Tick(nil)
		assert.False(t, ctrl.Running())
		assert.Equal(t, 0, ctrl.WorkerCount())
	})

	t.Run("Test EnableSpawnsExactlyOneWorker", func(t *testing.T) {
		ctrl.Enabled = true
		ctrl.Tick(nil)
		assert.True(t, ctrl.Running())
		assert.Equal(t, 1, ctrl.WorkerCount())

		// further ticks must not stack workers
		ctrl.Tick(nil)
		ctrl.Tick(nil)
		assert.Equal(t, 1, ctrl.WorkerCount())
	})

	t.Run("Test DisableStopsAfterIteration", func(t *testing.T) {
		// wait until the worker is parked in its blocking publish
		require.Eventually(t, func() bool {
			return det.detects.Load() >= 2
		}, 2*time.Second, time.Millisecond)

		ctrl.Enabled = false
		ctrl.Tick(nil)
		// the stop is a signal; the worker finishes its in-flight
		// iteration before the handle can be reaped
		assert.False(t, ctrl.Running())
		require.Eventually(t, func() bool {
			ctrl.Tick(nil)
			return ctrl.WorkerCount() == 0
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("Test ReEnableSpawnsFreshWorker", func(t *testing.T) {
		before := det.detects.Load()
		ctrl.Enabled = true
		ctrl.Tick(nil)
		assert.Equal(t, 1, ctrl.WorkerCount())
		require.Eventually(t, func() bool {
			return det.detects.Load() > before
		}, 2*time.Second, time.Millisecond)
		stopController(t, ctrl)
	})
}

func TestMailboxBackpressure(t *testing.T) {
	det := &stubDetector{scoreFromSeq: true}
	ctrl, _ := newTestController(det, true)

	ctrl.Tick(nil)
	require.True(t, ctrl.Running())

	// without draining, the worker runs exactly two iterations: the
	// first result sits undelivered in the slot, the second send blocks
	require.Eventually(t, func() bool {
		return det.detects.Load() == 2
	}, 2*time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(2), det.detects.Load(), "sender must stall, not overwrite")

	// draining unblocks the producer; published scores arrive in
	// production order with nothing skipped
	var published []float32
	require.Eventually(t, func() bool {
		ctrl.Tick(func(r iface.DetectionResult) {
			published = append(published, r.Score)
		})
		return len(published) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	for i, score := range published {
		assert.Equal(t, float32(i+1), score)
	}
	stopController(t, ctrl)
}

func TestEndToEnd(t *testing.T) {
	// fixed 4x2 YUYV frame; content is irrelevant to the stub detector
	// but its grayscale plane must reach Detect at full resolution
	det := &stubDetector{candidates: []iface.Candidate{
		{X: 0, Y: 1, Width: 2, Height: 1, Score: 4.25},
	}}
	ctrl, cam := newTestController(det, true)

	var events []iface.DetectionResult
	require.Eventually(t, func() bool {
		ctrl.Tick(func(r iface.DetectionResult) {
			events = append(events, r)
		})
		return len(events) >= 1
	}, 2*time.Second, 5*time.Millisecond)

	want := iface.DetectionResult{
		// center_x = (2/2 + 0) - 4/2, center_y = (1/2 + 1) - 2/2
		CenterX: -1,
		CenterY: 0,
		X:       0,
		Y:       1,
		Width:   2,
		Height:  1,
		Score:   4.25,
	}
	assert.Equal(t, want, events[0])
	assert.Equal(t, int64(4*2), det.lastGrayLen.Load(), "grayscale plane is one byte per pixel")
	assert.Greater(t, cam.captures.Load(), int64(0))
	assert.Equal(t, iface.DefaultDetectorParams, det.configured.Load(), "worker applies the shared detector thresholds")

	stopController(t, ctrl)
}

func TestCameraFailuresAreNonFatal(t *testing.T) {
	// has the worker publish once despite the reported failure, then
	// shuts it down cleanly
	runThrough := func(t *testing.T, cam *stubCamera) {
		t.Helper()
		det := &stubDetector{candidates: []iface.Candidate{
			{X: 1, Y: 0, Width: 2, Height: 2, Score: 3},
		}}
		ctrl := newTestControllerWith(cam, det, true)

		var events []iface.DetectionResult
		require.Eventually(t, func() bool {
			ctrl.Tick(func(r iface.DetectionResult) {
				events = append(events, r)
			})
			return len(events) >= 1
		}, 2*time.Second, 5*time.Millisecond)

		assert.Equal(t, float32(3), events[0].Score)
		stopController(t, ctrl)
	}

	t.Run("Test OpenFailure", func(t *testing.T) {
		cam := &stubCamera{frame: make([]byte, 4*2*2), openErr: errors.New("no such device")}
		runThrough(t, cam)
	})

	t.Run("Test ConfigureFailure", func(t *testing.T) {
		cam := &stubCamera{frame: make([]byte, 4*2*2), cfgErr: errors.New("format not supported")}
		runThrough(t, cam)
	})
}

func TestCaptureFailureRetriesWithPause(t *testing.T) {
	det := &stubDetector{scoreFromSeq: true}
	cam := &stubCamera{frame: make([]byte, 4*2*2), failFirst: 2}
	ctrl := newTestControllerWith(cam, det, true)

	start := time.Now()
	var events []iface.DetectionResult
	require.Eventually(t, func() bool {
		ctrl.Tick(func(r iface.DetectionResult) {
			events = append(events, r)
		})
		return len(events) >= 1
	}, 5*time.Second, 5*time.Millisecond)

	// both failed captures were retried rather than killing the loop,
	// and each one paced the loop before the next attempt
	assert.GreaterOrEqual(t, cam.captures.Load(), int64(3))
	assert.GreaterOrEqual(t, time.Since(start), 2*captureRetryDelay)
	assert.Equal(t, float32(1), events[0].Score, "failed captures reach the detector zero times")

	stopController(t, ctrl)
}

func TestEventCounterSkipsDiscardedResults(t *testing.T) {
	det := &stubDetector{scoreFromSeq: true}
	ctrl, _ := newTestController(det, true)

	ctrl.Tick(nil)
	require.Eventually(t, func() bool {
		return det.detects.Load() >= 2
	}, 2*time.Second, time.Millisecond)

	// a nil-publish drain (the host's shutdown path) discards results
	// without counting them as delivered
	before := testutil.ToFloat64(monitor.EventsTotal)
	ctrl.Enabled = false
	require.Eventually(t, func() bool {
		ctrl.Tick(nil)
		return !ctrl.Running() && ctrl.WorkerCount() == 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, before, testutil.ToFloat64(monitor.EventsTotal))

	// delivered results do count, one increment per publish call
	ctrl.Enabled = true
	published := 0
	require.Eventually(t, func() bool {
		ctrl.Tick(func(iface.DetectionResult) { published++ })
		return published >= 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, before+float64(published), testutil.ToFloat64(monitor.EventsTotal))

	stopController(t, ctrl)
}
