package tracker

import (
	"time"

	"CamFaceTrack/convert"
	iface "CamFaceTrack/interface"
	"CamFaceTrack/logger"
	"CamFaceTrack/monitor"

	"github.com/google/uuid"
)

// captureRetryDelay paces the loop after a failed capture so an absent
// or wedged device does not spin it hot.
const captureRetryDelay = 100 * time.Millisecond

// startWorker spawns the capture goroutine and returns its handle.
// The caller must have set running beforehand, otherwise the loop
// exits on its first flag check.
func (c *Controller) startWorker() *WorkerHandle {
	h := &WorkerHandle{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		c.runWorker(h.ID)
	}()
	return h
}

// runWorker is the capture-detect loop. It owns the camera and
// detector handles for its whole lifetime.
//
// Startup policy: a camera that fails to open or configure is logged
// and the loop proceeds anyway; capture itself may still work or will
// keep reporting errors. A cascade that fails to load is the one
// unrecoverable error and terminates the process.
func (c *Controller) runWorker(id string) {
	cam := c.newCamera()
	if err := cam.Open(c.cfg.Device); err != nil {
		logger.S().Errorf("worker %s: failed to open camera device: %v", id, err)
	} else if err := cam.Configure(c.cfg); err != nil {
		logger.S().Errorf("worker %s: failed to configure camera device: %v", id, err)
	}
	defer func() {
		if err := cam.Close(); err != nil {
			logger.S().Errorf("worker %s: camera close: %v", id, err)
		}
	}()

	det := c.newDetector()
	if err := det.LoadCascade(CascadeAssetPath); err != nil {
		logger.Log().Fatal("failed to load face cascade: " + err.Error())
	}
	det.Configure(iface.DefaultDetectorParams)
	defer det.Destroy()

	width, height := c.cfg.Width, c.cfg.Height
	for c.running.Load() {
		buf, err := cam.Capture()
		if err != nil {
			// transient dequeue failures are retried on the next
			// iteration; a disabled tracker still stops the loop
			logger.S().Errorf("worker %s: capture: %v", id, err)
			time.Sleep(captureRetryDelay)
			continue
		}
		rgb := convert.YUYVToRGB(buf, width, height)
		gray := convert.RGBToGray(rgb, width, height)
		candidates := det.Detect(gray, width, height)

		monitor.FramesTotal.Inc()
		if len(candidates) > 0 {
			monitor.FacesTotal.Inc()
		}

		// blocks while the previous result is undelivered; the driver
		// drains every tick, so a stall here means the host stopped
		// ticking and the capture pace is meant to stall with it
		c.results <- SelectCandidate(candidates, width, height)
	}
	logger.S().Infof("worker %s: camera stopped, capture loop off", id)
}
