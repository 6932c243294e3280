package tracker

import (
	iface "CamFaceTrack/interface"
	"CamFaceTrack/logger"
	"CamFaceTrack/monitor"
)

// Tick runs the integration state machine once. The host calls it once
// per scheduling tick from a single goroutine; nothing in here blocks.
//
// Per tick: spawn a worker when enabled with none running, clear the
// running flag when disabled (a signal only, the worker finishes its
// current iteration first), reap completed worker handles, then drain
// the mailbox and republish every result in arrival order.
func (c *Controller) Tick(publish func(iface.DetectionResult)) {
	if c.Enabled && !c.running.Load() {
		logger.S().Info("starting webcam capture, launching capture and recognition worker")
		c.running.Store(true)
		c.handles = append(c.handles, c.startWorker())
	}
	if !c.Enabled && c.running.Load() {
		c.running.Store(false)
	}

	// reap without blocking; an unreaped handle would pin a stopped
	// worker in the bookkeeping forever
	kept := c.handles[:0]
	for _, h := range c.handles {
		select {
		case <-h.done:
			logger.S().Debugf("worker %s reaped", h.ID)
		default:
			kept = append(kept, h)
		}
	}
	c.handles = kept

	for {
		select {
		case result := <-c.results:
			// a nil publish is a discard drain, not a delivery
			if publish != nil {
				monitor.EventsTotal.Inc()
				publish(result)
			}
		default:
			return
		}
	}
}
