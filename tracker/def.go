package tracker

import (
	"sync/atomic"

	iface "CamFaceTrack/interface"
)

// CascadeAssetPath is where the worker loads its face classifier from.
// Shipping installs must place the asset here; there is no override.
const CascadeAssetPath = "assets/cascades/facefinder"

// Controller is the shared state between the integration driver and
// the capture worker. Exactly one exists per tracked camera.
//
// Enabled is host intent and must only be touched from the driver's
// goroutine (the host serializes external toggles onto it). running is
// the single cross-goroutine flag: the driver sets it on spawn and
// clears it to request a stop, the worker polls it once per iteration.
// The results channel has capacity one; a worker send blocks while a
// previous result is still undelivered, which is the backpressure
// contract that keeps the capture loop from outrunning the host.
type Controller struct {
	Enabled bool

	running atomic.Bool
	cfg     iface.CameraConfig
	results chan iface.DetectionResult
	handles []*WorkerHandle

	newCamera   func() iface.Camera
	newDetector func() iface.FaceDetector
}

// WorkerHandle is the driver's bookkeeping for one in-flight worker.
// done is closed by the worker goroutine on exit.
type WorkerHandle struct {
	ID   string
	done chan struct{}
}

// NewController wires a controller with its collaborator factories.
// cfg is immutable from here on; autostart seeds Enabled.
func NewController(cfg iface.CameraConfig, autostart bool, newCamera func() iface.Camera, newDetector func() iface.FaceDetector) *Controller {
	return &Controller{
		Enabled:     autostart,
		cfg:         cfg,
		results:     make(chan iface.DetectionResult, 1),
		newCamera:   newCamera,
		newDetector: newDetector,
	}
}

// Running reports whether a worker is (still) flagged alive.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// WorkerCount returns the number of unreaped worker handles. Call from
// the driver context only.
func (c *Controller) WorkerCount() int {
	return len(c.handles)
}

// Config returns the immutable device configuration.
func (c *Controller) Config() iface.CameraConfig {
	return c.cfg
}
