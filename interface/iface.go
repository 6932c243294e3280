package iface

// Camera is the capture side of the pipeline. The worker owns one
// instance for its whole lifetime; implementations are not required to
// be safe for concurrent use.
type Camera interface {
	Open(device string) error
	Configure(cfg CameraConfig) error
	// Capture blocks until the device yields one frame and returns the
	// raw packed YUYV422 buffer, length >= width*height*2.
	Capture() ([]byte, error)
	Close() error
}

// FaceDetector is the inference side of the pipeline.
type FaceDetector interface {
	// LoadCascade reads and unpacks the classifier asset. A failure
	// here is the one unrecoverable startup error of the worker.
	LoadCascade(path string) error
	Configure(params DetectorParams)
	// Detect scans a grayscale plane (row-major, one byte per pixel)
	// and returns zero or more candidates.
	Detect(gray []byte, width, height int) []Candidate
	Destroy()
}
