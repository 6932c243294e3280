package iface

// DetectionResult carries one face fix in frame-center coordinates.
// Origin is the middle of the camera frame, positive x right, positive
// y down. The zero value means "no face in this frame" and is a valid
// result, not an error.
type DetectionResult struct {
	CenterX int     `json:"centerX"`
	CenterY int     `json:"centerY"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Score   float32 `json:"score"`
}

// Candidate is one raw detector hit: bounding box in pixel coordinates
// plus the detector confidence.
type Candidate struct {
	X      int
	Y      int
	Width  int
	Height int
	Score  float32
}

// CameraConfig is fixed at controller construction and never mutated
// afterwards.
type CameraConfig struct {
	Device    string
	Width     int
	Height    int
	Framerate int
}

// DetectorParams mirrors the tunables of the cascade backend.
type DetectorParams struct {
	MinFaceSize    int
	ScoreThreshold float32
	PyramidScale   float32
	WindowStepX    int
	WindowStepY    int
}

// DefaultDetectorParams are the fixed thresholds every worker applies;
// the single source of truth for both the tracker and the engine.
var DefaultDetectorParams = DetectorParams{
	MinFaceSize:    20,
	ScoreThreshold: 2.0,
	PyramidScale:   0.8,
	WindowStepX:    4,
	WindowStepY:    4,
}
