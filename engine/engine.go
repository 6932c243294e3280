package engine

import (
	"fmt"
	"os"

	iface "CamFaceTrack/interface"

	pigo "github.com/esimov/pigo/core"
)

// Detector wraps a pigo cascade classifier behind iface.FaceDetector.
// One Detector belongs to one worker goroutine; it is not safe for
// concurrent Detect calls.
type Detector struct {
	CascadePath string
	Params      iface.DetectorParams
	State       int

	classifier *pigo.Pigo
}

func New() *Detector {
	return &Detector{
		Params: iface.DefaultDetectorParams,
		State:  REGISTERED,
	}
}

// LoadCascade reads the binary cascade asset and unpacks it. The
// worker treats any error from here as fatal to the whole process.
func (d *Detector) LoadCascade(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cascade %s: %w", path, err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return fmt.Errorf("unpack cascade %s: %w", path, err)
	}
	d.classifier = classifier
	d.CascadePath = path
	d.State = IDLE
	return nil
}

func (d *Detector) Configure(params iface.DetectorParams) {
	d.Params = params
}

// Detect scans one grayscale plane and returns every surviving
// candidate after IoU clustering and score filtering.
func (d *Detector) Detect(gray []byte, width, height int) []iface.Candidate {
	if d.State != IDLE || d.classifier == nil {
		return nil
	}
	d.State = BUSY
	cParams := pigo.CascadeParams{
		MinSize:     d.Params.MinFaceSize,
		MaxSize:     maxWindow(width, height),
		ShiftFactor: shiftFactor(d.Params),
		ScaleFactor: scaleFactor(d.Params.PyramidScale),
		ImageParams: pigo.ImageParams{
			Pixels: gray,
			Rows:   height,
			Cols:   width,
			Dim:    width,
		},
	}
	dets := d.classifier.RunCascade(cParams, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)
	d.State = IDLE
	return detectionsToCandidates(dets, d.Params.ScoreThreshold)
}

func (d *Detector) Destroy() {
	d.classifier = nil
	d.CascadePath = ""
	d.State = UNREGISTERED
}

// shiftFactor expresses the pixel slide step relative to the minimum
// detection window, which is how pigo parameterizes it.
func shiftFactor(p iface.DetectorParams) float64 {
	step := p.WindowStepX
	if p.WindowStepY > step {
		step = p.WindowStepY
	}
	if step <= 0 || p.MinFaceSize <= 0 {
		return 0.1
	}
	return float64(step) / float64(p.MinFaceSize)
}

// scaleFactor converts a downscale-per-level pyramid factor (<1) into
// pigo's grow-per-level form (>1).
func scaleFactor(pyramid float32) float64 {
	if pyramid <= 0 || pyramid >= 1 {
		return 1.1
	}
	return 1.0 / float64(pyramid)
}

func maxWindow(width, height int) int {
	if height < width {
		return height
	}
	return width
}

// detectionsToCandidates turns pigo center/scale detections into
// bounding boxes and drops everything under the score threshold.
func detectionsToCandidates(dets []pigo.Detection, threshold float32) []iface.Candidate {
	var out []iface.Candidate
	for _, det := range dets {
		if det.Q < threshold {
			continue
		}
		out = append(out, iface.Candidate{
			X:      det.Col - det.Scale/2,
			Y:      det.Row - det.Scale/2,
			Width:  det.Scale,
			Height: det.Scale,
			Score:  det.Q,
		})
	}
	return out
}
