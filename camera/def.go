package camera

import (
	"fmt"

	iface "CamFaceTrack/interface"

	"gocv.io/x/gocv"
)

// V4L2Camera captures raw YUYV frames from a /dev/video* device via
// OpenCV. RGB conversion is disabled on the capture handle so Read
// hands back the packed buffer untouched; the pipeline does its own
// colorspace work.
type V4L2Camera struct {
	device string
	width  int
	height int

	handle *gocv.VideoCapture
	mat    gocv.Mat
}

func New() *V4L2Camera {
	return &V4L2Camera{mat: gocv.NewMat()}
}

func (c *V4L2Camera) Open(device string) error {
	handle, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return fmt.Errorf("open %s: %w", device, err)
	}
	c.handle = handle
	c.device = device
	return nil
}

func (c *V4L2Camera) Configure(cfg iface.CameraConfig) error {
	if c.handle == nil {
		return fmt.Errorf("configure %s: device not open", cfg.Device)
	}
	c.width = cfg.Width
	c.height = cfg.Height
	c.handle.Set(gocv.VideoCaptureFOURCC, fourcc('Y', 'U', 'Y', 'V'))
	c.handle.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	c.handle.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	c.handle.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	c.handle.Set(gocv.VideoCaptureConvertRGB, 0)
	return nil
}

// Capture blocks until the driver dequeues one frame and returns the
// packed YUYV bytes.
func (c *V4L2Camera) Capture() ([]byte, error) {
	if c.handle == nil {
		return nil, fmt.Errorf("capture %s: device not open", c.device)
	}
	if ok := c.handle.Read(&c.mat); !ok {
		return nil, fmt.Errorf("capture %s: read failed", c.device)
	}
	if c.mat.Empty() {
		return nil, fmt.Errorf("capture %s: empty frame", c.device)
	}
	buf := c.mat.ToBytes()
	if want := c.width * c.height * 2; len(buf) < want {
		return nil, fmt.Errorf("capture %s: short frame %d < %d", c.device, len(buf), want)
	}
	return buf, nil
}

func (c *V4L2Camera) Close() error {
	if err := c.mat.Close(); err != nil {
		return err
	}
	if c.handle == nil {
		return nil
	}
	handle := c.handle
	c.handle = nil
	return handle.Close()
}

func fourcc(a, b, c, d byte) float64 {
	return float64(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}
