package convert

// BT.601-style conversion coefficients.
const (
	coefRV = 1.4075
	coefGU = 0.3455
	coefGV = 0.7169
	coefBU = 1.7790
)

func clamp(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// YUYVToRGB converts a packed YUYV422 buffer into interleaved RGB24.
// Input length must be at least width*height*2; width and height are
// assumed even. Output is width*height*3 bytes, row-major, no padding.
//
// Pixels are processed in horizontal pairs: each pair carries two luma
// samples and a shared U/V pair. Values saturate to [0,255] before
// truncation; a plain cast would wrap on out-of-range chroma.
func YUYVToRGB(yuyv []byte, width, height int) []byte {
	rgb := make([]byte, width*height*3)
	for i := 0; i < width*height; i += 2 {
		y0 := float32(yuyv[i*2])
		u := float32(yuyv[i*2+1]) - 128.0
		y1 := float32(yuyv[i*2+2])
		v := float32(yuyv[i*2+3]) - 128.0

		idx := i * 3
		rgb[idx] = clamp(y0 + coefRV*v)
		rgb[idx+1] = clamp(y0 - coefGU*u - coefGV*v)
		rgb[idx+2] = clamp(y0 + coefBU*u)
		rgb[idx+3] = clamp(y1 + coefRV*v)
		rgb[idx+4] = clamp(y1 - coefGU*u - coefGV*v)
		rgb[idx+5] = clamp(y1 + coefBU*u)
	}
	return rgb
}

// RGBToGray builds the grayscale plane the detector consumes, one byte
// per pixel, BT.601 luma weights.
func RGBToGray(rgb []byte, width, height int) []byte {
	gray := make([]byte, width*height)
	for i := 0; i < width*height; i++ {
		r := float32(rgb[i*3])
		g := float32(rgb[i*3+1])
		b := float32(rgb[i*3+2])
		gray[i] = clamp(0.299*r + 0.587*g + 0.114*b)
	}
	return gray
}
