package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYUYVToRGB_All(t *testing.T) {
	t.Run("Test OutputLength", func(t *testing.T) {
		width, height := 8, 4
		src := make([]byte, width*height*2)
		out := YUYVToRGB(src, width, height)
		assert.Equal(t, width*height*3, len(out))
	})

	t.Run("Test NeutralGray", func(t *testing.T) {
		// Y=128 U=128 V=128 decodes to mid gray on every channel
		width, height := 2, 2
		src := []byte{128, 128, 128, 128, 128, 128, 128, 128}
		out := YUYVToRGB(src, width, height)
		for i, b := range out {
			assert.InDelta(t, 128, int(b), 1, "channel %d", i)
		}
	})

	t.Run("Test Saturation", func(t *testing.T) {
		width, height := 2, 2
		// Max luma with extreme chroma pushes R and B past 255,
		// min luma pushes channels below 0.
		hot := []byte{255, 255, 255, 255, 0, 0, 0, 0}
		out := YUYVToRGB(hot, width, height)
		for _, b := range out {
			assert.GreaterOrEqual(t, int(b), 0)
			assert.LessOrEqual(t, int(b), 255)
		}
		// pixel 0: Y=255 V=127 -> R would be 433.75 without clamping
		assert.Equal(t, uint8(255), out[0])
		// pixel 2: Y=0 U=-128 V=-128 -> R would be -180.16 without clamping
		assert.Equal(t, uint8(0), out[6])
	})

	t.Run("Test KnownPixelPair", func(t *testing.T) {
		width, height := 2, 2
		// Y0=100 U=90 Y1=200 V=180
		src := []byte{100, 90, 200, 180, 128, 128, 128, 128}
		out := YUYVToRGB(src, width, height)

		// R0 = 100 + 1.4075*52  = 173.19
		// G0 = 100 - 0.3455*-38 - 0.7169*52 = 75.85
		// B0 = 100 + 1.7790*-38 = 32.40
		assert.Equal(t, uint8(173), out[0])
		assert.Equal(t, uint8(75), out[1])
		assert.Equal(t, uint8(32), out[2])
		// second pixel shares the chroma pair
		// R1 = 200 + 1.4075*52  = 273.19 -> clamped
		assert.Equal(t, uint8(255), out[3])
		assert.Equal(t, uint8(175), out[4])
		assert.Equal(t, uint8(132), out[5])
	})
}

func TestRGBToGray(t *testing.T) {
	t.Run("Test Length", func(t *testing.T) {
		width, height := 4, 2
		gray := RGBToGray(make([]byte, width*height*3), width, height)
		assert.Equal(t, width*height, len(gray))
	})

	t.Run("Test LumaWeights", func(t *testing.T) {
		width, height := 2, 1
		rgb := []byte{255, 0, 0, 0, 255, 0}
		gray := RGBToGray(rgb, width, height)
		// 0.299*255 = 76.2, 0.587*255 = 149.7
		assert.Equal(t, uint8(76), gray[0])
		assert.Equal(t, uint8(149), gray[1])
	})

	t.Run("Test GrayIsIdentity", func(t *testing.T) {
		rgb := []byte{128, 128, 128}
		gray := RGBToGray(rgb, 1, 1)
		assert.InDelta(t, 128, int(gray[0]), 1)
	})
}
