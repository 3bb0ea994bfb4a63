package st7789

import "image"

// Rotation selects the transform applied to the canvas before it is encoded
// for the panel. The controller's memory access register is left at its
// reset value and the rotation happens in software, so the same value works
// on panels whose MADCTL mirroring differs between production batches.
type Rotation uint8

const (
	NoRotation Rotation = iota
	Rotate90            // clockwise
	Rotate180
	Rotate270 // counter-clockwise
)

// sourceFor maps a destination pixel back to its source coordinate for a
// square w x h raster.
func sourceFor(x, y, w, h int, rot Rotation) (int, int) {
	switch rot {
	case Rotate90:
		return y, h - 1 - x
	case Rotate180:
		return w - 1 - x, h - 1 - y
	case Rotate270:
		return w - 1 - y, x
	default:
		return x, y
	}
}

// EncodeRGB565 converts an RGB888 raster into the panel's native pixel
// stream: rotation first, then each pixel packed to 16-bit RGB565 and
// emitted big-endian, high byte first, in row-major order. It is a pure
// function, no bus access happens here.
func EncodeRGB565(img *image.RGBA, rot Rotation) []byte {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	out := make([]byte, 0, w*h*2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := sourceFor(x, y, w, h, rot)
			i := img.PixOffset(bounds.Min.X+sx, bounds.Min.Y+sy)
			r := img.Pix[i]
			g := img.Pix[i+1]
			b := img.Pix[i+2]
			c := uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3
			out = append(out, byte(c>>8), byte(c))
		}
	}
	return out
}
