package layout

import (
	"image"

	"golang.org/x/image/draw"
)

// Frame scales img onto the matrix and returns one packed 0x00RRGGBB value
// per LED, in wiring order.
func (m Matrix) Frame(img image.Image) []uint32 {
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	out := make([]uint32, m.Count())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := dst.NRGBAAt(x, y)
			i, _ := m.Index(x, y)
			out[i] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
	}
	return out
}
