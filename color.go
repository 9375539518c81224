package neopixel

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Bit offsets of each component in a packed 0xWWRRGGBB value.
const (
	WhiteOffset uint8 = 24
	RedOffset   uint8 = 16
	GreenOffset uint8 = 8
	BlueOffset  uint8 = 0
)

func setcomponent(c uint32, n uint8, off uint8) uint32 {
	var mask uint32 = 0xFF << off
	return (c &^ mask) | uint32(n)<<off
}

func component(c uint32, off uint8) uint8 {
	return uint8(c >> off & 0xFF)
}

// Color packs red, green and blue into the value the strip buffers hold.
func Color(red, green, blue uint8) uint32 {
	return ColorRGBW(red, green, blue, 0)
}

// ColorRGBW packs all four components, for SK6812 RGBW strips.
func ColorRGBW(red, green, blue, white uint8) uint32 {
	var c uint32
	c = setcomponent(c, white, WhiteOffset)
	c = setcomponent(c, red, RedOffset)
	c = setcomponent(c, green, GreenOffset)
	c = setcomponent(c, blue, BlueOffset)
	return c
}

// Components unpacks c.
func Components(c uint32) (red, green, blue, white uint8) {
	return component(c, RedOffset), component(c, GreenOffset), component(c, BlueOffset), component(c, WhiteOffset)
}

// Wheel maps a position 0-255 onto a red-green-blue colour wheel.
func Wheel(position uint8) uint32 {
	p := int(position)
	switch {
	case p < 85:
		return Color(uint8(p*3), uint8(255-p*3), 0)
	case p < 170:
		p -= 85
		return Color(uint8(255-p*3), 0, uint8(p*3))
	default:
		p -= 170
		return Color(0, uint8(p*3), uint8(255-p*3))
	}
}

// HSV converts hue (degrees), saturation and value (0..1).
func HSV(h, s, v float64) uint32 {
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return Color(r, g, b)
}

// FromColor converts any colour to a packed value, dropping alpha.
func FromColor(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color(n.R, n.G, n.B)
}

// ToNRGBA converts a packed value for use with the image packages. The white
// component is ignored.
func ToNRGBA(c uint32) color.NRGBA {
	r, g, b, _ := Components(c)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
