// Package ws2811 provides bounds-checked access to the LED buffers of a
// ws2811 device.
//
// The buffers are usually owned by an external driver (the rpi_ws281x C
// library allocates them during init). A Device only holds slice views over
// that memory and never resizes it.
package ws2811

// RPiPWMChannels is the number of PWM output channels the rpi_ws281x driver exposes.
const RPiPWMChannels = 2

// Strip types, as understood by rpi_ws281x. The value encodes the byte shift
// of each colour component.
const (
	StripRGB = 0x00100800
	StripRBG = 0x00100008
	StripGRB = 0x00081000
	StripGBR = 0x00080010
	StripBRG = 0x00001008
	StripBGR = 0x00000810

	SK6812StripRGBW = 0x18100800
	SK6812StripRBGW = 0x18100008
	SK6812StripGRBW = 0x18081000
	SK6812StripGBRW = 0x18080010
	SK6812StripBRGW = 0x18001008
	SK6812StripBGRW = 0x18000810
)

// StripTypes maps the configuration names of every supported strip type.
var StripTypes = map[string]int{
	"RGB":  StripRGB,
	"RBG":  StripRBG,
	"GRB":  StripGRB,
	"GBR":  StripGBR,
	"BRG":  StripBRG,
	"BGR":  StripBGR,
	"RGBW": SK6812StripRGBW,
	"RBGW": SK6812StripRBGW,
	"GRBW": SK6812StripGRBW,
	"GBRW": SK6812StripGBRW,
	"BRGW": SK6812StripBRGW,
	"BGRW": SK6812StripBGRW,
}

// Channel is one physical output line.
type Channel struct {
	GPIONum    int
	Invert     bool
	Brightness uint8
	StripType  int

	// Leds is the pixel buffer. Its length is fixed when the owning driver
	// initializes the channel.
	Leds []uint32
}

// Count returns the number of LEDs in the channel.
func (c *Channel) Count() int {
	return len(c.Leds)
}

// Device is the fixed set of channels driven by one controller.
type Device struct {
	Freq    uint32
	DMANum  int
	Channel [RPiPWMChannels]Channel
}

// NewDevice allocates Go-owned buffers, one per count. Channels beyond
// len(counts) are left empty.
func NewDevice(counts ...int) *Device {
	d := &Device{}
	for i, n := range counts {
		if i >= RPiPWMChannels {
			break
		}
		if n < 0 {
			n = 0
		}
		d.Channel[i].Leds = make([]uint32, n)
		d.Channel[i].Brightness = 255
		d.Channel[i].StripType = StripGRB
	}
	return d
}
