package led

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/neopixel/ws2811"
)

// ErrUnsupported is returned by drivers not built for this platform.
var ErrUnsupported = errors.New("led: driver not supported on this platform")

// Driver abstracts an LED output sink bound to a ws2811 device.
type Driver interface {
	// Init prepares the hardware. Device buffers are valid only after Init.
	Init() error
	// Render pushes the current buffers to the LEDs.
	Render() error
	// Wait blocks until the previous Render has been clocked out.
	Wait() error
	// Fini releases resources. The device must not be used afterwards.
	Fini() error
	Device() *ws2811.Device
	String() string
}

// Options selects and configures a driver.
type Options struct {
	Name       string // "pwm" | "spi" | "sim" | "console"
	GPIO       int
	Count      int
	Brightness uint8
	StripType  int
	Invert     bool
	Frequency  uint32
	DMANum     int
	SPIDev     string
	SPISpeedHz int64
}

// Open returns the driver named in o. Hardware drivers that cannot be set up
// fall back to the simulator.
func Open(o Options) (Driver, error) {
	if o.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", o.Count)
	}
	switch o.Name {
	case "sim", "":
		return NewSim(o), nil
	case "console":
		return NewConsole(o), nil
	case "spi":
		d, err := NewSPI(o)
		if err != nil {
			log.Warn().Err(err).Str("driver", "spi").Str("dev", o.SPIDev).Msg("SPI init failed; falling back to SIM")
			return NewSim(o), nil
		}
		return d, nil
	case "pwm":
		d, err := NewPWM(o)
		if err != nil {
			log.Warn().Err(err).Str("driver", "pwm").Int("gpio", o.GPIO).Msg("PWM init failed; falling back to SIM")
			return NewSim(o), nil
		}
		return d, nil
	default:
		log.Warn().Str("driver", o.Name).Msg("unknown driver; using SIM")
		return NewSim(o), nil
	}
}

// channelFromOptions fills the configuration part of a Go-owned channel.
func channelFromOptions(o Options) *ws2811.Device {
	d := ws2811.NewDevice(o.Count)
	d.Freq = o.Frequency
	d.DMANum = o.DMANum
	ch := &d.Channel[0]
	ch.GPIONum = o.GPIO
	ch.Brightness = o.Brightness
	if o.StripType != 0 {
		ch.StripType = o.StripType
	}
	ch.Invert = o.Invert
	return d
}

// rgb unpacks a 0x00RRGGBB value scaled by brightness.
func rgb(v uint32, brightness uint8) (r, g, b byte) {
	scale := func(c uint32) byte {
		return byte(c * (uint32(brightness) + 1) >> 8)
	}
	return scale(v >> 16 & 0xff), scale(v >> 8 & 0xff), scale(v & 0xff)
}

// Frame unpacks a channel buffer into RGB triplets.
func Frame(c *ws2811.Channel) []byte {
	out := make([]byte, c.Count()*3)
	for i, v := range c.Leds {
		out[i*3+0], out[i*3+1], out[i*3+2] = rgb(v, c.Brightness)
	}
	return out
}

// HasWhite reports whether strip type st carries a fourth (white) byte.
func HasWhite(st int) bool {
	return st>>24&0xff != 0
}

// wireShifts returns, for each byte the strip expects on the wire, the bit
// offset of that byte in a buffer value. The layout follows rpi_ws281x:
// R, G, B then W shift fields, each naming the byte sent in that slot.
func wireShifts(st int) []uint {
	s := []uint{uint(st >> 16 & 0xff), uint(st >> 8 & 0xff), uint(st & 0xff)}
	if HasWhite(st) {
		s = append(s, uint(st>>24&0xff))
	}
	return s
}

// WireFrame unpacks a channel buffer into the byte order its strip type
// expects, scaled by brightness. RGBW strip types produce 4 bytes per LED.
func WireFrame(c *ws2811.Channel) []byte {
	shifts := wireShifts(c.StripType)
	out := make([]byte, 0, c.Count()*len(shifts))
	for _, v := range c.Leds {
		for _, sh := range shifts {
			out = append(out, byte((v>>sh&0xff)*(uint32(c.Brightness)+1)>>8))
		}
	}
	return out
}
