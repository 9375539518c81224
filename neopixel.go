// Package neopixel drives WS281x ("NeoPixel") LED strips.
//
// A Strip owns one driver and writes to channel 0 of its ws2811 device. All
// buffer access goes through the bounds-checked ws2811 accessors, so bad
// indexes and oversized bitmaps come back as errors.
package neopixel

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/coreman2200/neopixel/internal/led"
	"github.com/coreman2200/neopixel/ws2811"
)

const (
	// DefaultDMANum is the DMA channel used by default. DMA 5 can corrupt the
	// SD card on newer Raspberry Pi firmware, 10 is safe.
	DefaultDMANum = 10
	// TargetFreq is the usual WS2812 data rate. WS2811 strips may need 400 kHz.
	TargetFreq = 800000

	StripRGB = ws2811.StripRGB
	StripRBG = ws2811.StripRBG
	StripGRB = ws2811.StripGRB
	StripGBR = ws2811.StripGBR
	StripBRG = ws2811.StripBRG
	StripBGR = ws2811.StripBGR
)

// channel is the ws2811 channel a Strip writes to.
const channel = 0

// Driver is the output a Strip renders to.
type Driver = led.Driver

// Config holds the settings for a Strip.
type Config struct {
	Driver     string // pwm | spi | sim | console
	Frequency  int
	DMANum     int
	GPIOPin    int
	LEDCount   int
	Brightness int
	StripType  int
	Invert     bool
	Gamma      bool
	SPIDev     string
	SPISpeedHz int64

	// PowerLimitMA caps the estimated strip current. Zero disables the limiter.
	PowerLimitMA float64
	// ChannelMA is the current drawn by one colour channel at full scale.
	ChannelMA float64
}

// DefaultConfig is a 93 LED GRB ring on GPIO 18.
var DefaultConfig = Config{
	Driver:     "pwm",
	Frequency:  TargetFreq,
	DMANum:     DefaultDMANum,
	GPIOPin:    18,
	LEDCount:   93,
	Brightness: 255,
	StripType:  StripGRB,
	Gamma:      true,
	ChannelMA:  20,
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.LEDCount <= 0 {
		return fmt.Errorf("invalid LED count: %d", c.LEDCount)
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		return fmt.Errorf("brightness %d out of range 0-255", c.Brightness)
	}
	if c.Frequency < 400000 || c.Frequency > 800000 {
		return fmt.Errorf("frequency %d out of range 400000-800000", c.Frequency)
	}
	known := false
	for _, st := range ws2811.StripTypes {
		if st == c.StripType {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown strip type 0x%08x", c.StripType)
	}
	if c.SPISpeedHz < 0 {
		return fmt.Errorf("negative SPI speed %d", c.SPISpeedHz)
	}
	if c.PowerLimitMA < 0 || c.ChannelMA < 0 {
		return fmt.Errorf("power settings must not be negative")
	}
	return nil
}

func (c Config) options() led.Options {
	return led.Options{
		Name:       c.Driver,
		GPIO:       c.GPIOPin,
		Count:      c.LEDCount,
		Brightness: uint8(c.Brightness),
		StripType:  c.StripType,
		Invert:     c.Invert,
		Frequency:  uint32(c.Frequency),
		DMANum:     c.DMANum,
		SPIDev:     c.SPIDev,
		SPISpeedHz: c.SPISpeedHz,
	}
}

// Strip is a single WS281x strip on channel 0 of a driver.
type Strip struct {
	mu    sync.Mutex
	drv   Driver
	cfg   Config
	limit uint8
	Clock clock.Clock
}

// Open creates the driver named in cfg and wraps it. Call Init before use.
func Open(cfg Config) (*Strip, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	drv, err := led.Open(cfg.options())
	if err != nil {
		return nil, err
	}
	return New(drv, cfg)
}

// New wraps an existing driver.
func New(drv Driver, cfg Config) (*Strip, error) {
	if drv == nil {
		return nil, errors.New("neopixel: nil driver")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Strip{drv: drv, cfg: cfg, limit: uint8(cfg.Brightness), Clock: clock.New()}, nil
}

// Init initializes the device. It must be called once before any other method.
func (s *Strip) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.drv.Init(); err != nil {
		return errors.Wrapf(err, "init %s", s.drv)
	}
	dev := s.drv.Device()
	if n := dev.Channel[channel].Count(); n != s.cfg.LEDCount {
		return fmt.Errorf("driver %s exposes %d LEDs, want %d", s.drv, n, s.cfg.LEDCount)
	}
	dev.Channel[channel].Brightness = uint8(s.cfg.Brightness)
	return nil
}

// Render sends the current frame to the strip.
func (s *Strip) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := &s.drv.Device().Channel[channel]
	ch.Brightness = limitBrightness(ch.Leds, uint8(s.cfg.Brightness), s.cfg.ChannelMA, s.cfg.PowerLimitMA)
	s.limit = ch.Brightness
	return s.drv.Render()
}

// Wait blocks until the last Render has been sent out. The time needed is
// roughly 1/frequency * 24 * LEDCount + 50µs.
func (s *Strip) Wait() error {
	return s.drv.Wait()
}

// Fini shuts down the device.
func (s *Strip) Fini() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drv.Fini()
}

func (s *Strip) correct(c uint32) uint32 {
	if s.cfg.Gamma {
		return GammaCorrect(c)
	}
	return c
}

// SetLED sets the colour of the LED at index.
func (s *Strip) SetLED(index int, c uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drv.Device().SetLED(channel, index, s.correct(c))
}

// SetBitmap sets the colour of the first len(a) LEDs.
func (s *Strip) SetBitmap(a []uint32) error {
	t := make([]uint32, len(a))
	for i, c := range a {
		t[i] = s.correct(c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drv.Device().SetBitmap32(channel, t)
}

// Fill sets every LED to c.
func (s *Strip) Fill(c uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	leds, err := s.drv.Device().Leds(channel)
	if err != nil {
		return err
	}
	c = s.correct(c)
	for i := range leds {
		leds[i] = c
	}
	return nil
}

// Clear sets all LEDs to black.
func (s *Strip) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drv.Device().ClearChannel(channel)
}

// SetBrightness changes the global brightness applied on the next Render.
func (s *Strip) SetBrightness(b uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Brightness = int(b)
}

// Brightness returns the brightness used by the last Render, after power limiting.
func (s *Strip) Brightness() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}

// Len returns the number of LEDs.
func (s *Strip) Len() int {
	return s.cfg.LEDCount
}

// Snapshot returns a copy of the buffer as stored, gamma included.
func (s *Strip) Snapshot() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	leds, _ := s.drv.Device().Leds(channel)
	return append([]uint32(nil), leds...)
}

// Frame returns the buffer as RGB bytes scaled by the brightness of the last
// Render, which is what the driver puts out for it.
func (s *Strip) Frame() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return led.Frame(&s.drv.Device().Channel[channel])
}

// Driver returns the name of the underlying driver.
func (s *Strip) Driver() string {
	return s.drv.String()
}
