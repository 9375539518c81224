package led

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/neopixel/ws2811"
)

// DefaultSPIFreq is the NRZ clock used when none is configured.
const DefaultSPIFreq = 2500 * physic.KiloHertz

// SPI drives WS2812 strips through an SPI port, encoding the NRZ stream in software.
type SPI struct {
	mu   sync.Mutex
	dev  *ws2811.Device
	port spi.Port
	nrz  *nrzled.Dev
}

// NewSPI opens the SPI port named in o ("" selects the first one).
func NewSPI(o Options) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(o.SPIDev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", o.SPIDev, err)
	}
	s, err := NewSPIPort(p, o)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// NewSPIPort binds an already opened port. nrzled only clocks the port at
// DefaultSPIFreq and encodes 3 bytes per LED, so other speeds and RGBW strip
// types are rejected.
func NewSPIPort(p spi.Port, o Options) (*SPI, error) {
	if HasWhite(o.StripType) {
		return nil, fmt.Errorf("spi: strip type 0x%08x has a white channel, not supported over SPI", o.StripType)
	}
	freq := DefaultSPIFreq
	if o.SPISpeedHz > 0 {
		freq = physic.Frequency(o.SPISpeedHz) * physic.Hertz
	}
	nrz, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: o.Count,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled at %s: %w", freq, err)
	}
	return &SPI{dev: channelFromOptions(o), port: p, nrz: nrz}, nil
}

func (s *SPI) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nrz.Halt()
}

func (s *SPI) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nrz == nil {
		return fmt.Errorf("spi closed")
	}
	if _, err := s.nrz.Write(nrzOrder(WireFrame(&s.dev.Channel[0]))); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

// nrzOrder undoes the G/R swap nrzled applies to each pixel, so the bytes of
// wire come out in the order given.
func nrzOrder(wire []byte) []byte {
	for i := 0; i+2 < len(wire); i += 3 {
		wire[i], wire[i+1] = wire[i+1], wire[i]
	}
	return wire
}

// Wait is a no-op: SPI transfers are synchronous.
func (s *SPI) Wait() error { return nil }

func (s *SPI) Fini() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nrz == nil {
		return nil
	}
	err := s.nrz.Halt()
	if c, ok := s.port.(spi.PortCloser); ok {
		err = multierr.Append(err, c.Close())
	}
	s.nrz = nil
	return err
}

func (s *SPI) Device() *ws2811.Device { return s.dev }

func (s *SPI) String() string { return "spi" }
