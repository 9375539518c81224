package led

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/neopixel/ws2811"
)

// Sim keeps the device in memory. Each Render hands an RGB copy of
// channel 0 to OnFrame, useful for previews and headless tests.
type Sim struct {
	mu      sync.Mutex
	dev     *ws2811.Device
	frames  uint64
	onFrame func(rgb []byte)
}

func NewSim(o Options) *Sim {
	return &Sim{dev: channelFromOptions(o)}
}

// OnFrame registers f to receive every rendered frame.
func (s *Sim) OnFrame(f func(rgb []byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFrame = f
}

func (s *Sim) Init() error { return nil }

func (s *Sim) Render() error {
	s.mu.Lock()
	s.frames++
	n := s.frames
	f := s.onFrame
	s.mu.Unlock()

	buf := Frame(&s.dev.Channel[0])
	if e := log.Trace(); e.Enabled() {
		var r, g, b int
		for i := 0; i+2 < len(buf); i += 3 {
			r += int(buf[i])
			g += int(buf[i+1])
			b += int(buf[i+2])
		}
		cnt := max(1, len(buf)/3)
		e.Uint64("frame", n).Int("avg_r", r/cnt).Int("avg_g", g/cnt).Int("avg_b", b/cnt).Msg("sim render")
	}
	if f != nil {
		f(buf)
	}
	return nil
}

// Frames returns how many frames have been rendered.
func (s *Sim) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Sim) Wait() error { return nil }
func (s *Sim) Fini() error { return nil }

func (s *Sim) Device() *ws2811.Device { return s.dev }

func (s *Sim) String() string { return "sim" }
