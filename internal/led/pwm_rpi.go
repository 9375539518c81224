//go:build linux && cgo && rpi

package led

/*
#cgo CFLAGS: -std=c99
#cgo LDFLAGS: -lws2811
#include <stdlib.h>
#include <stdint.h>
#include <ws2811/ws2811.h>
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/coreman2200/neopixel/ws2811"
)

// PWM drives the strip through rpi_ws281x. The device buffers alias the LED
// arrays allocated by the C library.
type PWM struct {
	mu          sync.Mutex
	dev         *ws2811.Device
	c           *C.ws2811_t
	initialized bool
}

// NewPWM initializes rpi_ws281x. It fails when the hardware cannot be
// claimed, typically without root privilege, so callers can fall back.
func NewPWM(o Options) (*PWM, error) {
	p := &PWM{dev: channelFromOptions(o)}

	p.c = (*C.ws2811_t)(C.calloc(1, C.size_t(unsafe.Sizeof(*p.c))))
	if p.c == nil {
		return nil, fmt.Errorf("calloc ws2811_t failed")
	}
	p.c.freq = C.uint32_t(o.Frequency)
	p.c.dmanum = C.int(o.DMANum)

	ch := &p.c.channel[0]
	ch.gpionum = C.int(o.GPIO)
	ch.count = C.int(o.Count)
	ch.strip_type = C.int(p.dev.Channel[0].StripType)
	ch.brightness = C.uint8_t(o.Brightness)
	if o.Invert {
		ch.invert = 1
	}

	// ws2811_init cleans up after itself on failure; ws2811_fini must not
	// run on the struct afterwards.
	if st := C.ws2811_init(p.c); st != C.WS2811_SUCCESS {
		C.free(unsafe.Pointer(p.c))
		p.c = nil
		return nil, statusError("ws2811_init", st)
	}
	p.initialized = true

	for i := 0; i < ws2811.RPiPWMChannels; i++ {
		ch := &p.c.channel[i]
		if ch.leds == nil || ch.count <= 0 {
			p.dev.Channel[i].Leds = nil
			continue
		}
		p.dev.Channel[i].Leds = unsafe.Slice((*uint32)(unsafe.Pointer(ch.leds)), int(ch.count))
	}
	return p, nil
}

func statusError(op string, st C.ws2811_return_t) error {
	return fmt.Errorf("%s failed: %d (%s)", op, int(st), C.GoString(C.ws2811_get_return_t_str(st)))
}

// Init is a no-op: the hardware is set up by NewPWM.
func (p *PWM) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c == nil {
		return fmt.Errorf("pwm closed")
	}
	return nil
}

func (p *PWM) Render() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c == nil {
		return fmt.Errorf("pwm closed")
	}
	for i := 0; i < ws2811.RPiPWMChannels; i++ {
		p.c.channel[i].brightness = C.uint8_t(p.dev.Channel[i].Brightness)
	}
	if st := C.ws2811_render(p.c); st != C.WS2811_SUCCESS {
		return statusError("ws2811_render", st)
	}
	return nil
}

func (p *PWM) Wait() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c == nil {
		return fmt.Errorf("pwm closed")
	}
	if st := C.ws2811_wait(p.c); st != C.WS2811_SUCCESS {
		return statusError("ws2811_wait", st)
	}
	return nil
}

func (p *PWM) Fini() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c == nil {
		return nil
	}
	for i := range p.dev.Channel {
		p.dev.Channel[i].Leds = nil
	}
	if p.initialized {
		C.ws2811_fini(p.c)
		p.initialized = false
	}
	C.free(unsafe.Pointer(p.c))
	p.c = nil
	return nil
}

func (p *PWM) Device() *ws2811.Device { return p.dev }

func (p *PWM) String() string { return "pwm" }
