//go:build !linux || !cgo || !rpi

package led

import "github.com/coreman2200/neopixel/ws2811"

type PWM struct{}

func NewPWM(o Options) (*PWM, error) {
	return nil, ErrUnsupported
}

func (p *PWM) Init() error            { return ErrUnsupported }
func (p *PWM) Render() error          { return ErrUnsupported }
func (p *PWM) Wait() error            { return ErrUnsupported }
func (p *PWM) Fini() error            { return nil }
func (p *PWM) Device() *ws2811.Device { return nil }
func (p *PWM) String() string         { return "pwm" }
