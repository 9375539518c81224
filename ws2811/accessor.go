package ws2811

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// bytesPerLED is the width of one buffer entry.
const bytesPerLED = 4

func (d *Device) channel(ch int) (*Channel, error) {
	if d == nil {
		return nil, ErrNilDevice
	}
	if ch < 0 || ch >= RPiPWMChannels {
		return nil, errors.Wrapf(ErrChannelOutOfRange, "channel %d (have %d)", ch, RPiPWMChannels)
	}
	return &d.Channel[ch], nil
}

// SetLED writes value at index of channel ch.
func (d *Device) SetLED(ch, index int, value uint32) error {
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if index < 0 || index >= c.Count() {
		return errors.Wrapf(ErrIndexOutOfRange, "channel %d index %d (count %d)", ch, index, c.Count())
	}
	c.Leds[index] = value
	return nil
}

// LED reads the value at index of channel ch.
func (d *Device) LED(ch, index int) (uint32, error) {
	c, err := d.channel(ch)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= c.Count() {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "channel %d index %d (count %d)", ch, index, c.Count())
	}
	return c.Leds[index], nil
}

// Leds returns the live buffer of channel ch. Writes through the returned
// slice are visible to the driver.
func (d *Device) Leds(ch int) ([]uint32, error) {
	c, err := d.channel(ch)
	if err != nil {
		return nil, err
	}
	return c.Leds, nil
}

// ClearChannel zeroes every LED of channel ch.
func (d *Device) ClearChannel(ch int) error {
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	clear(c.Leds)
	return nil
}

// ClearAll zeroes every channel.
func (d *Device) ClearAll() error {
	for ch := 0; ch < RPiPWMChannels; ch++ {
		if err := d.ClearChannel(ch); err != nil {
			return err
		}
	}
	return nil
}

// SetBitmap copies src into the start of channel ch's buffer, byte for byte
// in host order. A trailing partial word only replaces the low-order bytes of
// the LED it lands on.
func (d *Device) SetBitmap(ch int, src []byte) error {
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if capacity := c.Count() * bytesPerLED; len(src) > capacity {
		return errors.Wrapf(ErrLengthExceedsCapacity, "channel %d: %d bytes into %d", ch, len(src), capacity)
	}
	full := len(src) / bytesPerLED
	for i := 0; i < full; i++ {
		c.Leds[i] = binary.LittleEndian.Uint32(src[i*bytesPerLED:])
	}
	if rest := src[full*bytesPerLED:]; len(rest) > 0 {
		v := c.Leds[full]
		for i, b := range rest {
			shift := uint(i * 8)
			v = v&^(0xff<<shift) | uint32(b)<<shift
		}
		c.Leds[full] = v
	}
	return nil
}

// SetBitmap32 copies src into the start of channel ch's buffer.
func (d *Device) SetBitmap32(ch int, src []uint32) error {
	c, err := d.channel(ch)
	if err != nil {
		return err
	}
	if len(src) > c.Count() {
		return errors.Wrapf(ErrLengthExceedsCapacity, "channel %d: %d leds into %d", ch, len(src), c.Count())
	}
	copy(c.Leds, src)
	return nil
}

// Bytes returns a copy of channel ch's buffer in host (little-endian) byte order.
func (d *Device) Bytes(ch int) ([]byte, error) {
	c, err := d.channel(ch)
	if err != nil {
		return nil, err
	}
	out := make([]byte, c.Count()*bytesPerLED)
	for i, v := range c.Leds {
		binary.LittleEndian.PutUint32(out[i*bytesPerLED:], v)
	}
	return out, nil
}
