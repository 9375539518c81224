package ws2811_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/neopixel/ws2811"
)

var TestSetLEDOutOfRange = []struct {
	Chan  int
	Index int
	Err   error
}{
	{-1, 0, ErrChannelOutOfRange},
	{RPiPWMChannels, 0, ErrChannelOutOfRange},
	{0, -1, ErrIndexOutOfRange},
	{0, 8, ErrIndexOutOfRange},
	{1, 0, ErrIndexOutOfRange}, // channel 1 has no LEDs
}

func TestSetLEDReadsBack(t *testing.T) {
	d := NewDevice(8, 3)
	require.NoError(t, d.SetLED(0, 7, 0x00FF8800))
	require.NoError(t, d.SetLED(1, 0, 0x12345678))

	v, err := d.LED(0, 7)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00FF8800), v)
	assert.Equal(t, uint32(0x12345678), d.Channel[1].Leds[0])
	assert.Equal(t, uint32(0), d.Channel[0].Leds[6])
}

func TestSetLEDOutOfRangeLeavesBuffer(t *testing.T) {
	for k, v := range TestSetLEDOutOfRange {
		t.Run("Case"+strconv.Itoa(k), func(t *testing.T) {
			d := NewDevice(8)
			err := d.SetLED(v.Chan, v.Index, 0xFFFFFFFF)
			assert.True(t, errors.Is(err, v.Err), "got %v", err)
			for _, led := range d.Channel[0].Leds {
				assert.Zero(t, led)
			}
		})
	}
}

func TestNilDevice(t *testing.T) {
	var d *Device
	assert.ErrorIs(t, d.SetLED(0, 0, 1), ErrNilDevice)
	assert.ErrorIs(t, d.ClearAll(), ErrNilDevice)
}

func TestClearChannel(t *testing.T) {
	d := NewDevice(5, 5)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.SetLED(0, i, 0xFFFFFF))
		require.NoError(t, d.SetLED(1, i, 0xABCDEF))
	}
	require.NoError(t, d.ClearChannel(0))

	for i := 0; i < 5; i++ {
		v, _ := d.LED(0, i)
		assert.Zero(t, v)
		v, _ = d.LED(1, i)
		assert.Equal(t, uint32(0xABCDEF), v, "other channel untouched")
	}
	assert.ErrorIs(t, d.ClearChannel(2), ErrChannelOutOfRange)
}

func TestClearAll(t *testing.T) {
	d := NewDevice(4, 6)
	for ch := 0; ch < RPiPWMChannels; ch++ {
		leds, err := d.Leds(ch)
		require.NoError(t, err)
		for i := range leds {
			leds[i] = uint32(i + 1)
		}
	}
	require.NoError(t, d.ClearAll())
	for ch := 0; ch < RPiPWMChannels; ch++ {
		assert.Equal(t, make([]uint32, d.Channel[ch].Count()), d.Channel[ch].Leds)
	}
}

func TestSetBitmapBytesRoundTrip(t *testing.T) {
	d := NewDevice(4)
	src := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	require.NoError(t, d.SetBitmap(0, src))

	got, err := d.Bytes(0)
	require.NoError(t, err)
	assert.Equal(t, src, got[:len(src)])
	assert.Equal(t, uint32(0x04030201), d.Channel[0].Leds[0])
	assert.Zero(t, d.Channel[0].Leds[2])
}

func TestSetBitmapPartialWord(t *testing.T) {
	d := NewDevice(2)
	d.Channel[0].Leds[1] = 0xAABBCCDD
	require.NoError(t, d.SetBitmap(0, []byte{1, 2, 3, 4, 0x11, 0x22}))

	assert.Equal(t, uint32(0xAABB2211), d.Channel[0].Leds[1])
	got, _ := d.Bytes(0)
	assert.Equal(t, []byte{1, 2, 3, 4, 0x11, 0x22}, got[:6])
}

func TestSetBitmapFullCapacity(t *testing.T) {
	d := NewDevice(2)
	src := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	require.NoError(t, d.SetBitmap(0, src))
	assert.Equal(t, []uint32{1, 2}, d.Channel[0].Leds)
}

func TestSetBitmapExceedsCapacity(t *testing.T) {
	d := NewDevice(2)
	d.Channel[0].Leds[0] = 7
	err := d.SetBitmap(0, make([]byte, 9))
	assert.ErrorIs(t, err, ErrLengthExceedsCapacity)
	assert.Equal(t, uint32(7), d.Channel[0].Leds[0], "nothing copied on error")

	assert.ErrorIs(t, d.SetBitmap32(0, []uint32{1, 2, 3}), ErrLengthExceedsCapacity)
	assert.ErrorIs(t, d.SetBitmap(5, nil), ErrChannelOutOfRange)
}

func TestSetBitmap32(t *testing.T) {
	d := NewDevice(4)
	require.NoError(t, d.SetBitmap32(0, []uint32{9, 8}))
	assert.Equal(t, []uint32{9, 8, 0, 0}, d.Channel[0].Leds)
}

func TestNewDeviceIgnoresExtraChannels(t *testing.T) {
	d := NewDevice(1, 2, 3)
	assert.Equal(t, 1, d.Channel[0].Count())
	assert.Equal(t, 2, d.Channel[1].Count())
}
