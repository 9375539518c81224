package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/neopixel/internal/sequence"
	"github.com/coreman2200/neopixel/ws2811"
)

const sample = `
driver: spi
gpio: 12
color_order: RGBW
brightness: 128
matrix:
  width: 8
  height: 4
  serpentine: true
power:
  limit_ma: 2000
  channel_ma: 20
spi:
  dev: /dev/spidev0.0
  speed_hz: 2500000
program:
  version: seq.v1
  loop: true
  clips:
    - name: red
      animation: wipe
      color: "#ff0000"
      wait_ms: 10
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "spi", c.Driver)
	assert.Equal(t, 12, c.GPIO)
	assert.Equal(t, 32, c.Count())
	assert.True(t, c.Matrix.Serpentine)
	assert.Equal(t, 2000.0, c.Power.LimitMA)
	assert.Equal(t, int64(2500000), c.SPI.SpeedHz)
	assert.Nil(t, c.Gamma)

	st, err := c.StripType()
	require.NoError(t, err)
	assert.Equal(t, ws2811.SK6812StripRGBW, st)

	require.NotNil(t, c.Program)
	assert.Equal(t, []sequence.Clip{{Name: "red", Animation: "wipe", Color: "#ff0000", WaitMS: 10}}, c.Program.Clips)
}

func TestLoadRejectsBadColorOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("color_order: XYZ\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Config{Driver: "sim", Brightness: 64, Matrix: Matrix{Width: 3, Height: 1}}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
