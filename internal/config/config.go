package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/neopixel/internal/sequence"
	"github.com/coreman2200/neopixel/ws2811"
)

type PowerCfg struct {
	LimitMA   float64 `yaml:"limit_ma"`
	ChannelMA float64 `yaml:"channel_ma"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0
	SpeedHz int64  `yaml:"speed_hz"` // e.g. 2500000
}

type Matrix struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Serpentine bool `yaml:"serpentine"`
}

type Config struct {
	Driver     string `yaml:"driver"` // "pwm" | "spi" | "sim" | "console"
	GPIO       int    `yaml:"gpio"`
	DMA        int    `yaml:"dma"`
	Frequency  int    `yaml:"frequency"`
	ColorOrder string `yaml:"color_order"`
	Brightness int    `yaml:"brightness"`
	Invert     bool   `yaml:"invert"`
	Gamma      *bool  `yaml:"gamma,omitempty"`
	Addr       string `yaml:"addr"`

	Matrix  Matrix            `yaml:"matrix"`
	Power   PowerCfg          `yaml:"power"`
	SPI     SPI               `yaml:"spi,omitempty"`
	Program *sequence.Program `yaml:"program,omitempty"`
}

// StripType resolves ColorOrder, defaulting to GRB.
func (c *Config) StripType() (int, error) {
	if c.ColorOrder == "" {
		return ws2811.StripGRB, nil
	}
	st, ok := ws2811.StripTypes[c.ColorOrder]
	if !ok {
		return 0, fmt.Errorf("unknown color order %q", c.ColorOrder)
	}
	return st, nil
}

// Count is the number of LEDs described by the matrix.
func (c *Config) Count() int {
	return c.Matrix.Width * c.Matrix.Height
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := c.StripType(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Program != nil {
		if err := c.Program.Validate(); err != nil {
			return nil, fmt.Errorf("%s: program: %w", path, err)
		}
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
