package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/coreman2200/neopixel"
	"github.com/coreman2200/neopixel/internal/config"
	"github.com/coreman2200/neopixel/internal/layout"
	"github.com/coreman2200/neopixel/internal/sequence"
	"github.com/coreman2200/neopixel/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	app := &cli.App{
		Name:  "ledtest",
		Usage: "drive a WS281x LED strip",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to config.yaml"},
			&cli.StringFlag{Name: "driver", Value: "pwm", Usage: "driver: pwm | spi | sim | console"},
			&cli.IntFlag{Name: "gpio-pin", Value: 18, Usage: "GPIO pin (BCM number)"},
			&cli.IntFlag{Name: "width", Value: 1, Usage: "LED matrix width"},
			&cli.IntFlag{Name: "height", Value: 93, Usage: "LED matrix height"},
			&cli.IntFlag{Name: "brightness", Value: 255, Usage: "brightness (0-255)"},
			&cli.StringFlag{Name: "color", Value: "GRB", Usage: "LED color order (e.g. GRB, RGB, GRBW)"},
			&cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
		},
		Before: func(c *cli.Context) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if c.Bool("debug") {
				zerolog.SetGlobalLevel(zerolog.TraceLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "demo",
				Usage:  "run the animation program",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "loop", Usage: "repeat the program"}},
				Action: runDemo,
			},
			{
				Name:  "serve",
				Usage: "serve the preview and control websockets",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address"},
					&cli.IntFlag{Name: "fps", Value: 30, Usage: "preview frame rate"},
				},
				Action: runServe,
			},
			{
				Name:      "image",
				Usage:     "scale an image onto the LED matrix",
				ArgsUsage: "FILE",
				Action:    runImage,
			},
			{
				Name:   "clear",
				Usage:  "turn every LED off",
				Action: runClear,
			},
		},
	}
	if err := app.Run(os.Args); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("ledtest")
	}
}

// load merges config.yaml with the flags. Flags set explicitly win.
func load(c *cli.Context) (*config.Config, neopixel.Config, error) {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, neopixel.Config{}, err
		}
		log.Debug().Str("path", path).Msg("no config file; using flags")
		cfg = &config.Config{}
	}

	if c.IsSet("driver") || cfg.Driver == "" {
		cfg.Driver = c.String("driver")
	}
	if c.IsSet("gpio-pin") || cfg.GPIO == 0 {
		cfg.GPIO = c.Int("gpio-pin")
	}
	if c.IsSet("width") || cfg.Matrix.Width == 0 {
		cfg.Matrix.Width = c.Int("width")
	}
	if c.IsSet("height") || cfg.Matrix.Height == 0 {
		cfg.Matrix.Height = c.Int("height")
	}
	if c.IsSet("brightness") || cfg.Brightness == 0 {
		cfg.Brightness = c.Int("brightness")
	}
	if c.IsSet("color") || cfg.ColorOrder == "" {
		cfg.ColorOrder = c.String("color")
	}

	st, err := cfg.StripType()
	if err != nil {
		return nil, neopixel.Config{}, err
	}
	np := neopixel.DefaultConfig
	np.Driver = cfg.Driver
	np.GPIOPin = cfg.GPIO
	np.LEDCount = cfg.Count()
	np.Brightness = cfg.Brightness
	np.StripType = st
	np.Invert = cfg.Invert
	np.SPIDev = cfg.SPI.Dev
	np.SPISpeedHz = cfg.SPI.SpeedHz
	np.PowerLimitMA = cfg.Power.LimitMA
	if cfg.Frequency != 0 {
		np.Frequency = cfg.Frequency
	}
	if cfg.DMA != 0 {
		np.DMANum = cfg.DMA
	}
	if cfg.Power.ChannelMA != 0 {
		np.ChannelMA = cfg.Power.ChannelMA
	}
	if cfg.Gamma != nil {
		np.Gamma = *cfg.Gamma
	}
	return cfg, np, nil
}

func open(c *cli.Context) (*config.Config, *neopixel.Strip, error) {
	cfg, np, err := load(c)
	if err != nil {
		return nil, nil, err
	}
	if np.Driver == "pwm" && runtime.GOARCH == "arm" {
		if u, err := user.Current(); err == nil && u.Uid != "0" {
			log.Warn().Msg("the pwm driver requires root privilege; try sudo")
		}
	}
	strip, err := neopixel.Open(np)
	if err != nil {
		return nil, nil, err
	}
	if err := strip.Init(); err != nil {
		return nil, nil, multierr.Append(err, strip.Fini())
	}
	log.Info().
		Str("driver", strip.Driver()).
		Int("gpio", np.GPIOPin).
		Int("count", np.LEDCount).
		Int("brightness", np.Brightness).
		Msg("strip ready")
	return cfg, strip, nil
}

// shutdown blanks the strip and releases the driver.
func shutdown(strip *neopixel.Strip) error {
	return multierr.Combine(strip.Clear(), strip.Render(), strip.Wait(), strip.Fini())
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
}

func runDemo(c *cli.Context) error {
	cfg, strip, err := open(c)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(c)
	defer cancel()

	prog := sequence.Demo
	if cfg.Program != nil {
		prog = *cfg.Program
	}
	if c.Bool("loop") {
		prog.Loop = true
	}
	p := sequence.NewPlayer(strip)
	if err := p.Load(prog); err != nil {
		return multierr.Append(err, shutdown(strip))
	}
	err = p.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("interrupted")
		err = nil
	}
	return multierr.Append(err, shutdown(strip))
}

func runServe(c *cli.Context) error {
	cfg, strip, err := open(c)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(c)
	defer cancel()

	addr := c.String("addr")
	if !c.IsSet("addr") && cfg.Addr != "" {
		addr = cfg.Addr
	}
	srv := server.New(strip, nil)
	hs := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go srv.Run(ctx, c.Int("fps"))

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("driver", strip.Driver()).Msg("HTTP server starting")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-errc:
	}
	sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer scancel()
	return multierr.Combine(err, hs.Shutdown(sctx), shutdown(strip))
}

func runClear(c *cli.Context) error {
	_, strip, err := open(c)
	if err != nil {
		return err
	}
	return shutdown(strip)
}

func runImage(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("image: expected one FILE argument", 2)
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", c.Args().First(), err)
	}

	cfg, strip, err := open(c)
	if err != nil {
		return err
	}
	m := layout.Matrix{Width: cfg.Matrix.Width, Height: cfg.Matrix.Height, Serpentine: cfg.Matrix.Serpentine}
	log.Debug().Str("format", format).Stringer("bounds", img.Bounds()).Int("width", m.Width).Int("height", m.Height).Msg("image")
	if err := strip.SetBitmap(m.Frame(img)); err != nil {
		return multierr.Append(err, strip.Fini())
	}
	if err := multierr.Append(strip.Render(), strip.Wait()); err != nil {
		return multierr.Append(err, strip.Fini())
	}

	ctx, cancel := signalContext(c)
	defer cancel()
	<-ctx.Done()
	return shutdown(strip)
}
