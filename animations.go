package neopixel

import (
	"context"
	"time"
)

func (s *Strip) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := s.Clock.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Strip) show() error {
	if err := s.Render(); err != nil {
		return err
	}
	return s.Wait()
}

// setIfInRange ignores writes past the end of the strip, which the chase
// patterns produce on their last few pixels.
func (s *Strip) setIfInRange(i int, c uint32) error {
	if i >= s.Len() {
		return nil
	}
	return s.SetLED(i, c)
}

// ColorWipe lights the strip one pixel at a time.
func (s *Strip) ColorWipe(ctx context.Context, c uint32, wait time.Duration) error {
	for i := 0; i < s.Len(); i++ {
		if err := s.SetLED(i, c); err != nil {
			return err
		}
		if err := s.show(); err != nil {
			return err
		}
		if err := s.pause(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

func (s *Strip) chase(ctx context.Context, wait time.Duration, iterations int, colorAt func(i, j int) uint32) error {
	for j := 0; j < iterations; j++ {
		for q := 0; q < 3; q++ {
			for i := 0; i < s.Len(); i += 3 {
				if err := s.setIfInRange(i+q, colorAt(i, j)); err != nil {
					return err
				}
			}
			if err := s.show(); err != nil {
				return err
			}
			if err := s.pause(ctx, wait); err != nil {
				return err
			}
			for i := 0; i < s.Len(); i += 3 {
				if err := s.setIfInRange(i+q, 0); err != nil {
					return err
				}
			}
			if err := s.show(); err != nil {
				return err
			}
		}
		if err := s.pause(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

// TheaterChase runs a movie theater style chaser.
func (s *Strip) TheaterChase(ctx context.Context, c uint32, wait time.Duration, iterations int) error {
	return s.chase(ctx, wait, iterations, func(int, int) uint32 { return c })
}

// TheaterChaseRainbow is TheaterChase cycling through the colour wheel. The
// wheel position i + j%255 wraps at 256.
func (s *Strip) TheaterChaseRainbow(ctx context.Context, wait time.Duration, iterations int) error {
	return s.chase(ctx, wait, iterations, func(i, j int) uint32 {
		return Wheel(uint8(i + j%255))
	})
}

func (s *Strip) cycle(ctx context.Context, wait time.Duration, iterations int, colorAt func(i, j int) uint32) error {
	frame := make([]uint32, s.Len())
	for j := 0; j < 256*iterations; j++ {
		for i := range frame {
			frame[i] = colorAt(i, j)
		}
		if err := s.SetBitmap(frame); err != nil {
			return err
		}
		if err := s.show(); err != nil {
			return err
		}
		if err := s.pause(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

// Rainbow fades every pixel through the colour wheel at once.
func (s *Strip) Rainbow(ctx context.Context, wait time.Duration, iterations int) error {
	return s.cycle(ctx, wait, iterations, func(i, j int) uint32 {
		return Wheel(uint8((i + j) & 255))
	})
}

// RainbowCycle spreads the colour wheel evenly across the strip and rotates it.
func (s *Strip) RainbowCycle(ctx context.Context, wait time.Duration, iterations int) error {
	n := s.Len()
	return s.cycle(ctx, wait, iterations, func(i, j int) uint32 {
		return Wheel(uint8((i*256/n + j) & 255))
	})
}

// RingWipe lights rings one after another, waiting between them. Each ring
// lists LED indexes; those past the end of the strip are skipped.
func (s *Strip) RingWipe(ctx context.Context, rings [][]int, c uint32, wait time.Duration) error {
	for _, ring := range rings {
		for _, i := range ring {
			if err := s.setIfInRange(i, c); err != nil {
				return err
			}
		}
		if err := s.show(); err != nil {
			return err
		}
		if err := s.pause(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}
