package sequence

import (
	"context"
	"time"
)

// Clip is one segment of a show: an animation with its colour and pacing.
// Animation is one of wipe, chase, chase_rainbow, rainbow, rainbow_cycle,
// rings or clear. Color is "#RRGGBB".
type Clip struct {
	Name       string `json:"name" yaml:"name"`
	Animation  string `json:"animation" yaml:"animation"`
	Color      string `json:"color,omitempty" yaml:"color,omitempty"`
	WaitMS     int    `json:"waitMS,omitempty" yaml:"wait_ms,omitempty"`
	Iterations int    `json:"iterations,omitempty" yaml:"iterations,omitempty"`
}

// Program is a full sequence of clips.
type Program struct {
	Version string `json:"version" yaml:"version"` // e.g., "seq.v1"
	Loop    bool   `json:"loop,omitempty" yaml:"loop,omitempty"`
	Clips   []Clip `json:"clips" yaml:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
)

// Animator is what a Player drives; *neopixel.Strip implements it.
type Animator interface {
	ColorWipe(ctx context.Context, c uint32, wait time.Duration) error
	TheaterChase(ctx context.Context, c uint32, wait time.Duration, iterations int) error
	TheaterChaseRainbow(ctx context.Context, wait time.Duration, iterations int) error
	Rainbow(ctx context.Context, wait time.Duration, iterations int) error
	RainbowCycle(ctx context.Context, wait time.Duration, iterations int) error
	RingWipe(ctx context.Context, rings [][]int, c uint32, wait time.Duration) error
	Clear() error
	Render() error
}
