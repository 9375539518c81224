package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/neopixel/internal/layout"
)

// Demo is the classic strandtest show.
var Demo = Program{
	Version: "seq.v1",
	Clips: []Clip{
		{Name: "chase", Animation: "chase", Color: "#0000ff", WaitMS: 50, Iterations: 10},
		{Name: "rainbow", Animation: "rainbow", WaitMS: 20, Iterations: 1},
		{Name: "cycle", Animation: "rainbow_cycle", WaitMS: 20, Iterations: 1},
		{Name: "wipe-blue", Animation: "wipe", Color: "#0000ff", WaitMS: 20},
		{Name: "wipe-green", Animation: "wipe", Color: "#00ff00", WaitMS: 20},
		{Name: "wipe-red", Animation: "wipe", Color: "#ff0000", WaitMS: 20},
		{Name: "chase-rainbow", Animation: "chase_rainbow", WaitMS: 50, Iterations: 10},
		{Name: "rings", Animation: "rings", Color: "#ff00ff", WaitMS: 100},
		{Name: "off", Animation: "clear"},
	},
}

// NewPlayer constructs a Player driving a.
func NewPlayer(a Animator) *Player {
	return &Player{state: Idle, anim: a}
}

// Player walks a Program clip by clip.
type Player struct {
	mu    sync.Mutex
	state PlayerState
	prog  Program
	idx   int
	anim  Animator
}

// Validate checks that every clip names a known animation and colour.
func (p Program) Validate() error {
	if len(p.Clips) == 0 {
		return errors.New("program has no clips")
	}
	for i, c := range p.Clips {
		switch c.Animation {
		case "wipe", "chase", "rings":
			if _, err := parseColor(c.Color); err != nil {
				return fmt.Errorf("clip %d (%s): %w", i, c.Name, err)
			}
		case "chase_rainbow", "rainbow", "rainbow_cycle", "clear":
		default:
			return fmt.Errorf("clip %d (%s): unknown animation %q", i, c.Name, c.Animation)
		}
	}
	return nil
}

// Load replaces the current program.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running {
		return errors.New("player is running")
	}
	p.prog = prog
	p.idx = 0
	return nil
}

// State reports whether the player is running.
func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the clip being played.
func (p *Player) Current() (Clip, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Running {
		return Clip{}, false
	}
	return p.prog.Clips[p.idx], true
}

// Run plays the program until it ends, or forever when it loops. It returns
// ctx.Err() when cancelled.
func (p *Player) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.state == Running {
		p.mu.Unlock()
		return errors.New("player is running")
	}
	if len(p.prog.Clips) == 0 {
		p.mu.Unlock()
		return errors.New("no program loaded")
	}
	p.state = Running
	prog := p.prog
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.state = Idle
		p.idx = 0
		p.mu.Unlock()
	}()

	for {
		for i, c := range prog.Clips {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.mu.Lock()
			p.idx = i
			p.mu.Unlock()

			log.Debug().Str("clip", c.Name).Str("animation", c.Animation).Msg("play")
			if err := p.play(ctx, c); err != nil {
				return err
			}
		}
		if !prog.Loop {
			return nil
		}
	}
}

func (p *Player) play(ctx context.Context, c Clip) error {
	wait := time.Duration(c.WaitMS) * time.Millisecond
	iter := c.Iterations
	if iter <= 0 {
		iter = 1
	}
	switch c.Animation {
	case "wipe":
		col, err := parseColor(c.Color)
		if err != nil {
			return err
		}
		return p.anim.ColorWipe(ctx, col, wait)
	case "chase":
		col, err := parseColor(c.Color)
		if err != nil {
			return err
		}
		return p.anim.TheaterChase(ctx, col, wait, iter)
	case "rings":
		col, err := parseColor(c.Color)
		if err != nil {
			return err
		}
		return p.anim.RingWipe(ctx, layout.Rings93, col, wait)
	case "chase_rainbow":
		return p.anim.TheaterChaseRainbow(ctx, wait, iter)
	case "rainbow":
		return p.anim.Rainbow(ctx, wait, iter)
	case "rainbow_cycle":
		return p.anim.RainbowCycle(ctx, wait, iter)
	case "clear":
		if err := p.anim.Clear(); err != nil {
			return err
		}
		return p.anim.Render()
	default:
		return fmt.Errorf("unknown animation %q", c.Animation)
	}
}

func parseColor(s string) (uint32, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b), nil
}
