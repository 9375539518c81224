package server

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Command is a control message. Color takes precedence over Value for ops
// that take a colour.
type Command struct {
	Op    string   `json:"op"` // set | fill | clear | bitmap | brightness | render
	Index int      `json:"index,omitempty"`
	Color string   `json:"color,omitempty"`
	Value uint32   `json:"value,omitempty"`
	Leds  []uint32 `json:"leds,omitempty"`
}

// Reply answers every Command.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (c Command) color() (uint32, error) {
	if c.Color == "" {
		return c.Value, nil
	}
	col, err := colorful.Hex(c.Color)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", c.Color, err)
	}
	r, g, b := col.RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b), nil
}

// Apply executes c against the strip and renders the result.
func (s *Server) Apply(c Command) error {
	var err error
	switch c.Op {
	case "set":
		var col uint32
		if col, err = c.color(); err == nil {
			err = s.strip.SetLED(c.Index, col)
		}
	case "fill":
		var col uint32
		if col, err = c.color(); err == nil {
			err = s.strip.Fill(col)
		}
	case "clear":
		err = s.strip.Clear()
	case "bitmap":
		err = s.strip.SetBitmap(c.Leds)
	case "brightness":
		if c.Value > 255 {
			return fmt.Errorf("brightness %d out of range 0-255", c.Value)
		}
		s.strip.SetBrightness(uint8(c.Value))
	case "render":
	default:
		return fmt.Errorf("unknown op %q", c.Op)
	}
	if err != nil {
		return err
	}
	if err := s.strip.Render(); err != nil {
		return err
	}
	s.Broadcast(false)
	return nil
}
