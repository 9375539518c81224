package led

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/coreman2200/neopixel/ws2811"
)

// Console prints every frame as a row of coloured blocks.
type Console struct {
	dev *ws2811.Device
	out io.Writer
}

func NewConsole(o Options) *Console {
	return &Console{dev: channelFromOptions(o), out: os.Stdout}
}

func (c *Console) Init() error { return nil }

func (c *Console) Render() error {
	buf := Frame(&c.dev.Channel[0])
	var sb strings.Builder
	sb.WriteString("\r")
	for i := 0; i+2 < len(buf); i += 3 {
		sb.WriteString(color.RGB(int(buf[i]), int(buf[i+1]), int(buf[i+2])).Sprint("█"))
	}
	_, err := io.WriteString(c.out, sb.String())
	return err
}

func (c *Console) Wait() error { return nil }

func (c *Console) Fini() error {
	_, err := io.WriteString(c.out, "\n")
	return err
}

func (c *Console) Device() *ws2811.Device { return c.dev }

func (c *Console) String() string { return "console" }
