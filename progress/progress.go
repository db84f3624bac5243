package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

const (
	ModeBar   = "bar"
	ModePterm = "pterm"
	ModeNone  = "none"

	barLength = 100
)

// Display shows how far the scan of one file has progressed. Start and
// Stop bracket each file; Update is called after every line read.
type Display interface {
	Start(path string)
	Update(done, total int)
	Stop()
}

// New returns the display for mode, writing to w.
func New(mode string, w io.Writer) (Display, error) {
	switch mode {
	case ModeBar, "":
		return NewClassic(w), nil
	case ModePterm:
		return NewPterm(w), nil
	case ModeNone:
		return None{}, nil
	}
	return nil, fmt.Errorf("unknown progress mode %q", mode)
}

// None discards all updates.
type None struct{}

func (None) Start(string) {}

func (None) Update(int, int) {}

func (None) Stop() {}

// Classic draws a fixed-width bar of '=' and '-' followed by a percentage,
// returning the cursor to the start of the line with a carriage return.
type Classic struct {
	w    io.Writer
	last string
}

func NewClassic(w io.Writer) *Classic {
	return &Classic{w: w}
}

func (c *Classic) Start(string) {
	c.last = ""
}

func (c *Classic) Update(done, total int) {
	if total <= 0 {
		return
	}
	if done > total {
		done = total
	}

	line := Render(done, total)
	if line == c.last {
		return
	}
	c.last = line
	_, _ = io.WriteString(c.w, line)
}

// Stop leaves the bar in place; the summary line clears it.
func (c *Classic) Stop() {}

// Render returns one frame of the classic bar, including the trailing
// carriage return.
func Render(done, total int) string {
	if total <= 0 {
		return ""
	}
	ratio := float64(done) / float64(total)
	filled := int(math.RoundToEven(barLength * ratio))
	filled = min(max(filled, 0), barLength)
	percent := math.RoundToEven(1000*ratio) / 10

	bar := strings.Repeat("=", filled) + strings.Repeat("-", barLength-filled)
	return fmt.Sprintf("[%s] %.1f%% ...\r", bar, percent)
}

// Pterm renders progress with a pterm progress bar per file.
type Pterm struct {
	w     io.Writer
	mu    sync.Mutex
	title string
	pb    *pterm.ProgressbarPrinter
}

func NewPterm(w io.Writer) *Pterm {
	return &Pterm{w: w}
}

func (p *Pterm) Start(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = path
}

func (p *Pterm) Update(done, total int) {
	if total <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pb == nil {
		pb, err := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle(p.title).
			WithWriter(p.w).
			WithRemoveWhenDone(true).
			Start()
		if err != nil {
			return
		}
		p.pb = pb
	}

	done = min(done, p.pb.Total)
	if delta := done - p.pb.Current; delta > 0 {
		p.pb.Add(delta)
	}
}

func (p *Pterm) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pb == nil {
		return
	}
	_, _ = p.pb.Stop()
	p.pb = nil
}
