package progress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"deepart/internal/converter"
	"deepart/internal/files"
)

// Options controls how a Console draws.
type Options struct {
	// Interactive rewrites the per-file lines in place. Use IsTerminal.
	Interactive bool
	// Width truncates lines to the terminal width. Zero disables truncation.
	Width int
	Color bool
	// Pulse is the dot animation period. Defaults to one second.
	Pulse time.Duration
}

type status uint8

const (
	statusPending status = iota
	statusRunning
	statusConverted
	statusFailed
	statusCancelled
)

type entry struct {
	name   string
	status status
	state  string
	detail string
}

// Console is a converter.ProgressSink that draws one line per file.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	opts    Options
	entries []entry
	index   map[string]int
	dots    bool
	rows    int

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewConsole prepares a console for batch. Nothing is written until Start.
func NewConsole(out io.Writer, batch []files.Descriptor, opts Options) *Console {
	if opts.Pulse <= 0 {
		opts.Pulse = time.Second
	}
	c := &Console{
		out:     out,
		opts:    opts,
		entries: make([]entry, 0, len(batch)),
		index:   make(map[string]int, len(batch)),
		dots:    true,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, file := range batch {
		c.add(file)
	}
	return c
}

func (c *Console) add(file files.Descriptor) int {
	c.index[file.Target] = len(c.entries)
	c.entries = append(c.entries, entry{name: file.String(), status: statusPending})
	return len(c.entries) - 1
}

// Start draws the pending view and, in interactive mode, starts the pulse.
func (c *Console) Start() {
	c.startOnce.Do(func() {
		if !c.opts.Interactive {
			close(c.done)
			return
		}
		c.mu.Lock()
		c.redrawLocked()
		c.mu.Unlock()
		go c.pulse()
	})
}

// Stop ends the pulse and draws the final state. It is safe to call more
// than once and without Start.
func (c *Console) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.startOnce.Do(func() { close(c.done) })
		<-c.done
		if c.opts.Interactive {
			c.mu.Lock()
			c.redrawLocked()
			c.mu.Unlock()
		}
	})
}

func (c *Console) pulse() {
	defer close(c.done)
	ticker := time.NewTicker(c.opts.Pulse)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.dots = !c.dots
			c.redrawLocked()
			c.mu.Unlock()
		}
	}
}

// Report implements converter.ProgressSink.
func (c *Console) Report(p converter.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[p.File.Target]
	if !ok {
		i = c.add(p.File)
	}
	e := &c.entries[i]
	if e.status >= statusConverted {
		return
	}
	switch {
	case !p.Completed:
		e.status = statusRunning
		e.state = p.State
	case p.Cancelled:
		e.status = statusCancelled
	case p.Err != nil:
		e.status = statusFailed
		e.detail = failureDetail(p.Err)
	default:
		e.status = statusConverted
	}

	if c.opts.Interactive {
		c.redrawLocked()
		return
	}
	fmt.Fprintln(c.out, c.lineLocked(*e, false))
}

func (c *Console) redrawLocked() {
	var buf bytes.Buffer
	if c.rows > 0 {
		fmt.Fprintf(&buf, "\x1b[%dA", c.rows)
	}
	for _, e := range c.entries {
		buf.WriteString("\r\x1b[2K")
		buf.WriteString(c.lineLocked(e, true))
		buf.WriteByte('\n')
	}
	c.rows = len(c.entries)
	_, _ = c.out.Write(buf.Bytes())
}

func (c *Console) lineLocked(e entry, animate bool) string {
	line := e.name + " - " + label(e, animate && c.dots)
	if c.opts.Width > 1 {
		line = text.Trim(line, c.opts.Width-1)
	}
	if c.opts.Color {
		if color := statusColor(e.status); color != "" {
			line = color + line + ansiReset
		}
	}
	return line
}

func label(e entry, long bool) string {
	switch e.status {
	case statusRunning:
		if long {
			return e.state + "..."
		}
		return e.state + ".."
	case statusConverted:
		return "Converted"
	case statusFailed:
		return "FAILED " + e.detail
	case statusCancelled:
		return "CANCELLED"
	default:
		return "pending"
	}
}

func statusColor(s status) string {
	switch s {
	case statusConverted:
		return ansiGreen
	case statusFailed:
		return ansiRed
	case statusCancelled:
		return ansiYellow
	default:
		return ""
	}
}

func failureDetail(err error) string {
	msg := err.Error()
	var stepErr *converter.StepError
	if errors.As(err, &stepErr) {
		msg = strings.TrimPrefix(stepErr.Error(), stepErr.File+": ")
	}
	return strings.Join(strings.Fields(msg), " ")
}

// Summary renders the per-file outcome table.
func (c *Console) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([][]string, 0, len(c.entries))
	for _, e := range c.entries {
		result := label(e, true)
		detail := ""
		if e.status == statusFailed {
			result, detail = "FAILED", e.detail
		}
		rows = append(rows, []string{e.name, result, detail})
	}
	return RenderTable([]string{"File", "Result", "Detail"}, rows)
}
