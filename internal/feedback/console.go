package feedback

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Console renders feedback on a terminal. Prompts read one line from In.
type Console struct {
	In        io.Reader
	Out       io.Writer
	AssumeYes bool // answer every Confirm with yes without reading In
	Logger    *slog.Logger

	mu       sync.Mutex
	reader   *bufio.Reader
	progress string
}

// NewConsole returns a Console writing to out and reading answers from in.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{In: in, Out: out}
}

func (c *Console) log() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Console) ShowProgress(_ context.Context, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = label
	_, _ = fmt.Fprintf(c.Out, "%s\n", label)
}

func (c *Console) HideProgress(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = ""
}

func (c *Console) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress != ""
}

func (c *Console) Toast(_ context.Context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.Out, "%s\n", message)
}

func (c *Console) Alert(_ context.Context, title, message, okLabel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if title != "" {
		_, _ = fmt.Fprintf(c.Out, "%s\n", title)
	}
	if message != "" {
		_, _ = fmt.Fprintf(c.Out, "%s\n", message)
	}
	// terminal alerts are acknowledged by being printed
	c.log().Debug("alert shown", "title", title, "message", message, "ok", okLabel)
}

func (c *Console) Confirm(_ context.Context, title, message, yesLabel, noLabel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if title != "" {
		_, _ = fmt.Fprintf(c.Out, "%s\n", title)
	}
	_, _ = fmt.Fprintf(c.Out, "%s [%s/%s]: ", message, yesLabel, noLabel)
	if c.AssumeYes {
		_, _ = fmt.Fprintln(c.Out, yesLabel)
		return true
	}
	if c.In == nil {
		_, _ = fmt.Fprintln(c.Out)
		return false
	}
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		// EOF or closed input counts as dismissing the prompt
		c.log().Debug("confirm dismissed", "error", err)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	yes := strings.ToLower(yesLabel)
	return answer == yes || answer == "y" || (len(yes) > 0 && answer == yes[:1])
}
