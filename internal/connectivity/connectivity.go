package connectivity

import "context"

// Probe reports whether the folder service can currently be reached.
type Probe interface {
	IsConnected(ctx context.Context) bool
}

// Static is a Probe with a fixed answer.
type Static bool

func (s Static) IsConnected(context.Context) bool { return bool(s) }

// Func adapts a function to Probe.
type Func func(ctx context.Context) bool

func (f Func) IsConnected(ctx context.Context) bool { return f(ctx) }
