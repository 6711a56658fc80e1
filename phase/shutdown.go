package phase

import "context"

// shutdownState is terminal: Driver.Run recognizes it by type and
// returns instead of calling Run on it. It exists so the State
// interface's exhaustive switch in the driver loop has a concrete value
// to name, not because its Run body ever executes.
type shutdownState struct{}

func (s *shutdownState) Name() string { return "shutdown" }

func (s *shutdownState) Run(ctx context.Context, d *Driver) State {
	return s
}
