package app

import (
	"context"
	"fmt"

	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/scanner"
)

// ScenarioResult is the outcome of a replayed script.
type ScenarioResult struct {
	Name    string
	Reports []string
	Stats   input.StatsSnapshot
}

// RunScenario replays s on a simulated clock, one cycle per millisecond
// from 0 to the end of the script, and checks the reports it produced.
// opts.Clock is replaced; reports still reach opts.Sink when set. The
// result is returned even when the expectation fails.
func RunScenario(ctx context.Context, opts Options, s *scanner.Script) (*ScenarioResult, error) {
	clock := input.NewManualClock(0)
	rec := &hid.Recorder{}
	opts.Clock = clock
	opts.Watch = false
	if opts.Sink != nil {
		opts.Sink = hid.MultiSink{rec, opts.Sink}
	} else {
		opts.Sink = rec
	}

	app, err := New(opts)
	if err != nil {
		return nil, err
	}
	defer app.Shutdown()

	replay, err := s.Compile(app.keymap)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	app.logger.Info("scenario starting", "name", s.Name, "steps", len(s.Steps), "end", replay.End())
	for ms := uint32(0); ms <= replay.End(); ms++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clock.Set(ms)
		app.Step(replay)
	}

	result := &ScenarioResult{
		Name:    s.Name,
		Reports: rec.Strings(),
		Stats:   app.runtime.Stats().Snapshot(),
	}
	return result, s.Check(result.Reports)
}
