package main

import (
	"context"
	"time"

	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/events"
	"github.com/gomlx/interop/internal/plan"
	"github.com/gomlx/interop/interop"
	"github.com/gomlx/interop/streams"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

type stepStats struct {
	launches, failures int
}

// runner launches the steps of a plan on one out-of-order stream.
type runner struct {
	plan        *plan.Plan
	engine      *engines.Engine
	stream      *streams.Stream
	launchables []*plan.Launchable
	stats       map[string]*stepStats

	// launched events, owned by the runner until finalize.
	launched []launchedEvent
}

type launchedEvent struct {
	step  string
	event *events.Event
}

func newRunner(p *plan.Plan, engine *engines.Engine) (*runner, error) {
	stream, err := streams.New(engine, streams.OutOfOrder)
	if err != nil {
		return nil, err
	}
	launchables, err := p.Build(engine)
	if err != nil {
		stream.Finalize()
		return nil, err
	}
	r := &runner{
		plan:        p,
		engine:      engine,
		stream:      stream,
		launchables: launchables,
		stats:       make(map[string]*stepStats, len(launchables)),
	}
	for _, l := range launchables {
		r.stats[l.Step.Name] = &stepStats{}
	}
	return r, nil
}

func (r *runner) numLaunches() int {
	var total int
	for _, stats := range r.stats {
		total += stats.launches
	}
	return total
}

// launchAll launches every step of every repetition. Each step waits for the steps it runs after
// (in the same repetition) and for its own launch in the previous repetition, which wrote the same
// memory.
func (r *runner) launchAll() error {
	var previous map[string]*events.Event
	for rep := range r.plan.Repetitions() {
		current := make(map[string]*events.Event, len(r.launchables))
		for _, l := range r.launchables {
			deps := make([]*events.Event, 0, len(l.Step.After)+1)
			for _, name := range l.Step.After {
				deps = append(deps, current[name])
			}
			if e := previous[l.Step.Name]; e != nil {
				deps = append(deps, e)
			}
			var completion *events.Event
			err := interop.Execute(l.Primitive, r.stream, len(l.Args), l.Args, deps, len(deps), &completion)
			if err != nil {
				r.stats[l.Step.Name].failures++
				return errors.WithMessagef(err, "repetition %d, step %q", rep, l.Step.Name)
			}
			r.stats[l.Step.Name].launches++
			current[l.Step.Name] = completion
			r.launched = append(r.launched, launchedEvent{step: l.Step.Name, event: completion})
		}
		previous = current
	}
	return nil
}

// run launches the plan and waits for the work to complete.
func (r *runner) run(withProgress bool, timeout time.Duration) error {
	if err := r.launchAll(); err != nil {
		return err
	}
	klog.V(1).Infof("launched %d primitives on %s", len(r.launched), r.stream)

	var bar *progressbar.ProgressBar
	if withProgress {
		bar = progressbar.NewOptions(len(r.launched),
			progressbar.OptionSetDescription("waiting"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("launches"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionClearOnFinish(),
		)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	var firstErr error
	for _, launched := range r.launched {
		err := launched.event.WaitContext(ctx)
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "waiting for %d launches", len(r.launched))
		}
		if err != nil {
			r.stats[launched.step].failures++
			if firstErr == nil {
				firstErr = err
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return firstErr
}

// finalize releases the launched events, the stream and the memory.
func (r *runner) finalize() {
	if err := r.stream.Wait(); err != nil {
		klog.Warningf("stream %s: %v", r.stream, err)
	}
	for _, launched := range r.launched {
		if err := launched.event.Release(); err != nil {
			klog.Warningf("releasing %s: %v", launched.event, err)
		}
	}
	r.launched = r.launched[:0]
	r.stream.Finalize()
	for _, l := range r.launchables {
		l.Finalize()
	}
}
