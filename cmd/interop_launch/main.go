// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// interop_launch runs a launch plan through the interop bridge, and reports what was launched.
//
// Usage:
//
//	interop_launch [-plan=plan.yaml] [-engine=cq:parallelism=4] [-repeat=N]
//
// Without -plan it runs a small built-in plan. See package internal/plan for the plan format.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/internal/plan"
	"github.com/gomlx/interop/queue"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagPlan   = flag.String("plan", "", "YAML launch plan to run. If empty, a built-in plan is used.")
	flagEngine = flag.String("engine", "", fmt.Sprintf("Engine configuration, overrides the plan's and $%s. "+
		"Format \"<runtime>:<config>\", e.g. \"%s:parallelism=4\".", engines.GOMLX_ENGINE, queue.RuntimeName))
	flagRepeat   = flag.Int("repeat", 0, "If > 0, overrides the number of repetitions of the plan.")
	flagProgress = flag.Bool("progress", true, "Display a progress bar while waiting for the launched work.")
	flagTimeout  = flag.Duration("timeout", time.Minute, "Maximum time to wait for the launched work.")
	flagShowPlan = flag.Bool("show_plan", false, "Print the plan (in YAML) before running it.")
)

const builtinPlan = `
name: builtin
engine: "cq"
repeat: 8
steps:
  - name: dense
    kind: matmul
    dims: [32, 64, 16]
    bias: true
  - name: act
    kind: eltwise
    algorithm: relu
    alpha: 0.01
    dims: [32, 16]
    after: [dense]
  - name: scale
    kind: eltwise
    algorithm: linear
    alpha: 2
    beta: -1
    dims: [32, 16]
  - name: residual
    kind: add
    dims: [32, 16]
    after: [act, scale]
  - name: half
    kind: reorder
    dims: [32, 16]
    dst_dtype: float16
    after: [residual]
`

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q. See 'interop_launch -help'.", flag.Args())
		os.Exit(1)
	}

	var p *plan.Plan
	if *flagPlan == "" {
		p = must.M1(plan.Parse([]byte(builtinPlan)))
	} else {
		p = must.M1(plan.Load(*flagPlan))
	}
	if *flagRepeat > 0 {
		p.Repeat = *flagRepeat
	}
	if *flagShowPlan {
		fmt.Println(titleStyle.Render("Plan"))
		fmt.Println(string(must.M1(p.Marshal())))
	}

	engine := must.M1(newEngine(p))
	r := must.M1(newRunner(p, engine))
	start := time.Now()
	err := r.run(*flagProgress, *flagTimeout)
	elapsed := time.Since(start)
	r.finalize()
	report(r, elapsed)
	if err != nil {
		klog.Errorf("Plan %q failed: %+v", p.Name, err)
		os.Exit(1)
	}
}

// newEngine uses -engine, the plan's engine, or the default engine, in this order.
func newEngine(p *plan.Plan) (*engines.Engine, error) {
	config := *flagEngine
	if config == "" {
		config = p.Engine
	}
	if config == "" {
		return engines.New()
	}
	return engines.NewWithConfig(config)
}

func report(r *runner, elapsed time.Duration) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Plan %q", r.plan.Name)))
	table := newReportTable(lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Right)
	table.Headers("Step", "Primitive", "After", "Memory", "Launches", "Failures")
	for _, l := range r.launchables {
		stats := r.stats[l.Step.Name]
		table.Row(stats.failures > 0,
			l.Step.Name,
			l.Primitive.Descriptor().Name,
			strings.Join(l.Step.After, ", "),
			humanize.Bytes(uint64(l.Bytes())),
			humanize.Comma(int64(stats.launches)),
			humanize.Comma(int64(stats.failures)))
	}
	fmt.Println(table.Render())

	summary := newReportTable(lipgloss.Right, lipgloss.Left)
	summary.Row(false, "engine", r.engine.String())
	summary.Row(false, "repetitions", humanize.Comma(int64(r.plan.Repetitions())))
	summary.Row(false, "launches", humanize.Comma(int64(r.numLaunches())))
	summary.Row(false, "elapsed", elapsed.String())
	if device, err := queue.DeviceOf(r.engine); err == nil {
		summary.Row(false, "executed", humanize.Comma(device.NumExecuted()))
		summary.Row(false, "waited for a worker", humanize.Comma(device.NumDelayed()))
		summary.Row(device.LiveEvents() > 0, "live events", humanize.Comma(device.LiveEvents()))
	}
	fmt.Println(summary.Render())
}
