// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package queue

import (
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/events"
	"github.com/gomlx/interop/internal/workerspool"
	"github.com/gomlx/interop/status"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// RuntimeName used in GOMLX_ENGINE to select the command-queue runtime.
const RuntimeName = "cq"

func init() {
	engines.Register(RuntimeName, engines.RuntimeCommandQueue, NewEngineFromConfig)
}

// Device executes the work submitted by its queues on a pool of workers.
type Device struct {
	num     engines.DeviceNum
	workers *workerspool.Pool

	finalized   atomic.Bool
	numQueues   atomic.Int32
	numExecuted atomic.Int64
	numDelayed  atomic.Int64
	liveEvents  atomic.Int64
}

// NewDevice creates a device with the given parallelism: 0 runs work inline on the goroutine that
// resolved its dependencies, negative values mean unlimited.
func NewDevice(num engines.DeviceNum, parallelism int) *Device {
	return &Device{
		num:     num,
		workers: workerspool.New(parallelism),
	}
}

// Num returns the device number.
func (d *Device) Num() engines.DeviceNum { return d.num }

// Parallelism returns the configured parallelism.
func (d *Device) Parallelism() int { return d.workers.MaxParallelism() }

// NumExecuted returns the number of tasks executed so far.
func (d *Device) NumExecuted() int64 { return d.numExecuted.Load() }

// NumDelayed returns the number of tasks that were ready to run but had to wait for a free
// worker.
func (d *Device) NumDelayed() int64 { return d.numDelayed.Load() }

// NumRunning returns the number of tasks currently running on the device's workers.
func (d *Device) NumRunning() int { return d.workers.NumRunning() }

// submit runs task on a free worker, or waits for one to become available.
func (d *Device) submit(task func()) {
	if d.workers.TrySubmit(task) {
		return
	}
	if d.workers.MaxParallelism() != 0 {
		d.numDelayed.Add(1)
	}
	d.workers.Submit(task)
}

// LiveEvents returns the number of events created by the device's queues that haven't been fully
// released yet. A value that keeps growing indicates leaked events.
func (d *Device) LiveEvents() int64 { return d.liveEvents.Load() }

// NumQueues returns the number of queues created and not yet finalized.
func (d *Device) NumQueues() int { return int(d.numQueues.Load()) }

// IsFinalized returns whether Finalize was called.
func (d *Device) IsFinalized() bool { return d.finalized.Load() }

// Finalize the device: queues can no longer submit work to it.
func (d *Device) Finalize() {
	if d.finalized.Swap(true) {
		return
	}
	if live := d.LiveEvents(); live > 0 {
		klog.Warningf("device %d finalized with %d events not released", d.num, live)
	}
	if running := d.NumRunning(); running > 0 {
		klog.Warningf("device %d finalized with %d tasks still running", d.num, running)
	}
}

// newEvent creates an event accounted for in LiveEvents.
func (d *Device) newEvent(name string) *events.Event {
	d.liveEvents.Add(1)
	return events.New(name, func(*events.Event) { d.liveEvents.Add(-1) })
}

// NewEngine returns a new engine for the device.
func NewEngine(device *Device) *engines.Engine {
	return engines.Make(engines.RuntimeCommandQueue, device.num, device)
}

// DeviceOf returns the Device of a command-queue engine.
func DeviceOf(engine *engines.Engine) (*Device, error) {
	if !engine.Is(engines.RuntimeCommandQueue) {
		return nil, status.InvalidArgumentsf("engine %s is not a %s engine", engine, engines.RuntimeCommandQueue)
	}
	device, ok := engines.PayloadAs[*Device](engine)
	if !ok || device == nil {
		return nil, status.RuntimeErrorf("engine %s has no command-queue device payload (%T)", engine, engine.Payload())
	}
	return device, nil
}

// NewEngineFromConfig creates a device and its engine from a configuration "device=N,parallelism=P".
// Both keys are optional: the default is device 0 with runtime.NumCPU() parallelism.
func NewEngineFromConfig(config string) (*engines.Engine, error) {
	values, err := engines.ParseConfig(config)
	if err != nil {
		return nil, err
	}
	deviceNum, parallelism := 0, runtime.NumCPU()
	for key, value := range values {
		switch key {
		case "device":
			deviceNum, err = strconv.Atoi(value)
			if err == nil && deviceNum < 0 {
				err = errors.New("must be non-negative")
			}
		case "parallelism":
			parallelism, err = strconv.Atoi(value)
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			return nil, errors.WithMessagef(err, "runtime %q: invalid configuration %q for key %q", RuntimeName, value, key)
		}
	}
	return NewEngine(NewDevice(engines.DeviceNum(deviceNum), parallelism)), nil
}
