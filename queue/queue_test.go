package queue

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/events"
	"github.com/gomlx/interop/status"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseAll(t *testing.T, evs ...*events.Event) {
	for _, e := range evs {
		require.NoError(t, e.Release())
	}
}

func TestQueue_OutOfOrderWaitList(t *testing.T) {
	device := NewDevice(0, 4)
	q := must.M1(device.NewQueue(true))
	defer q.Finalize()

	gate := events.New("gate", nil)
	var order []string
	var mu sync.Mutex
	record := func(name string) Task {
		return func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	first := must.M1(q.Enqueue("first", record("first"), []*events.Event{gate}))
	second := must.M1(q.Enqueue("second", record("second"), []*events.Event{first}))
	independent := must.M1(q.Enqueue("independent", record("independent"), nil))

	require.NoError(t, independent.Wait())
	time.Sleep(5 * time.Millisecond)
	assert.False(t, first.IsComplete(), "first must wait for the gate")
	gate.Complete(nil)
	require.NoError(t, second.Wait())
	require.NoError(t, q.Finish())
	assert.Equal(t, []string{"independent", "first", "second"}, order)

	releaseAll(t, first, second, independent)
	assert.Equal(t, int64(0), device.LiveEvents())
	assert.Equal(t, int64(3), device.NumExecuted())
}

func TestQueue_WorkersBusy(t *testing.T) {
	device := NewDevice(0, 1)
	q := must.M1(device.NewQueue(true))
	defer q.Finalize()

	block := events.New("block", nil)
	started := events.New("started", nil)
	busy := must.M1(q.Enqueue("busy", func() error {
		started.Complete(nil)
		return block.Wait()
	}, nil))
	require.NoError(t, started.Wait())
	assert.Equal(t, 1, device.NumRunning())

	// Ready, but the only worker is busy.
	delayed := must.M1(q.Enqueue("delayed", func() error { return nil }, nil))
	require.Eventually(t, func() bool { return device.NumDelayed() == 1 }, time.Second, time.Millisecond)
	assert.False(t, delayed.IsComplete())

	block.Complete(nil)
	require.NoError(t, q.Finish())
	assert.True(t, delayed.IsComplete())
	require.Eventually(t, func() bool { return device.NumRunning() == 0 }, time.Second, time.Millisecond)
	releaseAll(t, busy, delayed)

	// Inline devices never wait for workers.
	inline := NewDevice(1, 0)
	q2 := must.M1(inline.NewQueue(true))
	defer q2.Finalize()
	e := must.M1(q2.Enqueue("inline", func() error { return nil }, nil))
	require.NoError(t, e.Wait())
	assert.Zero(t, inline.NumDelayed())
	releaseAll(t, e)
}

func TestQueue_InOrder(t *testing.T) {
	device := NewDevice(0, -1)
	q := must.M1(device.NewQueue(false))

	var counter atomic.Int32
	var observed []int32
	var evs []*events.Event
	for ii := range 5 {
		e := must.M1(q.Enqueue(fmt.Sprintf("step-%d", ii), func() error {
			time.Sleep(time.Millisecond)
			observed = append(observed, counter.Add(1))
			return nil
		}, nil))
		evs = append(evs, e)
	}
	require.NoError(t, q.Finish())
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, observed)
	releaseAll(t, evs...)
	q.Finalize()
	assert.Equal(t, int64(0), device.LiveEvents(), "queue must release its reference to the last event")
	assert.Equal(t, 0, device.NumQueues())
}

func TestQueue_Failures(t *testing.T) {
	device := NewDevice(0, 2)
	q := must.M1(device.NewQueue(true))
	defer q.Finalize()

	failed := must.M1(q.Enqueue("failing", func() error { return fmt.Errorf("kernel fault") }, nil))
	dependent := must.M1(q.Enqueue("dependent", func() error {
		t.Error("dependent task should not run")
		return nil
	}, []*events.Event{failed}))
	panicking := must.M1(q.Enqueue("panicking", func() error { panic("bad kernel") }, nil))

	assert.ErrorContains(t, failed.Wait(), "kernel fault")
	err := dependent.Wait()
	require.Error(t, err)
	assert.Equal(t, status.ExecutionFailure, status.Of(err))
	assert.ErrorContains(t, err, "kernel fault")
	err = panicking.Wait()
	require.Error(t, err)
	assert.ErrorContains(t, err, "bad kernel")
	require.Error(t, q.Finish())
	require.NoError(t, q.Finish(), "failures are reported once")
	releaseAll(t, failed, dependent, panicking)
}

func TestQueue_InvalidUse(t *testing.T) {
	device := NewDevice(0, 1)
	q := must.M1(device.NewQueue(true))
	_, err := q.Enqueue("nil", nil, nil)
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = q.Enqueue("nil-dep", func() error { return nil }, []*events.Event{nil})
	assert.Equal(t, status.InvalidArguments, status.Of(err))

	q.Finalize()
	q.Finalize()
	_, err = q.Enqueue("late", func() error { return nil }, nil)
	assert.Equal(t, status.ExecutionFailure, status.Of(err))

	device.Finalize()
	_, err = device.NewQueue(true)
	require.Error(t, err)
}

func TestEngineConfig(t *testing.T) {
	engine, err := engines.NewWithConfig("cq:device=2,parallelism=3")
	require.NoError(t, err)
	assert.True(t, engine.Is(engines.RuntimeCommandQueue))
	assert.Equal(t, engines.DeviceNum(2), engine.DeviceNum())
	device := must.M1(DeviceOf(engine))
	assert.Equal(t, 3, device.Parallelism())

	_, err = engines.NewWithConfig("cq:device=-1")
	require.Error(t, err)
	_, err = engines.NewWithConfig("cq:colour=blue")
	require.Error(t, err)

	_, err = DeviceOf(engines.Make(engines.RuntimeGo, 0, nil))
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = DeviceOf(engines.Make(engines.RuntimeCommandQueue, 0, "not a device"))
	assert.Equal(t, status.RuntimeError, status.Of(err))
}
