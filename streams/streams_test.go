package streams

import (
	"fmt"
	"testing"

	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/events"
	"github.com/gomlx/interop/queue"
	"github.com/gomlx/interop/status"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	device := queue.NewDevice(0, 2)
	engine := queue.NewEngine(device)

	s, err := New(engine, 0)
	require.NoError(t, err)
	assert.True(t, s.IsInOrder())
	assert.False(t, s.Queue().IsOutOfOrder())
	s.Finalize()

	s, err = New(engine, OutOfOrder)
	require.NoError(t, err)
	assert.False(t, s.IsInOrder())
	assert.True(t, s.Queue().IsOutOfOrder())
	assert.Same(t, engine, s.Engine())
	s.Finalize()

	_, err = New(engine, InOrder|OutOfOrder)
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = New(nil, InOrder)
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = New(engines.Make(engines.RuntimeNone, 0, nil), InOrder)
	assert.Equal(t, status.Unimplemented, status.Of(err))

	goStream, err := New(engines.Make(engines.RuntimeGo, 0, nil), OutOfOrder)
	require.NoError(t, err)
	assert.Nil(t, goStream.Queue())
}

func TestStream_EnqueueChainsOnDependencySet(t *testing.T) {
	device := queue.NewDevice(0, 4)
	s := must.M1(New(queue.NewEngine(device), OutOfOrder))

	gate := events.New("gate", nil)
	s.Deps().Merge([]*events.Event{gate})
	var trace []string
	require.NoError(t, s.Enqueue("a", func() error { trace = append(trace, "a"); return nil }))
	require.Equal(t, 1, s.Deps().Len())
	a := s.Deps().Events()[0]
	require.NoError(t, s.Enqueue("b", func() error { trace = append(trace, "b"); return nil }))
	b := s.Deps().Events()[0]
	assert.NotSame(t, a, b)
	assert.True(t, a.IsReleased(), "the stream released its reference to a when it was replaced")

	assert.False(t, b.IsComplete())
	gate.Complete(nil)
	require.NoError(t, s.Wait())
	assert.Equal(t, []string{"a", "b"}, trace)

	s.Finalize()
	assert.Equal(t, int64(0), device.LiveEvents())
}

func TestStream_GoRuntime(t *testing.T) {
	s := must.M1(New(engines.Make(engines.RuntimeGo, 0, nil), InOrder))
	ran := false
	require.NoError(t, s.Enqueue("inline", func() error { ran = true; return nil }))
	assert.True(t, ran)
	require.Equal(t, 1, s.Deps().Len())
	assert.True(t, s.Deps().Events()[0].IsComplete())

	err := s.Enqueue("failing", func() error { return fmt.Errorf("no luck") })
	require.Error(t, err)
	assert.Equal(t, status.ExecutionFailure, status.Of(err))
	err = s.Enqueue("panicking", func() error { panic("oops") })
	assert.ErrorContains(t, err, "oops")
	assert.NoError(t, s.Wait())
	s.Finalize()
	assert.Equal(t, 0, s.Deps().Len())
}
