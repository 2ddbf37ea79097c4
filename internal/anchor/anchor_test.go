package anchor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/nodeid"
	"github.com/vk/nodegrid/internal/testutil"
)

func TestPositions_EvenSpacing(t *testing.T) {
	for n := 1; n <= 7; n++ {
		pos := Positions(n)
		require.Len(t, pos, n)
		for i, p := range pos {
			assert.InDelta(t, float64(i+1)/float64(n+1), p, 1e-12)
			assert.Greater(t, p, 0.0)
			assert.Less(t, p, 1.0)
			if i > 0 {
				assert.Greater(t, p, pos[i-1])
			}
		}
	}
	assert.Empty(t, Positions(0))
}

func TestBuildInputs(t *testing.T) {
	specs := []nodedef.InputSpec{
		{Name: "a", Type: "number", Default: 3},
		{Name: "b", Side: nodedef.SideBottom, Label: "Bee"},
	}

	t.Run("process node", func(t *testing.T) {
		ins := BuildInputs(specs, nodedef.FlowProcess)
		require.Len(t, ins, 2)
		assert.Equal(t, 3, ins[0].Value())
		assert.Equal(t, nodedef.SideLeft, ins[0].Side())
		assert.Equal(t, "a", ins[0].Label())
		assert.Equal(t, nodedef.SideBottom, ins[1].Side())
		assert.Equal(t, "Bee", ins[1].Label())
		assert.InDelta(t, 1.0/3, ins[0].Position(), 1e-12)
	})

	t.Run("start node has no inputs", func(t *testing.T) {
		assert.Empty(t, BuildInputs(specs, nodedef.FlowStart))
	})
}

func TestBuildOutputsAndEvents(t *testing.T) {
	outs := BuildOutputs([]nodedef.OutputSpec{{Name: "y", Type: "number"}})
	require.Len(t, outs, 1)
	assert.Nil(t, outs[0].Value())
	assert.Equal(t, nodedef.SideRight, outs[0].Side())
	assert.True(t, outs[0].IsOutput())

	evs := BuildEvents([]nodedef.EventSpec{{Name: "done"}, {Name: "fail"}})
	require.Len(t, evs, 2)
	assert.Equal(t, nodedef.SideTop, evs[0].Side())
	assert.True(t, evs[1].IsEvent())
	assert.InDelta(t, 2.0/3, evs[1].Position(), 1e-12)
}

func TestController_Reset(t *testing.T) {
	in := BuildInputs([]nodedef.InputSpec{{Name: "x", Default: "d"}}, nodedef.FlowProcess)[0]
	in.SetValue("changed")
	in.Reset()
	assert.Equal(t, "d", in.Value())

	out := BuildOutputs([]nodedef.OutputSpec{{Name: "n", Type: "number"}, {Name: "l", Type: "array"}, {Name: "u"}})
	for _, o := range out {
		o.SetValue("junk")
		o.Reset()
	}
	assert.Equal(t, float64(0), out[0].Value())
	assert.Equal(t, []any{}, out[1].Value())
	assert.Nil(t, out[2].Value())
}

func TestController_Folded(t *testing.T) {
	testCases := []struct {
		policy, connected, want bool
	}{
		{policy: false, connected: false, want: false},
		{policy: false, connected: true, want: true},
		{policy: true, connected: false, want: true},
		{policy: true, connected: true, want: false},
	}
	for _, tc := range testCases {
		c := NewController(&Anchor{ID: "a", Direction: Input}, WithFoldPolicy(tc.policy))
		c.SetConnected(tc.connected)
		assert.Equal(t, tc.want, c.Folded(), "policy=%v connected=%v", tc.policy, tc.connected)
		if tc.connected {
			assert.Equal(t, !c.FoldPolicy(), c.Folded())
		}
	}
}

func TestController_Snapshot(t *testing.T) {
	c := NewController(&Anchor{ID: "a", Direction: Output, Position: 0.5}, WithTheme("dark"))
	c.SetValue(4)
	s := c.Snapshot()
	assert.Equal(t, "a", s.ID)
	assert.Equal(t, Output, s.Direction)
	assert.Equal(t, 4, s.Value)
	assert.True(t, s.Visible)
	assert.Equal(t, "dark", s.Theme)
}

func TestEventController_EmitIsolatesSubscribers(t *testing.T) {
	ctx, logs := testutil.LoggedContext(t)
	ev := NewEventController(&Anchor{ID: "done"})

	var got []string
	ev.Subscribe(func(_ context.Context, v any) error {
		got = append(got, "first")
		return errors.New("boom")
	})
	ev.Subscribe(func(_ context.Context, v any) error {
		panic("kaboom")
	})
	ev.Subscribe(func(_ context.Context, v any) error {
		got = append(got, "third:"+v.(string))
		return nil
	})

	failed := ev.Emit(ctx, "payload")
	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"first", "third:payload"}, got)
	assert.Equal(t, "payload", ev.Value())
	assert.Contains(t, logs.String(), "boom")
	assert.Contains(t, logs.String(), "kaboom")
}

func TestEventController_UnsubscribeAndCleanup(t *testing.T) {
	ev := NewEventController(&Anchor{ID: "e"})
	calls := 0
	unsub := ev.Subscribe(func(context.Context, any) error { calls++; return nil })
	ev.Subscribe(func(context.Context, any) error { calls++; return nil })
	require.Equal(t, 2, ev.Subscribers())

	unsub()
	unsub()
	assert.Equal(t, 1, ev.Subscribers())
	ev.Emit(context.Background(), 1)
	assert.Equal(t, 1, calls)

	ev.Cleanup()
	assert.Zero(t, ev.Subscribers())
}

func TestCell_ConcurrentAccess(t *testing.T) {
	c := NewCell(0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set(i)
			_ = c.Get()
		}(i)
	}
	wg.Wait()
	assert.NotNil(t, c.Get())
}

func TestLinkAble(t *testing.T) {
	ctx, logs := testutil.LoggedContext(t)

	num := nodedef.OutputSpec{Type: "number"}
	assert.True(t, LinkAble(ctx, num, nodedef.InputSpec{Type: "number"}))
	assert.False(t, LinkAble(ctx, num, nodedef.InputSpec{Type: "string"}))
	assert.True(t, LinkAble(ctx, nodedef.OutputSpec{}, nodedef.InputSpec{Type: "string"}))
	assert.True(t, LinkAble(ctx, nil, nodedef.InputSpec{Type: "string"}))
	assert.True(t, LinkAble(ctx, nodedef.OutputSpec{Type: "any"}, nodedef.InputSpec{Type: "string"}))
	assert.True(t, LinkAble(ctx, nodedef.OutputSpec{Type: []any{"number"}}, nodedef.InputSpec{Type: "Number"}))
	assert.Contains(t, logs.String(), "output_type=number")

	out := BuildOutputs([]nodedef.OutputSpec{{Name: "y", Type: "number"}})[0]
	in := BuildInputs([]nodedef.InputSpec{{Name: "x", Type: "boolean"}}, nodedef.FlowProcess)[0]
	assert.False(t, LinkAble(ctx, out, in))
}

func TestHasConnection(t *testing.T) {
	conns := []Connection{{
		From: Endpoint{CardID: nodeid.FromString("a"), AnchorID: "y"},
		To:   Endpoint{CardID: nodeid.FromNumber(2), AnchorID: "x"},
	}}
	assert.True(t, HasConnection(conns, nodeid.FromString("a"), "y"))
	assert.True(t, HasConnection(conns, nodeid.MustNew(2), "x"))
	assert.False(t, HasConnection(conns, nodeid.FromString("a"), "x"))
	assert.False(t, HasConnection(nil, nodeid.FromString("a"), "y"))
}

func TestAbsolutePosition(t *testing.T) {
	ctx, logs := testutil.LoggedContext(t)
	rect := &Rect{X: 100, Y: 50, Width: 200, Height: 80}

	testCases := []struct {
		side nodedef.Side
		want Point
	}{
		{nodedef.SideLeft, Point{X: 92, Y: 70}},
		{nodedef.SideRight, Point{X: 308, Y: 70}},
		{nodedef.SideTop, Point{X: 150, Y: 42}},
		{nodedef.SideBottom, Point{X: 150, Y: 138}},
		{"diagonal", Point{X: 100, Y: 50}},
	}
	for _, tc := range testCases {
		t.Run(string(tc.side), func(t *testing.T) {
			got, err := AbsolutePosition(ctx, rect, tc.side, 0.25)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Contains(t, logs.String(), "side=diagonal")

	_, err := AbsolutePosition(ctx, nil, nodedef.SideLeft, 0.5)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
	_, err = AbsolutePosition(ctx, &Rect{Width: math.NaN()}, nodedef.SideLeft, 0.5)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}
