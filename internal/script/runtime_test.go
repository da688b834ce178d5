package script

import (
	"context"
	"testing"

	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves a single unit "Counter" with two invocations, plus a
// discriminated unit "Item" under "a".
type fakeSource struct{}

func (fakeSource) Count(name, disc string) (int, bool) {
	switch {
	case name == "Counter" && disc == "":
		return 2, true
	case name == "Item" && disc == "a":
		return 1, true
	}
	return 0, false
}

func (fakeSource) Result(name string, seq int, disc string) (any, bool) {
	if name != "Counter" || seq < 1 || seq > 2 {
		return nil, false
	}
	return seq * 10, true
}

func (fakeSource) Args(name string, seq int, disc string) ([]any, bool) {
	if name != "Counter" || seq != 1 {
		return nil, false
	}
	return []any{"x", 3, true}, true
}

func (fakeSource) HookValue(name string, seq int, kind string, slot int, disc string) (any, bool) {
	if name == "Counter" && kind == "state" && slot == 1 {
		return seq - 1, true
	}
	return nil, false
}

func (fakeSource) Timeline(name string, slot int, disc string) ([]any, bool) {
	if name == "Counter" && slot == 1 {
		return []any{0, 1}, true
	}
	return nil, false
}

func (fakeSource) Units() []string { return []string{"Counter", "Item[a]"} }

func evalSource(t *testing.T, src string) any {
	t.Helper()
	rt := NewRuntime(fakeSource{})
	v, err := rt.Eval(context.Background(), src, nil)
	require.NoError(t, err)
	return v
}

func TestEval_Builtins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want any
	}{
		{"count", `count("Counter")`, int64(2)},
		{"count with discriminator", `count("Item", "a")`, int64(1)},
		{"count miss", `count("Nope")`, nil},
		{"result", `result("Counter", 2)`, int64(20)},
		{"result miss", `result("Counter", 3)`, nil},
		{"args", `args("Counter", 1)`, []any{"x", int64(3), true}},
		{"hook value", `hook_value("Counter", 2, "state", 1)`, int64(1)},
		{"hook value miss", `hook_value("Counter", 1, "memo", 1)`, nil},
		{"timeline", `timeline("Counter", 1)`, []any{int64(0), int64(1)}},
		{"units", `units()`, []any{"Counter", "Item[a]"}},
		{"expression", `count("Counter") == 2 && result("Counter", 1) == 10`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, evalSource(t, tt.src))
		})
	}
}

func TestEval_BadArguments(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(fakeSource{})
	for _, src := range []string{
		`count()`,
		`count(1)`,
		`result("Counter")`,
		`hook_value("Counter", 1, "state")`,
		`units(1)`,
	} {
		_, err := rt.Eval(context.Background(), src, nil)
		assert.Error(t, err, src)
	}
}

func TestEval_ExtraGlobals(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(fakeSource{})
	v, err := rt.Eval(context.Background(), `count(target)`, map[string]any{
		"target": object.NewString("Counter"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestEval_SyntaxError(t *testing.T) {
	t.Parallel()

	rt := NewRuntime(fakeSource{})
	_, err := rt.Eval(context.Background(), `count(`, nil)
	assert.Error(t, err)
}

func TestToObject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, object.Nil, toObject(nil))
	assert.Equal(t, int64(7), toObject(uint8(7)).Interface())
	assert.Equal(t, 1.5, toObject(float32(1.5)).Interface())
	assert.Equal(t, map[string]any{"k": "v"}, toObject(map[string]any{"k": "v"}).Interface())

	type point struct{ X, Y int }
	assert.Equal(t, "{1 2}", toObject(point{1, 2}).Interface())
}
