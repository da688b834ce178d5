package hookscope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/hookscope"
	"github.com/jward/hookscope/host"
)

func TestQuery_MissesAreAbsent(t *testing.T) {
	c := newCollector(t)
	q := c.Query()

	wrapped := hookscope.Wrap(c, "Known", func() {})
	wrapped()

	_, ok := q.Count("Missing")
	assert.False(t, ok)
	_, ok = q.Invocations("Missing")
	assert.False(t, ok)
	_, ok = q.Invocation("Known", 0)
	assert.False(t, ok)
	_, ok = q.Invocation("Known", 2)
	assert.False(t, ok)
	_, ok = q.Hooks("Known", 1, hookscope.KindState)
	assert.False(t, ok)
	_, ok = q.Hook("Known", 1, hookscope.KindState, 1)
	assert.False(t, ok)
	_, ok = q.Hook("Known", 5, hookscope.KindState, 1)
	assert.False(t, ok)
	_, ok = q.UnscopedHooks("Known", hookscope.KindState)
	assert.False(t, ok)
	_, ok = q.Unscoped("Known", hookscope.KindState, 1)
	assert.False(t, ok)
	_, ok = q.Timeline("Known", 1)
	assert.False(t, ok)
	_, ok = q.UnscopedTimeline("Known", 1)
	assert.False(t, ok)
	_, ok = q.Lifecycle("Known")
	assert.False(t, ok)
	_, ok = q.Parent("Known")
	assert.False(t, ok)
	_, ok = q.Count("Known", hookscope.Origin("elsewhere.go"))
	assert.False(t, ok)
}

func TestQuery_HookSlotsOutOfRange(t *testing.T) {
	c, h := newHarness(t)
	q := c.Query()

	form := hookscope.Wrap(c, "Form", host.Component(func(props any) any {
		h.UseState("")
		h.UseState(false)
		return nil
	}))
	host.Mount(form, nil)

	hooks, ok := q.Hooks("Form", 1, hookscope.KindState)
	require.True(t, ok)
	require.Len(t, hooks, 2)
	assert.Equal(t, 1, hooks[0].Seq)
	assert.Equal(t, 2, hooks[1].Seq)
	assert.Equal(t, "state#2", hooks[1].String())

	_, ok = q.Hook("Form", 1, hookscope.KindState, 0)
	assert.False(t, ok)
	_, ok = q.Hook("Form", 1, hookscope.KindState, 3)
	assert.False(t, ok)
	_, ok = q.Hooks("Form", 1, hookscope.KindEffect)
	assert.False(t, ok)
}

func TestQuery_ResetDiscardsEverything(t *testing.T) {
	c, h := newHarness(t)
	q := c.Query()
	badgeHooks = h

	panel := hookscope.Wrap(c, "Panel", host.Component(func(props any) any {
		h.UseState(1)
		return h.Child("badge", unwrappedBadge, nil)
	}))
	host.Mount(panel, nil)

	_, ok := q.Count("Panel")
	require.True(t, ok)
	_, ok = q.UnscopedHooks("unwrappedBadge", hookscope.KindState)
	require.True(t, ok)
	require.NotEmpty(t, q.Units())

	q.Reset()

	_, ok = q.Count("Panel")
	assert.False(t, ok)
	_, ok = q.Timeline("Panel", 1)
	assert.False(t, ok)
	_, ok = q.UnscopedHooks("unwrappedBadge", hookscope.KindState)
	assert.False(t, ok)
	_, ok = q.UnscopedTimeline("unwrappedBadge", 1)
	assert.False(t, ok)
	assert.Empty(t, q.Units())

	// Wrappers stay installed.
	host.Mount(panel, nil)
	count, ok := q.Count("Panel")
	require.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestQuery_UnitsInCreationOrder(t *testing.T) {
	c := newCollector(t)

	inner := hookscope.Wrap(c, "Inner", func() {})
	outer := hookscope.Wrap(c, "Outer", func() { inner() })
	outer()

	units := c.Query().Units()
	require.Len(t, units, 2)
	assert.Equal(t, "Outer", units[0].Name)
	assert.Equal(t, "Inner", units[1].Name)
}

func TestDefaultCollector(t *testing.T) {
	hookscope.Reset()
	t.Cleanup(hookscope.Reset)

	greet := hookscope.Wrap(hookscope.Default, "greet", func(name string) string { return "hi " + name })
	greet("ada")

	inv, ok := hookscope.Query().Invocation("greet", 1)
	require.True(t, ok)
	assert.Equal(t, "hi ada", inv.Result)
	assert.NotEmpty(t, inv.ID)

	hookscope.Reset()
	_, ok = hookscope.Query().Count("greet")
	assert.False(t, ok)
}

func TestIdentity_String(t *testing.T) {
	tests := []struct {
		id   hookscope.Identity
		want string
	}{
		{hookscope.Identity{Name: "Row"}, "Row"},
		{hookscope.Identity{Name: "Row", Discriminator: "a"}, "Row[a]"},
		{hookscope.Identity{Name: "Row", Origin: "ui/row.go"}, "Row@ui/row.go"},
		{hookscope.Identity{Name: "Row", Discriminator: "a", Origin: "ui/row.go"}, "Row[a]@ui/row.go"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.id.String())
	}
}
