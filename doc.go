// Package hookscope lets a test suite observe what instrumented callables
// do internally: how often each was called, with which arguments and
// results, and, for components of the [host] runtime, how every stateful
// primitive they use (state, effect, memo, ref, reducer and context cells)
// evolves across re-renders (generations).
//
// # Recording
//
// A [Collector] holds the recorded data. [Wrap] and [WrapClass] replace a
// callable with one that opens an [Invocation] before the original body
// runs and stores its result afterwards. Recursive calls through a wrapper
// open one invocation per level.
//
// An [Adapter] instruments the host primitives. Each primitive call is
// attributed to the innermost open invocation when the calling function is
// that invocation's body; otherwise it is recorded against an unscoped unit
// named after the calling function, with no generation axis.
//
//	c := hookscope.NewCollector()
//	h := hookscope.NewAdapter(c).Hooks()
//
//	counter := hookscope.Wrap(c, "Counter", host.Component(func(props any) any {
//		n, set := h.UseState(0)
//		h.UseEffect(func() host.Teardown { set.Set(1); return nil }, []any{})
//		return n
//	}))
//	host.Mount(counter, nil)
//
//	q := c.Query()
//	n, _ := q.Count("Counter")                          // 2
//	e, _ := q.Hook("Counter", 1, hookscope.KindState, 1) // Values [0 1]
//
// # Module substitution
//
// [Setup] validates a harness configuration, discovers the files to
// instrument and registers namespace factories with a [modules.Registry]:
// [Collector.ModuleFactory] for every discovered file and
// [Adapter.Factory] for the host module.
//
// # Queries
//
// Every [QueryBuilder] lookup returns (value, ok); a miss is never an error.
// [Query] reads the process-wide [Default] collector. [QueryBuilder.Eval]
// evaluates Risor expressions over the same data.
//
// Collectors, like the host runtime, are not safe for concurrent use.
package hookscope
