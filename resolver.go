package hookscope

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/jward/hookscope/internal/ledger"
)

// DiscriminatorKey is the map key read as a discriminator when the first
// argument of a wrapped call is a map[string]any.
const DiscriminatorKey = "key"

// Discriminated is implemented by first arguments that carry an explicit
// discriminator.
type Discriminated interface {
	Discriminator() string
}

// discriminatorOf returns the explicit discriminator carried by args[0].
func discriminatorOf(args []any) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch v := args[0].(type) {
	case Discriminated:
		if d := v.Discriminator(); d != "" {
			return d, true
		}
	case map[string]any:
		if d, ok := v[DiscriminatorKey].(string); ok && d != "" {
			return d, true
		}
	}
	return "", false
}

// pkgPath is this package's import path, used to recognise collector
// frames on the call stack.
var pkgPath = reflect.TypeOf(Collector{}).PkgPath()

var internalPrefixes = []string{
	"runtime.",
	"reflect.",
	pkgPath + ".(*Collector).",
	pkgPath + ".(*Adapter).",
	pkgPath + ".(*primitives).",
	pkgPath + ".(*stateTracker).",
	pkgPath + ".(*dispatchTracker).",
}

func isInternal(fn string) bool {
	for _, p := range internalPrefixes {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}

// shortName strips the import path and package from a fully qualified
// function name: "example.com/app/ui.Panel.func1" becomes "Panel.func1".
func shortName(fn string) string {
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.Index(fn, "."); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}

// scope is where a stateful primitive call is recorded: the open
// invocation of a correlated unit, or an unscoped unit's flat lists.
type scope struct {
	unit     *ledger.Unit
	inv      *ledger.Invocation
	unscoped *ledger.Unscoped
}

func (s scope) correlated() bool { return s.inv != nil }

func (s scope) name() string {
	if s.correlated() {
		return s.unit.Name
	}
	return s.unscoped.Name
}

func (s scope) addHook(kind ledger.HookKind) *ledger.HookEntry {
	if s.correlated() {
		return s.inv.AddHook(kind)
	}
	return s.unscoped.AddHook(kind)
}

// owner returns the ledger record calls in s are attributed to.
func (s scope) owner() any {
	if s.correlated() {
		return s.unit
	}
	return s.unscoped
}

func (s scope) timelineKey(slot int) ledger.TimelineKey {
	if s.correlated() {
		return ledger.TimelineKey{
			Name:          s.unit.Name,
			Discriminator: s.unit.Discriminator,
			Origin:        s.unit.Origin,
			Slot:          slot,
		}
	}
	return ledger.TimelineKey{
		Name:          s.unscoped.Name,
		Discriminator: s.unscoped.Discriminator,
		Slot:          slot,
		Unscoped:      true,
	}
}

func (s scope) generation() int {
	if s.correlated() {
		return s.inv.Seq
	}
	return 0
}

const maxDepth = 64

// resolve finds the unit calling a stateful primitive. The nearest
// non-internal caller frame is compared with the body of the innermost open
// invocation; on a match the call belongs to that invocation, otherwise the
// caller is recorded as an unscoped unit named after its function.
func (c *Collector) resolve() scope {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var caller runtime.Frame
	skip := c.skip
	for {
		fr, more := frames.Next()
		if !isInternal(fr.Function) {
			if skip == 0 {
				caller = fr
				break
			}
			skip--
		}
		if !more {
			break
		}
	}

	if top := c.top(); top != nil && top.matches(caller) {
		return scope{unit: top.unit, inv: top.inv}
	}

	name := "unknown"
	if caller.Function != "" {
		name = shortName(caller.Function)
	}
	return scope{unscoped: c.ledger.Unscoped(name, c.inheritedDiscriminator())}
}

func (f *frame) matches(caller runtime.Frame) bool {
	if caller.Function == "" {
		return false
	}
	if caller.Func != nil && caller.Entry == f.entry {
		return true
	}
	// Inlined frames carry the entry of the function they were inlined into,
	// so fall back to names. Bound methods are wrapped in a "-fm" thunk.
	return caller.Function == f.fn || caller.Function+"-fm" == f.fn
}
