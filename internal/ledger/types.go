package ledger

import "fmt"

// HookKind names one family of stateful primitives.
type HookKind string

const (
	KindState   HookKind = "state"
	KindEffect  HookKind = "effect"
	KindMemo    HookKind = "memo"
	KindRef     HookKind = "ref"
	KindReducer HookKind = "reducer"
	KindContext HookKind = "context"
)

// Kinds lists every hook kind in recording order.
var Kinds = []HookKind{KindState, KindEffect, KindMemo, KindRef, KindReducer, KindContext}

// Identity keys a tracked unit. Empty Discriminator or Origin means absent.
// Sibling is the 1-based registration order among units sharing Name and
// Discriminator.
type Identity struct {
	Name          string
	Discriminator string
	Origin        string
	Sibling       int
}

func (id Identity) String() string {
	s := id.Name
	if id.Discriminator != "" {
		s += "[" + id.Discriminator + "]"
	}
	if id.Origin != "" {
		s += "@" + id.Origin
	}
	return s
}

// Handle is a spy record for a callable the collector handed out.
// A nil *Handle is absent; a Handle with zero Calls exists but was never
// invoked.
type Handle struct {
	Calls int
	Args  [][]any
}

// Record notes one invocation with args.
func (h *Handle) Record(args ...any) {
	h.Calls++
	h.Args = append(h.Args, args)
}

// Called reports whether the handle was invoked at least once.
func (h *Handle) Called() bool {
	return h != nil && h.Calls > 0
}

// Last returns the arguments of the most recent call.
func (h *Handle) Last() ([]any, bool) {
	if h == nil || len(h.Args) == 0 {
		return nil, false
	}
	return h.Args[len(h.Args)-1], true
}

// HookEntry is the recorded state of one primitive call site. Which fields
// are meaningful depends on Kind:
//
//	state    Values, Mutator
//	effect   Action, Deps, Teardown
//	memo     Deps, Value, Changed, Computed
//	ref      Initial, Value, Changed
//	reducer  State, Dispatch
//	context  Source, Value
type HookEntry struct {
	Kind HookKind
	Seq  int

	Values  []any
	Mutator *Handle

	Action   *Handle
	Deps     []any
	Teardown *Handle

	Value    any
	Initial  any
	Changed  bool
	Computed bool

	State    any
	Dispatch *Handle

	Source any
}

// Current returns the most recent value of a state entry.
func (e *HookEntry) Current() (any, bool) {
	if len(e.Values) == 0 {
		return nil, false
	}
	return e.Values[len(e.Values)-1], true
}

func (e *HookEntry) String() string {
	return fmt.Sprintf("%s#%d", e.Kind, e.Seq)
}

// hookLists holds ordered per-kind entry lists.
type hookLists map[HookKind][]*HookEntry

func (h hookLists) add(kind HookKind) *HookEntry {
	e := &HookEntry{Kind: kind, Seq: len(h[kind]) + 1}
	h[kind] = append(h[kind], e)
	return e
}

func (h hookLists) get(kind HookKind, slot int) (*HookEntry, bool) {
	list := h[kind]
	if slot < 1 || slot > len(list) {
		return nil, false
	}
	return list[slot-1], true
}

// Invocation is one recorded call of a unit.
type Invocation struct {
	ID        string
	Seq       int
	Args      []any
	Result    any
	Completed bool
	Panicked  bool

	hooks hookLists
}

// Complete stores the call's result.
func (inv *Invocation) Complete(result any) {
	inv.Result = result
	inv.Completed = true
}

// Fail marks the invocation as having panicked.
func (inv *Invocation) Fail() {
	inv.Panicked = true
}

// AddHook appends a new entry of kind and returns it.
func (inv *Invocation) AddHook(kind HookKind) *HookEntry {
	return inv.hooks.add(kind)
}

// Hooks returns the entries of kind in call order.
func (inv *Invocation) Hooks(kind HookKind) ([]*HookEntry, bool) {
	list, ok := inv.hooks[kind]
	return list, ok
}

// Hook returns the 1-based slot of kind.
func (inv *Invocation) Hook(kind HookKind, slot int) (*HookEntry, bool) {
	return inv.hooks.get(kind, slot)
}

// Lifecycle holds the handles of a class-like unit's latest instance.
type Lifecycle struct {
	Instance any
	Render   func() any
	SetState func(any)
}

// Unit is a tracked callable with its invocation history.
type Unit struct {
	Identity
	Invocations []*Invocation
	Lifecycle   *Lifecycle

	parent    Identity
	hasParent bool
}

// Parent returns the unit whose invocation was open when u was first
// called. It is a relation only; the ledger owns both units.
func (u *Unit) Parent() (Identity, bool) {
	return u.parent, u.hasParent
}

// Invocation returns the invocation with the given 1-based sequence number.
func (u *Unit) Invocation(seq int) (*Invocation, bool) {
	if seq < 1 || seq > len(u.Invocations) {
		return nil, false
	}
	return u.Invocations[seq-1], true
}

// Last returns the most recently opened invocation.
func (u *Unit) Last() (*Invocation, bool) {
	return u.Invocation(len(u.Invocations))
}

// Unscoped holds flat hook lists for a unit whose calls could not be
// correlated to an intercepted invocation.
type Unscoped struct {
	Name          string
	Discriminator string

	hooks hookLists
}

// AddHook appends a new entry of kind and returns it.
func (u *Unscoped) AddHook(kind HookKind) *HookEntry {
	return u.hooks.add(kind)
}

// Hooks returns the entries of kind in observation order.
func (u *Unscoped) Hooks(kind HookKind) ([]*HookEntry, bool) {
	list, ok := u.hooks[kind]
	return list, ok
}

// Hook returns the 1-based flat slot of kind.
func (u *Unscoped) Hook(kind HookKind, slot int) (*HookEntry, bool) {
	return u.hooks.get(kind, slot)
}

// Snapshot is one point of a state timeline. Invocation is the sequence
// number of the generation whose entry took the value, 0 for unscoped units.
type Snapshot struct {
	Value      any
	Invocation int

	order int
}

// TimelineKey identifies one state slot across generations.
type TimelineKey struct {
	Name          string
	Discriminator string
	Origin        string
	Slot          int
	Unscoped      bool
}
