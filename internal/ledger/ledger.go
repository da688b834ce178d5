// Package ledger stores invocation history and hook state for tracked units.
//
// The Ledger is a plain in-memory structure and is not safe for concurrent
// use; callers serialise access.
package ledger

import (
	"github.com/rs/xid"
)

type unitKey struct {
	name string
	disc string
}

// Ledger holds every tracked unit, unscoped unit and state timeline.
type Ledger struct {
	units     map[unitKey][]*Unit
	order     []*Unit
	unscoped  map[unitKey]*Unscoped
	timelines map[TimelineKey][]Snapshot
	warned    map[unitKey]bool

	// clock orders timeline snapshots; mark is the clock value at the last
	// checkpoint.
	clock int
	mark  int
}

// New creates an empty Ledger.
func New() *Ledger {
	l := &Ledger{}
	l.Reset()
	return l
}

// Reset discards all recorded data.
func (l *Ledger) Reset() {
	l.units = make(map[unitKey][]*Unit)
	l.order = nil
	l.unscoped = make(map[unitKey]*Unscoped)
	l.timelines = make(map[TimelineKey][]Snapshot)
	l.warned = make(map[unitKey]bool)
	l.clock = 0
	l.mark = 0
}

// Unit returns the unit for id (Name, Discriminator, Origin), creating it if
// needed. parent, when non-nil, is recorded on creation only.
func (l *Ledger) Unit(id Identity, parent *Identity) *Unit {
	key := unitKey{id.Name, id.Discriminator}
	for _, u := range l.units[key] {
		if u.Origin == id.Origin {
			return u
		}
	}
	id.Sibling = len(l.units[key]) + 1
	u := &Unit{Identity: id}
	if parent != nil {
		u.parent = *parent
		u.hasParent = true
	}
	l.units[key] = append(l.units[key], u)
	l.order = append(l.order, u)
	return u
}

// Lookup finds a unit. With an origin the match is exact; without one the
// first registered unit is returned and ambiguous reports whether others
// share the name and discriminator.
func (l *Ledger) Lookup(name, disc, origin string) (u *Unit, ambiguous bool, ok bool) {
	list := l.units[unitKey{name, disc}]
	if origin != "" {
		for _, u := range list {
			if u.Origin == origin {
				return u, false, true
			}
		}
		return nil, false, false
	}
	if len(list) == 0 {
		return nil, false, false
	}
	return list[0], len(list) > 1, true
}

// Origins returns the origins registered for name and disc.
func (l *Ledger) Origins(name, disc string) []string {
	var out []string
	for _, u := range l.units[unitKey{name, disc}] {
		out = append(out, u.Origin)
	}
	return out
}

// MarkWarned records an ambiguity warning for name and disc, reporting
// whether this is the first one since the last reset.
func (l *Ledger) MarkWarned(name, disc string) bool {
	key := unitKey{name, disc}
	if l.warned[key] {
		return false
	}
	l.warned[key] = true
	return true
}

// Units returns the identities of all tracked units in creation order.
func (l *Ledger) Units() []Identity {
	out := make([]Identity, 0, len(l.order))
	for _, u := range l.order {
		out = append(out, u.Identity)
	}
	return out
}

// Open starts a new invocation of u with an argument snapshot.
func (l *Ledger) Open(u *Unit, args []any) *Invocation {
	snapshot := make([]any, len(args))
	copy(snapshot, args)
	inv := &Invocation{
		ID:    xid.New().String(),
		Seq:   len(u.Invocations) + 1,
		Args:  snapshot,
		hooks: make(hookLists),
	}
	u.Invocations = append(u.Invocations, inv)
	return inv
}

// Unscoped returns the unscoped unit for name and disc, creating it if
// needed.
func (l *Ledger) Unscoped(name, disc string) *Unscoped {
	key := unitKey{name, disc}
	u, ok := l.unscoped[key]
	if !ok {
		u = &Unscoped{Name: name, Discriminator: disc, hooks: make(hookLists)}
		l.unscoped[key] = u
	}
	return u
}

// LookupUnscoped finds an unscoped unit without creating it.
func (l *Ledger) LookupUnscoped(name, disc string) (*Unscoped, bool) {
	u, ok := l.unscoped[unitKey{name, disc}]
	return u, ok
}

// Record appends value to the timeline for key.
func (l *Ledger) Record(key TimelineKey, value any, invocation int) {
	l.clock++
	l.timelines[key] = append(l.timelines[key], Snapshot{
		Value:      value,
		Invocation: invocation,
		order:      l.clock,
	})
}

// Timeline replays the snapshots of key recorded after the last checkpoint.
// ok is false when the slot never recorded anything.
func (l *Ledger) Timeline(key TimelineKey) ([]Snapshot, bool) {
	all, ok := l.timelines[key]
	if !ok {
		return nil, false
	}
	out := make([]Snapshot, 0, len(all))
	for _, s := range all {
		if s.order > l.mark {
			out = append(out, s)
		}
	}
	return out, true
}

// Checkpoint narrows every later Timeline replay to snapshots recorded
// after this call.
func (l *Ledger) Checkpoint() {
	l.mark = l.clock
}
