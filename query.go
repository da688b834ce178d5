package hookscope

import (
	"github.com/jward/hookscope/internal/ledger"
)

// QueryBuilder provides read-only projections over a Collector for test
// assertions. Every lookup is total: a miss returns the zero value and
// false instead of panicking.
type QueryBuilder struct {
	c *Collector
}

type selection struct {
	disc   string
	origin string
}

// Selector narrows a lookup by name.
type Selector func(*selection)

// Disc selects the unit with discriminator d.
func Disc(d string) Selector {
	return func(s *selection) {
		s.disc = d
	}
}

// Origin selects the unit defined at path. Without it, a name shared by
// units from several origins resolves to the first one registered and logs
// a warning once.
func Origin(path string) Selector {
	return func(s *selection) {
		s.origin = path
	}
}

func selectionOf(sel []Selector) selection {
	var s selection
	for _, fn := range sel {
		fn(&s)
	}
	return s
}

func (q *QueryBuilder) unit(name string, sel []Selector) (*ledger.Unit, bool) {
	s := selectionOf(sel)
	u, ambiguous, ok := q.c.ledger.Lookup(name, s.disc, s.origin)
	if !ok {
		return nil, false
	}
	if ambiguous && q.c.ledger.MarkWarned(name, s.disc) {
		q.c.logger.Warn("ambiguous unit lookup, select one with Origin",
			"name", name,
			"discriminator", s.disc,
			"origins", q.c.ledger.Origins(name, s.disc),
			"using", u.Origin,
		)
	}
	return u, true
}

// Count returns the number of recorded invocations of name.
func (q *QueryBuilder) Count(name string, sel ...Selector) (int, bool) {
	u, ok := q.unit(name, sel)
	if !ok {
		return 0, false
	}
	return len(u.Invocations), true
}

// Invocations returns every recorded invocation of name in call order.
func (q *QueryBuilder) Invocations(name string, sel ...Selector) ([]*Invocation, bool) {
	u, ok := q.unit(name, sel)
	if !ok {
		return nil, false
	}
	return u.Invocations, true
}

// Invocation returns the invocation of name with the 1-based sequence
// number seq.
func (q *QueryBuilder) Invocation(name string, seq int, sel ...Selector) (*Invocation, bool) {
	u, ok := q.unit(name, sel)
	if !ok {
		return nil, false
	}
	return u.Invocation(seq)
}

// Hooks returns the entries of kind recorded during invocation seq of name.
func (q *QueryBuilder) Hooks(name string, seq int, kind HookKind, sel ...Selector) ([]*HookEntry, bool) {
	inv, ok := q.Invocation(name, seq, sel...)
	if !ok {
		return nil, false
	}
	return inv.Hooks(kind)
}

// Hook returns the 1-based slot of kind recorded during invocation seq of
// name.
func (q *QueryBuilder) Hook(name string, seq int, kind HookKind, slot int, sel ...Selector) (*HookEntry, bool) {
	inv, ok := q.Invocation(name, seq, sel...)
	if !ok {
		return nil, false
	}
	return inv.Hook(kind, slot)
}

// UnscopedHooks returns the flat entries of kind recorded for the unscoped
// unit name. Only Disc applies to unscoped units.
func (q *QueryBuilder) UnscopedHooks(name string, kind HookKind, sel ...Selector) ([]*HookEntry, bool) {
	u, ok := q.c.ledger.LookupUnscoped(name, selectionOf(sel).disc)
	if !ok {
		return nil, false
	}
	return u.Hooks(kind)
}

// Unscoped returns the 1-based flat slot of kind of the unscoped unit name.
func (q *QueryBuilder) Unscoped(name string, kind HookKind, slot int, sel ...Selector) (*HookEntry, bool) {
	u, ok := q.c.ledger.LookupUnscoped(name, selectionOf(sel).disc)
	if !ok {
		return nil, false
	}
	return u.Hook(kind, slot)
}

// Timeline replays every value state slot slot of name has taken since the
// last Reset or Checkpoint: the value it was created with, then one
// snapshot per mutation.
func (q *QueryBuilder) Timeline(name string, slot int, sel ...Selector) ([]Snapshot, bool) {
	u, ok := q.unit(name, sel)
	if !ok {
		return nil, false
	}
	return q.c.ledger.Timeline(ledger.TimelineKey{
		Name:          u.Name,
		Discriminator: u.Discriminator,
		Origin:        u.Origin,
		Slot:          slot,
	})
}

// UnscopedTimeline is Timeline for a state slot of an unscoped unit.
func (q *QueryBuilder) UnscopedTimeline(name string, slot int, sel ...Selector) ([]Snapshot, bool) {
	return q.c.ledger.Timeline(ledger.TimelineKey{
		Name:          name,
		Discriminator: selectionOf(sel).disc,
		Slot:          slot,
		Unscoped:      true,
	})
}

// Checkpoint narrows every later timeline replay to values recorded after
// this call.
func (q *QueryBuilder) Checkpoint() {
	q.c.ledger.Checkpoint()
}

// Lifecycle returns the handles of the instance last constructed by the
// class-like unit name.
func (q *QueryBuilder) Lifecycle(name string, sel ...Selector) (*Lifecycle, bool) {
	u, ok := q.unit(name, sel)
	if !ok || u.Lifecycle == nil {
		return nil, false
	}
	return u.Lifecycle, true
}

// Parent returns the identity of the unit whose invocation was open when
// name was first called.
func (q *QueryBuilder) Parent(name string, sel ...Selector) (Identity, bool) {
	u, ok := q.unit(name, sel)
	if !ok {
		return Identity{}, false
	}
	return u.Parent()
}

// Units returns the identities of every tracked unit in creation order.
func (q *QueryBuilder) Units() []Identity {
	return q.c.ledger.Units()
}

// Reset discards everything the collector has recorded.
func (q *QueryBuilder) Reset() {
	q.c.Reset()
}
