package hookscope

import (
	"log/slog"

	"github.com/jward/hookscope/internal/ledger"
	"github.com/jward/hookscope/internal/logging"
)

// Collector records invocations of wrapped callables and the stateful
// primitives they call. A Collector is not safe for concurrent use.
type Collector struct {
	ledger *ledger.Ledger
	logger *slog.Logger

	// frames is the identity stack pushed and popped by wrapped callables.
	frames []*frame

	// skip is the number of extra caller frames the resolver ignores.
	skip int

	// epoch increments on every Reset. Mutator wrappers issued in an older
	// epoch keep forwarding but stop recording.
	epoch int

	// wrapped holds every callable this collector produced, keyed by value
	// identity, so wrapping is idempotent.
	wrapped map[uintptr]any
}

// frame is one open invocation of a wrapped callable.
type frame struct {
	unit *ledger.Unit
	inv  *ledger.Invocation
	disc string

	// entry and fn identify the original body: its entry PC and fully
	// qualified function name.
	entry uintptr
	fn    string
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for ambiguity warnings and debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithSkipFrames makes the resolver skip n additional caller frames when
// looking for the unit that called a stateful primitive. Use it when
// primitives are reached through helper functions.
func WithSkipFrames(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.skip = n
		}
	}
}

// NewCollector creates an empty Collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		ledger:  ledger.New(),
		logger:  logging.New(slog.LevelWarn),
		wrapped: make(map[uintptr]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset discards every recorded unit, unscoped unit, timeline and state
// correlation. Wrappers stay installed and keep working.
func (c *Collector) Reset() {
	c.ledger.Reset()
	c.frames = nil
	c.epoch++
	c.logger.Debug("collector reset", "epoch", c.epoch)
}

// Query returns the read-only query facade over c.
func (c *Collector) Query() *QueryBuilder {
	return &QueryBuilder{c: c}
}

func (c *Collector) top() *frame {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// enter opens a new invocation of the unit identified by name and origin and
// pushes its frame.
func (c *Collector) enter(name, origin string, body uintptr, fn string, args []any) *frame {
	disc, ok := discriminatorOf(args)
	if !ok {
		disc = c.inheritedDiscriminator()
	}

	var parent *ledger.Identity
	if top := c.top(); top != nil {
		id := top.unit.Identity
		parent = &id
	}
	u := c.ledger.Unit(ledger.Identity{Name: name, Discriminator: disc, Origin: origin}, parent)
	fr := &frame{
		unit:  u,
		inv:   c.ledger.Open(u, args),
		disc:  disc,
		entry: body,
		fn:    fn,
	}
	c.frames = append(c.frames, fr)
	return fr
}

// leave pops fr. A Reset while fr was open leaves nothing to pop.
func (c *Collector) leave(fr *frame) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i] == fr {
			c.frames = c.frames[:i]
			return
		}
	}
}

func (c *Collector) inheritedDiscriminator() string {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if d := c.frames[i].disc; d != "" {
			return d
		}
	}
	return ""
}
