package hookscope

import "github.com/jward/hookscope/internal/ledger"

// Public type aliases for the ledger types returned by the QueryBuilder.
// These are Go type aliases (=), identical to the internal types.

type Identity = ledger.Identity
type Unit = ledger.Unit
type Invocation = ledger.Invocation
type HookEntry = ledger.HookEntry
type HookKind = ledger.HookKind
type Handle = ledger.Handle
type Lifecycle = ledger.Lifecycle
type Snapshot = ledger.Snapshot
type UnscopedUnit = ledger.Unscoped

// Hook kinds.
const (
	KindState   = ledger.KindState
	KindEffect  = ledger.KindEffect
	KindMemo    = ledger.KindMemo
	KindRef     = ledger.KindRef
	KindReducer = ledger.KindReducer
	KindContext = ledger.KindContext
)
