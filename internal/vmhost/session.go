package vmhost

import (
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/objectruntime"
)

// Session is one VM session: a bounded-lifetime handle (§9) wrapping a
// fresh wasmer.Store (the Move VM's black-box execution context stand-in,
// grounded on HeavyVM.Execute's per-call `wasmer.NewStore(vm.engine)`)
// plus the object-runtime extension (C8) natives read and write through.
// A closed Session rejects further use rather than silently operating on
// stale state — the §9 requirement that "the handle cannot outlive the
// session" is enforced dynamically here since Go has no session-scoped
// borrow checker.
type Session struct {
	store *wasmer.Store
	rt    *objectruntime.Runtime

	sender     object.Address
	clockBase  uint64
	modules    *ModuleResolver
	natives    *NativeTable
	closed     bool
}

// Config carries the per-transaction parameters §4.10 step 9 installs
// when constructing the VM harness: the transaction's clock base and
// sender.
type Config struct {
	Sender    object.Address
	ClockBase uint64
	Modules   *ModuleResolver
	Natives   *NativeTable
}

// NewSession opens a session against engine, installing rt as the
// extension (C8) every native in cfg.Natives is dispatched against.
func NewSession(engine *Engine, rt *objectruntime.Runtime, cfg Config) *Session {
	natives := cfg.Natives
	if natives == nil {
		natives = DefaultNatives()
	}
	return &Session{
		store:     wasmer.NewStore(engine.inner),
		rt:        rt,
		sender:    cfg.Sender,
		clockBase: cfg.ClockBase,
		modules:   cfg.Modules,
		natives:   natives,
	}
}

func (s *Session) Sender() object.Address { return s.sender }
func (s *Session) ClockBase() uint64      { return s.clockBase }
func (s *Session) Modules() *ModuleResolver { return s.modules }

// Close invalidates the session. Subsequent Invoke/Extension calls
// return an error instead of touching stale state.
func (s *Session) Close() {
	s.closed = true
}

// Extension returns the object-runtime handle natives operate on,
// erroring if the session has already been closed (§9's lifetime bound).
func (s *Session) Extension() (*objectruntime.Runtime, error) {
	if s.closed {
		return nil, fmt.Errorf("vmhost: session closed")
	}
	return s.rt, nil
}

// Invoke dispatches a qualified native name through the session's
// NativeTable, the mechanism §6 describes as "a native-function
// registration mechanism that hands each native a mutable extension
// handle."
func (s *Session) Invoke(qualifiedName string, args NativeArgs) (NativeResult, error) {
	if s.closed {
		return NativeResult{}, fmt.Errorf("vmhost: session closed")
	}
	return s.natives.Invoke(s.rt, qualifiedName, args)
}
