// Package vmhost implements the §6/§9 VM contract: module loading keyed
// by (address, name), session creation with a bounded-lifetime extension
// handle, and a native-function registration mechanism that hands each
// native a mutable handle onto the object runtime (C8). The Move VM
// itself is the black-box collaborator of §1/§6 — this package owns only
// the extension mechanism around it, grounded on core/virtual_machine.go's
// HeavyVM (a wasmer.Engine-backed VM wrapper whose natives receive a
// *hostCtx extension handle).
package vmhost

import "github.com/wasmerio/wasmer-go/wasmer"

// Engine is the process-wide VM handle, analogous to HeavyVM's
// wasmer.Engine field. One Engine backs every session a replay run
// opens; it carries no per-transaction state.
type Engine struct {
	inner *wasmer.Engine
}

// NewEngine creates the process-wide VM engine handle.
func NewEngine() *Engine {
	return &Engine{inner: wasmer.NewEngine()}
}
