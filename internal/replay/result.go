package replay

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

// Effects is the replay engine's own account of what a transaction did,
// in the same shape §4.10 compares against the recorded on-chain
// effects.
type Effects struct {
	Success bool
	Created []object.Address
	Mutated []object.Address
	Deleted []object.Address
	Wrapped []object.Address
}

// VersionSummary is the per-object detail of §4.10's version_summary:
// every object the transaction touched, its change type, and its
// input/output versions (all outputs share the transaction's lamport
// timestamp, per §3).
type VersionSummary struct {
	Objects []ObjectVersionRecord
	Lamport object.Version
}

// ReplayResult is C9's final output (§4.10): whether local re-execution
// succeeded, the effects it produced, the per-object version summary,
// an optional comparison against recorded effects, and free-form
// diagnostics.
type ReplayResult struct {
	LocalSuccess   bool
	Effects        Effects
	VersionSummary VersionSummary
	Comparison     *Comparison
	Classification Classification
	Diagnostics    []string
}
