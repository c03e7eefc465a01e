// Package mm2 implements C7: statically analyzing the Move bytecode a
// transaction's commands reach to predict which dynamic fields it will
// touch, supplementing C6's ground-truth prefetch with predicted
// accesses (§4.7).
package mm2

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

// AccessKind mirrors the canonical dynamic-field operations a call site
// can resolve to.
type AccessKind string

const (
	AccessBorrow    AccessKind = "borrow"
	AccessBorrowMut AccessKind = "borrow_mut"
	AccessAdd       AccessKind = "add"
	AccessRemove    AccessKind = "remove"
)

// Confidence grades how directly a prediction was derived.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// PredictedAccess is one dynamic-field access the analysis believes a
// transaction will perform, before any ground truth is consulted.
type PredictedAccess struct {
	KeyType        object.TypeTag
	ValueType      object.TypeTag
	Kind           AccessKind
	Confidence     Confidence
	SourceFunction string
}

// FunctionID names a function within a loaded package's module.
type FunctionID struct {
	Package  object.Address
	Module   string
	Function string
}

func (f FunctionID) String() string {
	return f.Package.String() + "::" + f.Module + "::" + f.Function
}

// MoveCall is one entry of the transaction's command list that invokes
// Move bytecode (§4.7 inputs).
type MoveCall struct {
	Package       object.Address
	Module        string
	Function      string
	TypeArguments []object.TypeTag
}

// CallInstruction is one call site found inside a function's bytecode:
// the callee and the type arguments the call site instantiates it with.
type CallInstruction struct {
	Callee        FunctionID
	TypeArguments []object.TypeTag
}

// FunctionDisasm is the decoded shape of one function's bytecode that
// MM2 needs: only its outgoing call sites, since that is all direct and
// call-graph mode ever inspect.
type FunctionDisasm struct {
	Calls []CallInstruction
}

// Disassembler recovers the call sites of every function declared by a
// module's bytecode. Like the resolver's ModuleSelfAddress/
// ModuleDependencies, this is a narrow capability delegated to the VM's
// bytecode-loading machinery rather than a format this package
// reimplements (§9).
type Disassembler func(moduleBytes []byte) (map[string]FunctionDisasm, error)

// LoadedModule is one module's raw bytecode together with the address
// its package currently lives at, as assembled by the package resolver.
type LoadedModule struct {
	Package object.Address
	Module  string
	Bytes   []byte
}
