package mm2

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

// sink describes one canonical dynamic-field operation that a call site
// can resolve to, and which of its type-argument slots are the key and
// value types respectively (§4.7's "canonical dynamic-field
// operations"). Framework functions take <Name, Value> type arguments in
// that order.
type sink struct {
	module   string
	function string
	kind     AccessKind
	keyIdx   int
	valueIdx int // -1 when the operation has no value type argument
}

// frameworkPackage is 0x2, home of dynamic_field and
// dynamic_object_field — the modules whose functions are the sinks of
// the backward propagation in call-graph mode.
var frameworkPackage = mustAddr("0x2")

func mustAddr(s string) object.Address {
	a, err := object.ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

var sinkTable = []sink{
	{module: "dynamic_field", function: "add", kind: AccessAdd, keyIdx: 0, valueIdx: 1},
	{module: "dynamic_field", function: "borrow", kind: AccessBorrow, keyIdx: 0, valueIdx: 1},
	{module: "dynamic_field", function: "borrow_mut", kind: AccessBorrowMut, keyIdx: 0, valueIdx: 1},
	{module: "dynamic_field", function: "remove", kind: AccessRemove, keyIdx: 0, valueIdx: 1},
	{module: "dynamic_field", function: "exists_with_type", kind: AccessBorrow, keyIdx: 0, valueIdx: 1},
	{module: "dynamic_object_field", function: "add", kind: AccessAdd, keyIdx: 0, valueIdx: 1},
	{module: "dynamic_object_field", function: "borrow", kind: AccessBorrow, keyIdx: 0, valueIdx: 1},
	{module: "dynamic_object_field", function: "borrow_mut", kind: AccessBorrowMut, keyIdx: 0, valueIdx: 1},
	{module: "dynamic_object_field", function: "remove", kind: AccessRemove, keyIdx: 0, valueIdx: 1},
}

// matchSink returns the sink a callee resolves to, if any.
func matchSink(callee FunctionID) (sink, bool) {
	if callee.Package != frameworkPackage {
		return sink{}, false
	}
	for _, s := range sinkTable {
		if s.module == callee.Module && s.function == callee.Function {
			return s, true
		}
	}
	return sink{}, false
}

// predictionFromCall builds a PredictedAccess from a call instruction
// that resolved to a sink, given the confidence the calling strategy
// assigns and the function the call site was found in.
func predictionFromCall(s sink, call CallInstruction, confidence Confidence, source string) (PredictedAccess, bool) {
	if s.keyIdx >= len(call.TypeArguments) {
		return PredictedAccess{}, false
	}
	pa := PredictedAccess{
		KeyType:        call.TypeArguments[s.keyIdx],
		Kind:           s.kind,
		Confidence:     confidence,
		SourceFunction: source,
	}
	if s.valueIdx >= 0 && s.valueIdx < len(call.TypeArguments) {
		pa.ValueType = call.TypeArguments[s.valueIdx]
	}
	return pa, true
}
