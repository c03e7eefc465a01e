package vmhost

import (
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/objectruntime"
)

// NativeArgs is the argument bag every registered native receives. Only
// the fields a given native reads are meaningful; this mirrors the
// teacher's hostCtx pattern of one context struct threaded through every
// host function rather than a distinct signature per native, since the
// VM's dispatch mechanism (§6) hands natives a generic call frame, not a
// typed Go call.
type NativeArgs struct {
	Parent    object.Address
	Child     object.Address
	Type      object.TypeTag
	Value     []byte
	Owner     object.Owner
	ID        object.Address
	Bytes     []byte
	Recipient object.Address
}

// NativeResult is the generic return frame a native produces.
type NativeResult struct {
	Bool  bool
	Bytes []byte
	Type  object.TypeTag
}

// NativeFunc is one native's implementation: the mutable extension
// handle (C8) plus the call frame in, a result frame out.
type NativeFunc func(rt *objectruntime.Runtime, args NativeArgs) (NativeResult, error)

// NativeTable is the VM's native-function registration mechanism (§6):
// each native is registered under a qualified name ("module::function")
// and dispatched by the session's Invoke.
type NativeTable struct {
	fns map[string]NativeFunc
}

func NewNativeTable() *NativeTable {
	return &NativeTable{fns: map[string]NativeFunc{}}
}

// Register installs or overwrites the native registered under name.
func (t *NativeTable) Register(name string, fn NativeFunc) {
	t.fns[name] = fn
}

// Invoke dispatches name against rt with args.
func (t *NativeTable) Invoke(rt *objectruntime.Runtime, name string, args NativeArgs) (NativeResult, error) {
	fn, ok := t.fns[name]
	if !ok {
		return NativeResult{}, fmt.Errorf("vmhost: native %q not registered", name)
	}
	return fn(rt, args)
}

// Qualified native names, matching §4.8's operation table and §6's
// "object creation/deletion/transfer/freeze/share and receive" list.
const (
	NativeAddChild          = "dynamic_field::add_child"
	NativeExistsWithType     = "dynamic_field::exists_with_type"
	NativeBorrowChild        = "dynamic_field::borrow_child"
	NativeBorrowChildMut     = "dynamic_field::borrow_child_mut"
	NativeRemoveChild        = "dynamic_field::remove_child"
	NativeRecordCreated      = "object::record_created"
	NativeMarkShared         = "object::mark_shared"
	NativeMarkImmutable      = "object::mark_immutable"
	NativeDelete             = "object::delete"
	NativeTransfer           = "object::transfer"
	NativeUpdateBytes        = "object::update_bytes"
	NativeSendToObject       = "transfer::send_to_object"
	NativeReceiveObject      = "transfer::receive_object"
)

// DefaultNatives registers every native §4.8/§6 require, each a thin
// adapter onto the corresponding objectruntime.Runtime method — the
// native table's entire job is argument unpacking, all state-service
// semantics live in C8 (internal/objectruntime).
func DefaultNatives() *NativeTable {
	t := NewNativeTable()

	t.Register(NativeAddChild, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{}, rt.AddChild(a.Parent, a.Child, a.Type, a.Value)
	})
	t.Register(NativeExistsWithType, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{Bool: rt.ExistsWithType(a.Parent, a.Child, a.Type)}, nil
	})
	t.Register(NativeBorrowChild, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		b, err := rt.BorrowChild(a.Parent, a.Child, a.Type)
		return NativeResult{Bytes: b}, err
	})
	t.Register(NativeBorrowChildMut, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		b, err := rt.BorrowChildMut(a.Parent, a.Child, a.Type)
		return NativeResult{Bytes: b}, err
	})
	t.Register(NativeRemoveChild, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		b, err := rt.RemoveChild(a.Parent, a.Child, a.Type)
		return NativeResult{Bytes: b}, err
	})
	t.Register(NativeRecordCreated, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{}, rt.RecordCreated(a.ID, a.Bytes, a.Type, a.Owner)
	})
	t.Register(NativeMarkShared, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{}, rt.MarkShared(a.ID)
	})
	t.Register(NativeMarkImmutable, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{}, rt.MarkImmutable(a.ID)
	})
	t.Register(NativeDelete, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{}, rt.Delete(a.ID)
	})
	t.Register(NativeTransfer, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{}, rt.Transfer(a.ID, a.Owner)
	})
	t.Register(NativeUpdateBytes, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{}, rt.UpdateBytes(a.ID, a.Bytes)
	})
	t.Register(NativeSendToObject, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		return NativeResult{}, rt.SendToObject(a.Recipient, a.ID, a.Type, a.Bytes)
	})
	t.Register(NativeReceiveObject, func(rt *objectruntime.Runtime, a NativeArgs) (NativeResult, error) {
		t, b, err := rt.ReceiveObject(a.Recipient, a.ID)
		return NativeResult{Type: t, Bytes: b}, err
	})

	return t
}
