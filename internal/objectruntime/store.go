package objectruntime

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

type childKey struct {
	parent object.Address
	child  object.Address
}

type receiveKey struct {
	recipient object.Address
	object    object.Address
}

// child is one dynamic-field value held live in the runtime: the value's
// current bytes/owner state plus the type it was added under, since
// every native operation checks the caller's T against it
// (FIELD_TYPE_MISMATCH).
type child struct {
	obj *object.StoredObject
	typ object.TypeTag
}

// state is the raw mutable data a runtime session operates on: the
// dynamic-field children currently active, the general object store for
// top-level objects the session created or touched, and the pending
// send_to_object/receive_object staging area. It carries no locking of
// its own — Local uses it directly, Shared wraps every access with a
// mutex (§4.8).
type state struct {
	children        map[childKey]*child
	removedChildren map[childKey]bool
	objects         map[object.Address]*object.StoredObject
	pending         map[receiveKey]*child
	accessed        map[childKey]bool
}

func newState() *state {
	return &state{
		children:        map[childKey]*child{},
		removedChildren: map[childKey]bool{},
		objects:         map[object.Address]*object.StoredObject{},
		pending:         map[receiveKey]*child{},
		accessed:        map[childKey]bool{},
	}
}
