// Package objectruntime implements C8: the VM extension that gives Move
// natives a place to store and retrieve dynamic-field children and
// top-level objects created during a session, hydrating on demand from
// historical chain data when a native queries something neither the
// session nor (for multi-session transactions) the shared backing state
// already holds (§4.8, §4.9).
package objectruntime

import (
	"sync"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// Runtime implements the native operation table of §4.8. A single type
// serves both the per-session local variant (mu == nil, no contention
// possible) and the shared-across-sessions variant (mu set, every
// operation serialized) — the spec calls for "the same interface" in
// both cases, which a shared method set on one type gives for free
// without an extra interface layer.
type Runtime struct {
	mu *sync.Mutex
	st *state

	idFetch  IDFetcher
	keyFetch KeyFetcher

	// aliasesStorageToOriginal is the package resolver's alias table
	// (§4.4); aliasesOriginalToStorage is its precomputed reverse, used
	// to rewrite a bytecode-supplied T into the address space stored
	// objects were captured under before comparing (§4.8's boundary
	// rewriting rule).
	aliasesStorageToOriginal object.AliasMap
	aliasesOriginalToStorage object.AliasMap

	keyRecords map[childKey]keyRecord
}

// NewLocal builds a per-session runtime with no locking.
func NewLocal(idFetch IDFetcher, keyFetch KeyFetcher, aliases object.AliasMap) *Runtime {
	return newRuntime(nil, idFetch, keyFetch, aliases)
}

// NewShared builds the multi-session variant: every operation is
// serialized under a lock, and every session sharing this *Runtime sees
// the same children/objects/removed set.
func NewShared(idFetch IDFetcher, keyFetch KeyFetcher, aliases object.AliasMap) *Runtime {
	return newRuntime(&sync.Mutex{}, idFetch, keyFetch, aliases)
}

func newRuntime(mu *sync.Mutex, idFetch IDFetcher, keyFetch KeyFetcher, aliases object.AliasMap) *Runtime {
	if aliases == nil {
		aliases = object.AliasMap{}
	}
	return &Runtime{
		mu:                       mu,
		st:                       newState(),
		idFetch:                  idFetch,
		keyFetch:                 keyFetch,
		aliasesStorageToOriginal: aliases,
		aliasesOriginalToStorage: aliases.Reversed(),
		keyRecords:               map[childKey]keyRecord{},
	}
}

func (r *Runtime) lock() {
	if r.mu != nil {
		r.mu.Lock()
	}
}

func (r *Runtime) unlock() {
	if r.mu != nil {
		r.mu.Unlock()
	}
}

func (r *Runtime) rewriteIncoming(t object.TypeTag) object.TypeTag {
	return object.Rewrite(t, r.aliasesOriginalToStorage)
}

func (r *Runtime) rewriteOutgoing(t object.TypeTag) object.TypeTag {
	return object.Rewrite(t, r.aliasesStorageToOriginal)
}

// RecordChildKey records the (parent, key_type, key_bytes) trio that
// produced childID via the hash-computation path, so a later hydration
// miss on the ID-based fetcher can fall back to the key-based one
// (§4.9).
func (r *Runtime) RecordChildKey(parent, childID object.Address, keyType object.TypeTag, keyBytes []byte) {
	r.lock()
	defer r.unlock()
	r.keyRecords[childKey{parent: parent, child: childID}] = keyRecord{
		keyType:  r.rewriteIncoming(keyType),
		keyBytes: append([]byte(nil), keyBytes...),
	}
}

// AccessedChildren reports the child ID of every (parent, child) pair
// that was absent from in-memory state and so required a hydration
// attempt, regardless
// of whether that attempt hit or missed, so the engine can widen a
// future prefetch plan.
func (r *Runtime) AccessedChildren() []object.Address {
	r.lock()
	defer r.unlock()
	out := make([]object.Address, 0, len(r.st.accessed))
	for k := range r.st.accessed {
		out = append(out, k.child)
	}
	return out
}

// AddChild implements add_child(parent, child, T, value).
func (r *Runtime) AddChild(parent, childID object.Address, t object.TypeTag, value []byte) error {
	r.lock()
	defer r.unlock()

	storageT := r.rewriteIncoming(t)
	key := childKey{parent: parent, child: childID}
	if _, ok := r.st.children[key]; ok {
		return newError(ECodeFieldAlreadyExists, "dynamic field already exists")
	}
	delete(r.st.removedChildren, key)
	r.st.children[key] = &child{
		obj: object.NewStoredObject(childID, append([]byte(nil), value...), storageT, false, object.ObjectOwner(parent), 0),
		typ: storageT,
	}
	return nil
}

// ExistsWithType implements exists_with_type(parent, child, T).
func (r *Runtime) ExistsWithType(parent, childID object.Address, t object.TypeTag) bool {
	r.lock()
	defer r.unlock()
	storageT := r.rewriteIncoming(t)
	c, err := r.resolveChild(parent, childID, storageT)
	return err == nil && c != nil
}

// BorrowChild implements borrow_child(parent, child, T): an immutable
// view of the child's current bytes.
func (r *Runtime) BorrowChild(parent, childID object.Address, t object.TypeTag) ([]byte, error) {
	r.lock()
	defer r.unlock()
	storageT := r.rewriteIncoming(t)
	c, err := r.resolveChild(parent, childID, storageT)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), c.obj.Bytes...), nil
}

// BorrowChildMut implements borrow_child_mut(parent, child, T). Mutation
// is modeled by requiring the caller to write back through UpdateBytes
// rather than handing out an aliased slice — this stand-in has no real
// Move reference machinery to keep a live GlobalValue in sync, so a
// round trip through UpdateBytes is the adaptation's explicit
// write-back path.
func (r *Runtime) BorrowChildMut(parent, childID object.Address, t object.TypeTag) ([]byte, error) {
	return r.BorrowChild(parent, childID, t)
}

// RemoveChild implements remove_child(parent, child, T): returns the
// owned value and marks the slot as removed, blocking on-demand
// resurrection of the same child for the remainder of the session
// (§4.8's shared-variant note applies equally to the local store).
func (r *Runtime) RemoveChild(parent, childID object.Address, t object.TypeTag) ([]byte, error) {
	r.lock()
	defer r.unlock()
	storageT := r.rewriteIncoming(t)
	key := childKey{parent: parent, child: childID}
	c, err := r.resolveChild(parent, childID, storageT)
	if err != nil {
		return nil, err
	}
	delete(r.st.children, key)
	r.st.removedChildren[key] = true
	return append([]byte(nil), c.obj.Bytes...), nil
}

// resolveChild looks a child up in live state, falling through to
// on-demand hydration (§4.8) when absent. Callers must hold r.mu.
func (r *Runtime) resolveChild(parent, childID object.Address, wantType object.TypeTag) (*child, error) {
	key := childKey{parent: parent, child: childID}
	if r.st.removedChildren[key] {
		return nil, newError(ECodeFieldDoesNotExist, "dynamic field does not exist")
	}
	c, ok := r.st.children[key]
	if !ok {
		hydrated, err := r.hydrate(parent, childID)
		if err != nil {
			return nil, err
		}
		c = hydrated
	}
	if !c.typ.Equal(wantType) {
		return nil, newError(ECodeFieldTypeMismatch, "dynamic field type mismatch")
	}
	return c, nil
}

// hydrate runs the two-step on-demand fetch of §4.8: ID-based first,
// key-based fallback second. Callers must hold r.mu.
func (r *Runtime) hydrate(parent, childID object.Address) (*child, error) {
	key := childKey{parent: parent, child: childID}
	r.st.accessed[key] = true

	if r.idFetch != nil {
		t, bytes, ok, err := r.idFetch(parent, childID)
		if err != nil {
			return nil, err
		}
		if ok {
			return r.installHydrated(parent, childID, t, bytes), nil
		}
	}

	if r.keyFetch != nil {
		if rec, ok := r.keyRecords[key]; ok {
			t, bytes, ok2, err := r.keyFetch(parent, childID, rec.keyType, rec.keyBytes)
			if err != nil {
				return nil, err
			}
			if ok2 {
				return r.installHydrated(parent, childID, t, bytes), nil
			}
		}
	}

	return nil, newError(ECodeFieldDoesNotExist, "dynamic field does not exist")
}

func (r *Runtime) installHydrated(parent, childID object.Address, t object.TypeTag, bytes []byte) *child {
	c := &child{
		obj: object.NewStoredObject(childID, bytes, t, false, object.ObjectOwner(parent), 0),
		typ: t,
	}
	r.st.children[childKey{parent: parent, child: childID}] = c
	return c
}

// RecordCreated implements record_created(id, bytes, T, owner).
func (r *Runtime) RecordCreated(id object.Address, bytes []byte, t object.TypeTag, owner object.Owner) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.st.objects[id]; ok {
		return newError(ECodeObjectAlreadyExists, "object already exists")
	}
	storageT := r.rewriteIncoming(t)
	r.st.objects[id] = object.NewStoredObject(id, append([]byte(nil), bytes...), storageT, false, owner, 0)
	return nil
}

func (r *Runtime) lookupObject(id object.Address) (*object.StoredObject, error) {
	obj, ok := r.st.objects[id]
	if !ok {
		return nil, newError(ECodeObjectNotFound, "object not found")
	}
	if obj.Deleted {
		return nil, newError(ECodeObjectDeleted, "object already deleted")
	}
	return obj, nil
}

// MarkShared implements mark_shared(id).
func (r *Runtime) MarkShared(id object.Address) error {
	r.lock()
	defer r.unlock()
	obj, err := r.lookupObject(id)
	if err != nil {
		return err
	}
	if obj.Owner.Kind == object.OwnerImmutable {
		return newError(ECodeNotOwner, "cannot share an immutable object")
	}
	return obj.MarkShared(obj.Version)
}

// MarkImmutable implements mark_immutable(id).
func (r *Runtime) MarkImmutable(id object.Address) error {
	r.lock()
	defer r.unlock()
	obj, err := r.lookupObject(id)
	if err != nil {
		return err
	}
	obj.MarkImmutable()
	return nil
}

// Delete implements delete(id).
func (r *Runtime) Delete(id object.Address) error {
	r.lock()
	defer r.unlock()
	obj, err := r.lookupObject(id)
	if err != nil {
		return err
	}
	obj.MarkDeleted()
	return nil
}

// Transfer implements transfer(id, owner).
func (r *Runtime) Transfer(id object.Address, owner object.Owner) error {
	r.lock()
	defer r.unlock()
	obj, err := r.lookupObject(id)
	if err != nil {
		return err
	}
	obj.Owner = owner
	// Re-setting the unchanged bytes drops the cached digest, which
	// covers the owner field.
	obj.UpdateBytes(obj.Bytes)
	return nil
}

// UpdateBytes implements update_bytes(id, bytes) — also the write-back
// path BorrowChildMut callers use.
func (r *Runtime) UpdateBytes(id object.Address, bytes []byte) error {
	r.lock()
	defer r.unlock()
	obj, err := r.lookupObject(id)
	if err != nil {
		return err
	}
	obj.UpdateBytes(append([]byte(nil), bytes...))
	return nil
}

// SendToObject implements send_to_object(recipient, object): stages the
// object under the recipient's address until claimed by ReceiveObject.
func (r *Runtime) SendToObject(recipient, id object.Address, t object.TypeTag, bytes []byte) error {
	r.lock()
	defer r.unlock()
	storageT := r.rewriteIncoming(t)
	r.st.pending[receiveKey{recipient: recipient, object: id}] = &child{
		obj: object.NewStoredObject(id, append([]byte(nil), bytes...), storageT, false, object.ObjectOwner(recipient), 0),
		typ: storageT,
	}
	return nil
}

// ReceiveObject implements receive_object(recipient, object).
func (r *Runtime) ReceiveObject(recipient, id object.Address) (object.TypeTag, []byte, error) {
	r.lock()
	defer r.unlock()
	key := receiveKey{recipient: recipient, object: id}
	c, ok := r.st.pending[key]
	if !ok {
		return object.TypeTag{}, nil, newError(ECodeReceiveNotFound, "no object pending receipt")
	}
	delete(r.st.pending, key)
	return r.rewriteOutgoing(c.typ), append([]byte(nil), c.obj.Bytes...), nil
}
