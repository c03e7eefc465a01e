package objectruntime

import (
	"testing"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

func addr(t *testing.T, s string) object.Address {
	a, err := object.ParseAddress(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return a
}

func codeOf(t *testing.T, err error) Code {
	re, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	return re.Code
}

func TestAddChildThenBorrowRoundTrips(t *testing.T) {
	rt := NewLocal(nil, nil, nil)
	parent, child := addr(t, "0x10"), addr(t, "0x11")

	if err := rt.AddChild(parent, child, object.U64(), []byte{1, 2, 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := rt.BorrowChild(parent, child, object.U64())
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if string(got) != string([]byte{1, 2, 3}) {
		t.Fatalf("unexpected bytes: %v", got)
	}
}

func TestAddChildTwiceFails(t *testing.T) {
	rt := NewLocal(nil, nil, nil)
	parent, child := addr(t, "0x20"), addr(t, "0x21")
	if err := rt.AddChild(parent, child, object.U64(), []byte{1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := rt.AddChild(parent, child, object.U64(), []byte{2})
	if err == nil || codeOf(t, err) != ECodeFieldAlreadyExists {
		t.Fatalf("expected FIELD_ALREADY_EXISTS, got %v", err)
	}
}

func TestBorrowWrongTypeMismatch(t *testing.T) {
	rt := NewLocal(nil, nil, nil)
	parent, child := addr(t, "0x30"), addr(t, "0x31")
	if err := rt.AddChild(parent, child, object.U64(), []byte{1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := rt.BorrowChild(parent, child, object.Bool())
	if err == nil || codeOf(t, err) != ECodeFieldTypeMismatch {
		t.Fatalf("expected FIELD_TYPE_MISMATCH, got %v", err)
	}
}

func TestRemoveChildBlocksResurrection(t *testing.T) {
	rt := NewLocal(nil, nil, nil)
	parent, child := addr(t, "0x40"), addr(t, "0x41")
	if err := rt.AddChild(parent, child, object.U64(), []byte{9}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := rt.RemoveChild(parent, child, object.U64()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, err := rt.BorrowChild(parent, child, object.U64())
	if err == nil || codeOf(t, err) != ECodeFieldDoesNotExist {
		t.Fatalf("expected FIELD_DOES_NOT_EXIST after removal, got %v", err)
	}
}

func TestOnDemandHydrationViaIDFetcher(t *testing.T) {
	parent, child := addr(t, "0x50"), addr(t, "0x51")
	idFetch := func(p, c object.Address) (object.TypeTag, []byte, bool, error) {
		if p == parent && c == child {
			return object.U64(), []byte{42}, true, nil
		}
		return object.TypeTag{}, nil, false, nil
	}
	rt := NewLocal(idFetch, nil, nil)

	got, err := rt.BorrowChild(parent, child, object.U64())
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if string(got) != string([]byte{42}) {
		t.Fatalf("unexpected bytes: %v", got)
	}
	accessed := rt.AccessedChildren()
	if len(accessed) != 1 || accessed[0] != child {
		t.Fatalf("expected child recorded accessed, got %+v", accessed)
	}
}

func TestOnDemandHydrationFallsBackToKeyFetcher(t *testing.T) {
	parent, child := addr(t, "0x60"), addr(t, "0x61")
	keyType := object.U64()
	keyBytes := []byte{7, 7}

	idFetch := func(p, c object.Address) (object.TypeTag, []byte, bool, error) {
		return object.TypeTag{}, nil, false, nil
	}
	keyFetch := func(p, c object.Address, kt object.TypeTag, kb []byte) (object.TypeTag, []byte, bool, error) {
		if p == parent && c == child && kt.Equal(keyType) && string(kb) == string(keyBytes) {
			return object.Bool(), []byte{1}, true, nil
		}
		return object.TypeTag{}, nil, false, nil
	}
	rt := NewLocal(idFetch, keyFetch, nil)
	rt.RecordChildKey(parent, child, keyType, keyBytes)

	got, err := rt.BorrowChild(parent, child, object.Bool())
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if string(got) != string([]byte{1}) {
		t.Fatalf("unexpected bytes: %v", got)
	}
}

func TestTypeRewritingAtBoundary(t *testing.T) {
	originalPkg := addr(t, "0x100")
	storagePkg := addr(t, "0x200")
	aliases := object.AliasMap{storagePkg: originalPkg}

	rt := NewLocal(nil, nil, aliases)
	parent, child := addr(t, "0x70"), addr(t, "0x71")

	originalType := object.Struct(originalPkg, "coin", "Coin")
	storageType := object.Struct(storagePkg, "coin", "Coin")

	if err := rt.AddChild(parent, child, originalType, []byte{5}); err != nil {
		t.Fatalf("add with original-addressed type: %v", err)
	}
	// A borrow using the storage-addressed type (what the chain data's
	// stored child is keyed by post-rewrite) must match.
	if _, err := rt.BorrowChild(parent, child, storageType); err != nil {
		t.Fatalf("expected original type rewritten to storage space to match: %v", err)
	}
}

func TestSendAndReceiveObject(t *testing.T) {
	rt := NewLocal(nil, nil, nil)
	recipient, obj := addr(t, "0x80"), addr(t, "0x81")

	if err := rt.SendToObject(recipient, obj, object.U64(), []byte{3}); err != nil {
		t.Fatalf("send: %v", err)
	}
	ty, bytes, err := rt.ReceiveObject(recipient, obj)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !ty.Equal(object.U64()) || string(bytes) != string([]byte{3}) {
		t.Fatalf("unexpected receive result: %v %v", ty, bytes)
	}
	if _, _, err := rt.ReceiveObject(recipient, obj); err == nil || codeOf(t, err) != ECodeReceiveNotFound {
		t.Fatalf("expected RECEIVE_NOT_FOUND on second receive, got %v", err)
	}
}

func TestRecordCreatedAndLifecycleOps(t *testing.T) {
	rt := NewLocal(nil, nil, nil)
	id := addr(t, "0x90")
	owner := object.AddressOwner(addr(t, "0x91"))

	if err := rt.RecordCreated(id, []byte{1}, object.U64(), owner); err != nil {
		t.Fatalf("record created: %v", err)
	}
	if err := rt.RecordCreated(id, []byte{1}, object.U64(), owner); err == nil || codeOf(t, err) != ECodeObjectAlreadyExists {
		t.Fatalf("expected OBJECT_ALREADY_EXISTS, got %v", err)
	}
	if err := rt.MarkShared(id); err != nil {
		t.Fatalf("mark shared: %v", err)
	}
	if err := rt.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := rt.UpdateBytes(id, []byte{2}); err == nil || codeOf(t, err) != ECodeObjectDeleted {
		t.Fatalf("expected OBJECT_DELETED after delete, got %v", err)
	}
	if err := rt.MarkImmutable(addr(t, "0x99")); err == nil || codeOf(t, err) != ECodeObjectNotFound {
		t.Fatalf("expected OBJECT_NOT_FOUND for unknown id, got %v", err)
	}
}

func TestSharedRuntimeSharesStateAcrossSessions(t *testing.T) {
	rt := NewShared(nil, nil, nil)
	parent, child := addr(t, "0xa0"), addr(t, "0xa1")

	if err := rt.AddChild(parent, child, object.U64(), []byte{1}); err != nil {
		t.Fatalf("add via session 1: %v", err)
	}
	got, err := rt.BorrowChild(parent, child, object.U64())
	if err != nil {
		t.Fatalf("borrow via session 2: %v", err)
	}
	if string(got) != string([]byte{1}) {
		t.Fatalf("unexpected bytes across shared sessions: %v", got)
	}
}
