package replay

import (
	"encoding/binary"
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/vmhost"
)

// ChangeType classifies what a PTB execution did to one object, the
// per-object detail §4.10's version_summary reports.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeMutated ChangeType = "mutated"
	ChangeDeleted ChangeType = "deleted"
)

// ObjectVersionRecord is one object's version transition across the
// whole transaction, keyed for the version_summary output of §4.10.
type ObjectVersionRecord struct {
	ID            object.Address
	Change        ChangeType
	InputVersion  object.Version
	OutputVersion object.Version
}

// PTBExecutor replays the command list of one Programmable Transaction
// Block against an in-memory object set, producing the same lamport
// timestamp assignment the chain itself computes (§3: every object
// touched by a transaction receives the same output version, the
// transaction's lamport timestamp = max(input versions) + 1).
type PTBExecutor struct {
	objects map[object.Address]*object.StoredObject
	inputs  []InputValue
	sender  object.Address

	// session, when non-nil, backs MoveCall dispatch for recognized
	// native operations (§4.8/§6's VM extension contract). A nil session
	// means every MoveCall is recorded as unexecuted in diagnostics
	// rather than failing the replay outright.
	session *vmhost.Session

	txDigest [32]byte

	results     [][]object.Address
	versions    []ObjectVersionRecord
	diagnostics []string
	preVersions map[object.Address]object.Version
	touched     map[object.Address]ChangeType
}

// NewPTBExecutor seeds an executor over objects (every object the
// transaction's input/loaded lists named, at their historical versions)
// and the transaction's Pure/Object inputs.
func NewPTBExecutor(objects map[object.Address]*object.StoredObject, inputs []InputValue, sender object.Address, txDigest [32]byte, session *vmhost.Session) *PTBExecutor {
	pre := make(map[object.Address]object.Version, len(objects))
	for id, o := range objects {
		pre[id] = o.Version
	}
	return &PTBExecutor{
		objects:     objects,
		inputs:      inputs,
		sender:      sender,
		session:     session,
		txDigest:    txDigest,
		preVersions: pre,
		touched:     map[object.Address]ChangeType{},
	}
}

// touch records that id was created, mutated, or deleted during
// execution, preferring a later Deleted/Created classification over an
// earlier Mutated one if a command touches the same object twice (a
// created-then-deleted object is still reported as created, since it
// never existed as a chain object before this transaction).
func (e *PTBExecutor) touch(id object.Address, change ChangeType) {
	if existing, ok := e.touched[id]; ok && existing == ChangeCreated {
		return
	}
	e.touched[id] = change
}

// Lamport computes max(input version of every object the executor was
// seeded with) + 1, the timestamp every touched object is assigned (§3).
// It reads the versions captured at construction time rather than the
// live objects map, so calling it again after Finish (which bumps
// touched objects to the lamport value) still returns the same answer.
func (e *PTBExecutor) Lamport() object.Version {
	var max uint64
	for _, v := range e.preVersions {
		if v > max {
			max = v
		}
	}
	return max + 1
}

// Execute runs commands in order, storing each command's produced object
// IDs so later commands can address them via Result/NestedResult;
// diagnostics accumulated along the way are read through Diagnostics.
// A command error aborts the remaining commands — a PTB is atomic.
func (e *PTBExecutor) Execute(commands []Command) error {
	for i, cmd := range commands {
		res, err := e.execOne(i, cmd)
		if err != nil {
			return fmt.Errorf("replay: command %d (%s): %w", i, cmd.Kind, err)
		}
		e.results = append(e.results, res)
	}
	return nil
}

// Finish applies the transaction's lamport timestamp to every object
// this execution touched and returns the per-object version records
// (§3). Call this once, after Execute succeeds.
func (e *PTBExecutor) Finish() ([]ObjectVersionRecord, error) {
	lamport := e.Lamport()
	out := make([]ObjectVersionRecord, 0, len(e.touched))
	for id, change := range e.touched {
		inputVersion := e.preVersions[id]
		rec := ObjectVersionRecord{ID: id, Change: change, InputVersion: inputVersion, OutputVersion: lamport}
		if change != ChangeDeleted {
			if obj, ok := e.objects[id]; ok {
				if err := obj.IncrementVersion(lamport); err != nil {
					return nil, fmt.Errorf("replay: finish %s: %w", id, err)
				}
			}
		}
		out = append(out, rec)
	}
	e.versions = out
	return out, nil
}

// Touched reports every object created, mutated, or deleted during
// Execute, keyed by change type.
func (e *PTBExecutor) Touched() map[object.Address]ChangeType { return e.touched }

// Diagnostics returns human-readable notes accumulated during execution
// (e.g. unrecognized MoveCalls) (§9).
func (e *PTBExecutor) Diagnostics() []string { return e.diagnostics }

func (e *PTBExecutor) note(format string, args ...any) {
	e.diagnostics = append(e.diagnostics, fmt.Sprintf(format, args...))
}

func (e *PTBExecutor) resolveObject(arg Argument) (object.Address, error) {
	switch arg.Kind {
	case ArgInput:
		if arg.Index < 0 || arg.Index >= len(e.inputs) {
			return object.Address{}, &ArgumentDecodingError{Detail: fmt.Sprintf("input index %d out of range", arg.Index)}
		}
		in := e.inputs[arg.Index]
		if in.Object == nil {
			return object.Address{}, &ArgumentDecodingError{Detail: fmt.Sprintf("input %d is not an object reference", arg.Index)}
		}
		return *in.Object, nil
	case ArgResult:
		if arg.Index < 0 || arg.Index >= len(e.results) {
			return object.Address{}, &ArgumentDecodingError{Detail: fmt.Sprintf("result index %d out of range", arg.Index)}
		}
		nested := e.results[arg.Index]
		if arg.NestedIndex < 0 || arg.NestedIndex >= len(nested) {
			return object.Address{}, &ArgumentDecodingError{Detail: fmt.Sprintf("nested result (%d,%d) out of range", arg.Index, arg.NestedIndex)}
		}
		return nested[arg.NestedIndex], nil
	default:
		return object.Address{}, &ArgumentDecodingError{Detail: fmt.Sprintf("unknown argument kind %d", arg.Kind)}
	}
}

func (e *PTBExecutor) resolvePure(arg Argument) ([]byte, error) {
	if arg.Kind != ArgInput {
		return nil, &ArgumentDecodingError{Detail: "expected a pure input argument"}
	}
	if arg.Index < 0 || arg.Index >= len(e.inputs) {
		return nil, &ArgumentDecodingError{Detail: fmt.Sprintf("input index %d out of range", arg.Index)}
	}
	in := e.inputs[arg.Index]
	if in.Pure == nil {
		return nil, &ArgumentDecodingError{Detail: fmt.Sprintf("input %d is not a pure value", arg.Index)}
	}
	return in.Pure, nil
}

func (e *PTBExecutor) resolveU64(arg Argument) (uint64, error) {
	b, err := e.resolvePure(arg)
	if err != nil {
		return 0, err
	}
	if len(b) != 8 {
		return 0, &ArgumentDecodingError{Detail: fmt.Sprintf("pure value is not an 8-byte u64: got %d bytes", len(b))}
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (e *PTBExecutor) resolveAddress(arg Argument) (object.Address, error) {
	b, err := e.resolvePure(arg)
	if err != nil {
		return object.Address{}, err
	}
	if len(b) != object.AddressLength {
		return object.Address{}, &ArgumentDecodingError{Detail: fmt.Sprintf("pure value is not a %d-byte address: got %d bytes", object.AddressLength, len(b))}
	}
	var a object.Address
	copy(a[:], b)
	return a, nil
}

// newObjectID derives a deterministic ID for the resultIndex'th object a
// command produces, reusing C1's domain-separated child-ID hash rather
// than inventing a second hash scheme: the transaction digest stands in
// for the "parent" and (commandIndex, resultIndex) for the "key".
func (e *PTBExecutor) newObjectID(commandIndex, resultIndex int) object.Address {
	var txAddr object.Address
	copy(txAddr[:], e.txDigest[:])
	key := make([]byte, 16)
	binary.LittleEndian.PutUint64(key[0:8], uint64(commandIndex))
	binary.LittleEndian.PutUint64(key[8:16], uint64(resultIndex))
	id := object.DeriveChildID(txAddr, key, object.U64())
	return id
}

func (e *PTBExecutor) execOne(index int, cmd Command) ([]object.Address, error) {
	switch cmd.Kind {
	case KindSplitCoins:
		return e.execSplitCoins(index, cmd.SplitCoins)
	case KindMergeCoins:
		return nil, e.execMergeCoins(cmd.MergeCoins)
	case KindTransferObjects:
		return nil, e.execTransferObjects(cmd.TransferObjects)
	case KindMakeMoveVec:
		return e.execMakeMoveVec(cmd.MakeMoveVec)
	case KindMoveCall:
		return e.execMoveCall(cmd.MoveCall)
	case KindPublish:
		return e.execPublish(index, cmd.Publish)
	case KindUpgrade:
		return e.execUpgrade(index, cmd.Upgrade)
	default:
		return nil, fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
}

// execSplitCoins implements the SplitCoins command: splits len(Amounts)
// new coins off Coin, decrementing its balance by their sum.
func (e *PTBExecutor) execSplitCoins(index int, cmd *SplitCoinsCommand) ([]object.Address, error) {
	coinID, err := e.resolveObject(cmd.Coin)
	if err != nil {
		return nil, fmt.Errorf("resolve coin: %w", err)
	}
	coin, ok := e.objects[coinID]
	if !ok {
		return nil, fmt.Errorf("coin %s not loaded", coinID)
	}
	balance, err := decodeCoinBalance(coin.Bytes)
	if err != nil {
		return nil, err
	}

	newIDs := make([]object.Address, 0, len(cmd.Amounts))
	for i, amtArg := range cmd.Amounts {
		amt, err := e.resolveU64(amtArg)
		if err != nil {
			return nil, fmt.Errorf("split amount %d: %w", i, err)
		}
		if amt > balance {
			return nil, fmt.Errorf("split amount %d exceeds coin balance (%d > %d)", i, amt, balance)
		}
		balance -= amt

		id := e.newObjectID(index, i)
		bytes := newCoinBytes(idSeed(id), amt)
		e.objects[id] = object.NewStoredObject(id, bytes, coin.Type, coin.HasPublicTransfer, object.AddressOwner(e.sender), coin.Version)
		e.touch(id, ChangeCreated)
		newIDs = append(newIDs, id)
	}

	patched, err := withCoinBalance(coin.Bytes, balance)
	if err != nil {
		return nil, err
	}
	coin.UpdateBytes(patched)
	e.touch(coinID, ChangeMutated)
	return newIDs, nil
}

// execMergeCoins implements MergeCoins: adds every source's balance into
// Destination and deletes the sources.
func (e *PTBExecutor) execMergeCoins(cmd *MergeCoinsCommand) error {
	destID, err := e.resolveObject(cmd.Destination)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}
	dest, ok := e.objects[destID]
	if !ok {
		return fmt.Errorf("destination coin %s not loaded", destID)
	}
	destBalance, err := decodeCoinBalance(dest.Bytes)
	if err != nil {
		return err
	}

	for i, srcArg := range cmd.Sources {
		srcID, err := e.resolveObject(srcArg)
		if err != nil {
			return fmt.Errorf("resolve source %d: %w", i, err)
		}
		src, ok := e.objects[srcID]
		if !ok {
			return fmt.Errorf("source coin %s not loaded", srcID)
		}
		srcBalance, err := decodeCoinBalance(src.Bytes)
		if err != nil {
			return err
		}
		destBalance += srcBalance
		src.MarkDeleted()
		e.touch(srcID, ChangeDeleted)
	}

	patched, err := withCoinBalance(dest.Bytes, destBalance)
	if err != nil {
		return err
	}
	dest.UpdateBytes(patched)
	e.touch(destID, ChangeMutated)
	return nil
}

// execTransferObjects implements TransferObjects: reassigns each named
// object's owner to the resolved recipient address.
func (e *PTBExecutor) execTransferObjects(cmd *TransferObjectsCommand) error {
	recipient, err := e.resolveAddress(cmd.Recipient)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	for i, objArg := range cmd.Objects {
		id, err := e.resolveObject(objArg)
		if err != nil {
			return fmt.Errorf("resolve object %d: %w", i, err)
		}
		obj, ok := e.objects[id]
		if !ok {
			return fmt.Errorf("object %s not loaded", id)
		}
		obj.Transfer(recipient)
		e.touch(id, ChangeMutated)
	}
	return nil
}

// execMakeMoveVec implements MakeMoveVec: assembles a Move vector value
// out of already-resolved object arguments. No new object is created —
// the vector exists only as a PTB value, addressable by later commands
// through this command's single result slot.
func (e *PTBExecutor) execMakeMoveVec(cmd *MakeMoveVecCommand) ([]object.Address, error) {
	ids := make([]object.Address, 0, len(cmd.Elements))
	for i, el := range cmd.Elements {
		id, err := e.resolveObject(el)
		if err != nil {
			return nil, fmt.Errorf("resolve element %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// execMoveCall dispatches a recognized native operation through the VM
// session (§6, §9). An unrecognized call (no NativeOp set, or no session
// attached) is recorded as a diagnostic rather than aborting the replay,
// since the Move VM itself — not this engine — is what actually runs
// arbitrary bytecode.
func (e *PTBExecutor) execMoveCall(cmd *MoveCallCommand) ([]object.Address, error) {
	if cmd.NativeOp == "" || e.session == nil {
		e.note("move_call %s::%s::%s not executed (no native mapping or VM session)", cmd.Package, cmd.Module, cmd.Function)
		return nil, nil
	}
	if _, err := e.session.Invoke(cmd.NativeOp, vmhost.NativeArgs{}); err != nil {
		return nil, fmt.Errorf("native %s: %w", cmd.NativeOp, err)
	}
	return nil, nil
}

// execPublish models publishing new modules: it records one placeholder
// object, an UpgradeCap owned by the sender with an ID derived from the
// transaction, rather than re-deriving anything from the module bytes — bytecode
// verification and linkage belong to the package resolver (C4) once the
// package is later fetched back from chain data.
func (e *PTBExecutor) execPublish(index int, cmd *PublishCommand) ([]object.Address, error) {
	id := e.newObjectID(index, 0)
	pkgType := object.Struct(object.Address{}, "package", "UpgradeCap")
	e.objects[id] = object.NewStoredObject(id, []byte{}, pkgType, false, object.AddressOwner(e.sender), 0)
	e.touch(id, ChangeCreated)
	return []object.Address{id}, nil
}

// execUpgrade models a package upgrade the same way execPublish does,
// additionally noting the package address being replaced.
func (e *PTBExecutor) execUpgrade(index int, cmd *UpgradeCommand) ([]object.Address, error) {
	id := e.newObjectID(index, 0)
	pkgType := object.Struct(object.Address{}, "package", "UpgradeCap")
	e.objects[id] = object.NewStoredObject(id, []byte{}, pkgType, false, object.AddressOwner(e.sender), 0)
	e.touch(id, ChangeCreated)
	e.note("upgrade of package %s modeled as new UpgradeCap %s", cmd.Package, id)
	return []object.Address{id}, nil
}

// idSeed narrows an Address down to the fixed-size array newCoinBytes
// wants for a fresh coin's UID.
func idSeed(id object.Address) [32]byte {
	var out [32]byte
	copy(out[:], id[:])
	return out
}
