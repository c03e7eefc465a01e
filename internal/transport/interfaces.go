// Package transport implements the §6 chain-data transport contract:
// the narrow capabilities (ObjectFetcher, TransactionFetcher,
// DynamicFieldFetcher) every historical-state component (C4, C6, C9)
// fetches through, and a grpc.ClientConn-based adapter grounded on
// core/common_structs.go's AIStubClient/grpc.ClientConn shape (§9:
// polymorphism over transports captured by narrow capabilities with
// explicit adapter structs, no inheritance).
package transport

import (
	"context"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// ObjectRecord is the wire shape of get_object_at_version /
// fetch_object_at_checkpoint (§6): a plain object's fields when present,
// or (when Modules is non-nil) a package's modules and linkage table —
// the chain's unified object model treats packages as a kind of object.
type ObjectRecord struct {
	TypeString          *string
	BCS                  []byte
	OwnerKind            string
	OwnerAddress         *object.Address
	Version              uint64
	PreviousTransaction  *[32]byte
	Linkage              map[object.Address]object.Address
	OriginalID           *object.Address
	Modules              map[string][]byte
}

// DynamicFieldDescriptor is one entry of fetch_dynamic_fields's response
// (§6).
type DynamicFieldDescriptor struct {
	NameType  string
	NameBCS   []byte
	ObjectID  *object.Address
	ValueType *string
	ValueBCS  []byte
	Version   *uint64
}

// DynamicFieldInfo is find_dynamic_field_by_bcs's response (§6).
type DynamicFieldInfo struct {
	ObjectID  object.Address
	ValueType string
	ValueBCS  []byte
	Version   uint64
}

// Command is one PTB command as carried on the wire — the replay engine
// (C9) interprets Kind/Args itself; transport only carries the shape.
type Command struct {
	Kind string
	Args []byte
}

// InputArg is one transaction input: either a pure BCS value or an
// object reference at a known version.
type InputArg struct {
	Pure       []byte
	ObjectID   *object.Address
	Version    *uint64
	IsShared   bool
	MutableRef bool
}

// LoadedObjectRef is one entry of the transaction's loaded-object list:
// the ground truth for "what version did this object actually have
// during execution", consulted throughout §4.4 step 1 and §4.6 step 2(a).
type LoadedObjectRef struct {
	ID      object.Address
	Version uint64
}

// OnChainEffects is the subset of a transaction's recorded effects the
// replay engine's comparison (§4.10) needs: terminal status and the
// per-object change sets.
type OnChainEffects struct {
	Status  string
	Created []object.Address
	Mutated []object.Address
	Deleted []object.Address
	Wrapped []object.Address

	// Versions and Digests are optional per-object detail used when the
	// comparison opts into version/digest-level checking.
	Versions map[object.Address]uint64
	Digests  map[object.Address]object.Digest
}

// TransactionRecord is get_transaction's response (§6): everything the
// replay engine needs to reconstruct and re-execute one transaction.
type TransactionRecord struct {
	Digest                        [32]byte
	Sender                        object.Address
	TimestampMillis               uint64
	Checkpoint                    *uint64
	Commands                      []Command
	Inputs                        []InputArg
	LoadedObjects                 []LoadedObjectRef
	ChangedObjects                []LoadedObjectRef
	SharedObjectConsensusVersions []LoadedObjectRef
	Effects                       *OnChainEffects
}

// ObjectFetcher is the narrow capability for get_object_at_version and
// fetch_object_at_checkpoint. Returning (nil, nil) means "not found";
// network errors are returned distinctly (§6 semantics, §7 NotFound vs
// Transient).
type ObjectFetcher interface {
	GetObjectAtVersion(ctx context.Context, id object.Address, version *uint64) (*ObjectRecord, error)
	FetchObjectAtCheckpoint(ctx context.Context, id object.Address, checkpoint uint64) (*ObjectRecord, error)
}

// TransactionFetcher is the narrow capability for get_transaction.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, digest [32]byte) (*TransactionRecord, error)
}

// DynamicFieldFetcher is the narrow capability for fetch_dynamic_fields
// and find_dynamic_field_by_bcs.
type DynamicFieldFetcher interface {
	FetchDynamicFields(ctx context.Context, parent object.Address, limit int) ([]DynamicFieldDescriptor, error)
	FindDynamicFieldByBCS(ctx context.Context, parent object.Address, keyBCS []byte, checkpoint *uint64, limit int) (*DynamicFieldInfo, error)
}
