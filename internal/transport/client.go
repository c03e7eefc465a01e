package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// RawObjectRequest / RawObjectResponse etc. mirror the shape a generated
// gRPC client stub for the chain-data service would expose. Generating
// that stub from a .proto is out of scope (§1: "chain-data transport
// clients ... only their interfaces are specified"); RawClient is the
// narrow capability this package adapts, following
// core/common_structs.go's AIStubClient pattern of a small
// hand-declared interface sitting in front of a grpc.ClientConn.
type RawObjectRequest struct {
	ID         object.Address
	Version    *uint64
	Checkpoint *uint64
}

type RawTransactionRequest struct {
	Digest [32]byte
}

type RawDynamicFieldsRequest struct {
	Parent object.Address
	Limit  int
}

type RawFindDynamicFieldRequest struct {
	Parent     object.Address
	KeyBCS     []byte
	Checkpoint *uint64
	Limit      int
}

// RawClient is the gRPC-generated stub surface. A production build
// wires this to the compiled protobuf client; tests and this repo's
// adapters wire it to a fake.
type RawClient interface {
	GetObject(ctx context.Context, req *RawObjectRequest) (*ObjectRecord, error)
	GetTransaction(ctx context.Context, req *RawTransactionRequest) (*TransactionRecord, error)
	FetchDynamicFields(ctx context.Context, req *RawDynamicFieldsRequest) ([]DynamicFieldDescriptor, error)
	FindDynamicFieldByBCS(ctx context.Context, req *RawFindDynamicFieldRequest) (*DynamicFieldInfo, error)
}

// Client adapts a RawClient over a grpc.ClientConn into the engine's
// ObjectFetcher/TransactionFetcher/DynamicFieldFetcher capabilities,
// applying §6's bounded exponential retry to every call.
type Client struct {
	conn    *grpc.ClientConn
	stub    RawClient
	onRetry onRetryFunc
}

// NewClient wraps an already-dialed grpc.ClientConn and its stub.
// Dialing (endpoint resolution, TLS, keepalive policy) is a deployment
// concern left to the caller per §1's external-collaborator scoping.
func NewClient(conn *grpc.ClientConn, stub RawClient) *Client {
	return &Client{conn: conn, stub: stub}
}

// OnRetry installs a callback invoked before every backoff sleep, so a
// caller (typically the replay engine's metrics bundle) observes retry
// counts without this package importing internal/metrics directly.
func (c *Client) OnRetry(fn func(attempt int, err error)) {
	c.onRetry = fn
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) GetObjectAtVersion(ctx context.Context, id object.Address, version *uint64) (*ObjectRecord, error) {
	return withRetry(ctx, c.onRetry, func() (*ObjectRecord, error) {
		return c.stub.GetObject(ctx, &RawObjectRequest{ID: id, Version: version})
	})
}

func (c *Client) FetchObjectAtCheckpoint(ctx context.Context, id object.Address, checkpoint uint64) (*ObjectRecord, error) {
	return withRetry(ctx, c.onRetry, func() (*ObjectRecord, error) {
		return c.stub.GetObject(ctx, &RawObjectRequest{ID: id, Checkpoint: &checkpoint})
	})
}

func (c *Client) GetTransaction(ctx context.Context, digest [32]byte) (*TransactionRecord, error) {
	return withRetry(ctx, c.onRetry, func() (*TransactionRecord, error) {
		return c.stub.GetTransaction(ctx, &RawTransactionRequest{Digest: digest})
	})
}

func (c *Client) FetchDynamicFields(ctx context.Context, parent object.Address, limit int) ([]DynamicFieldDescriptor, error) {
	return withRetry(ctx, c.onRetry, func() ([]DynamicFieldDescriptor, error) {
		return c.stub.FetchDynamicFields(ctx, &RawDynamicFieldsRequest{Parent: parent, Limit: limit})
	})
}

func (c *Client) FindDynamicFieldByBCS(ctx context.Context, parent object.Address, keyBCS []byte, checkpoint *uint64, limit int) (*DynamicFieldInfo, error) {
	return withRetry(ctx, c.onRetry, func() (*DynamicFieldInfo, error) {
		return c.stub.FindDynamicFieldByBCS(ctx, &RawFindDynamicFieldRequest{Parent: parent, KeyBCS: keyBCS, Checkpoint: checkpoint, Limit: limit})
	})
}

// FetchPackage adapts GetObjectAtVersion into the package resolver's
// (C4) PackageSource capability: a package is an object whose record
// carries Modules/Linkage (§6).
func (c *Client) FetchPackage(ctx context.Context, storageID object.Address, version *uint64) (modules map[string][]byte, linkage map[object.Address]object.Address, resolvedVersion uint64, err error) {
	rec, err := c.GetObjectAtVersion(ctx, storageID, version)
	if err != nil {
		return nil, nil, 0, err
	}
	if rec == nil {
		return nil, nil, 0, fmt.Errorf("transport: package %s not found", storageID)
	}
	if rec.Modules == nil {
		return nil, nil, 0, fmt.Errorf("transport: object %s is not a package", storageID)
	}
	return rec.Modules, rec.Linkage, rec.Version, nil
}
