package transport

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

type fakeRawClient struct {
	objects    map[object.Address]*ObjectRecord
	failsFirst int
	calls      int
}

func (f *fakeRawClient) GetObject(ctx context.Context, req *RawObjectRequest) (*ObjectRecord, error) {
	f.calls++
	if f.failsFirst > 0 {
		f.failsFirst--
		return nil, status.Error(codes.Unavailable, "overloaded")
	}
	rec, ok := f.objects[req.ID]
	if !ok {
		return nil, status.Error(codes.NotFound, "no such object")
	}
	return rec, nil
}

func (f *fakeRawClient) GetTransaction(ctx context.Context, req *RawTransactionRequest) (*TransactionRecord, error) {
	return nil, status.Error(codes.NotFound, "no such tx")
}

func (f *fakeRawClient) FetchDynamicFields(ctx context.Context, req *RawDynamicFieldsRequest) ([]DynamicFieldDescriptor, error) {
	return nil, nil
}

func (f *fakeRawClient) FindDynamicFieldByBCS(ctx context.Context, req *RawFindDynamicFieldRequest) (*DynamicFieldInfo, error) {
	return nil, status.Error(codes.NotFound, "no match")
}

func addr(last byte) object.Address {
	var a object.Address
	a[object.AddressLength-1] = last
	return a
}

func TestClientGetObjectAtVersionNotFoundIsNilNil(t *testing.T) {
	fake := &fakeRawClient{objects: map[object.Address]*ObjectRecord{}}
	c := NewClient(nil, fake)

	rec, err := c.GetObjectAtVersion(context.Background(), addr(1), nil)
	if err != nil {
		t.Fatalf("expected nil error for not-found, got %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestClientRetriesTransientThenSucceeds(t *testing.T) {
	want := &ObjectRecord{Version: 7}
	fake := &fakeRawClient{
		objects:    map[object.Address]*ObjectRecord{addr(2): want},
		failsFirst: 2,
	}
	c := NewClient(nil, fake)

	var retries int
	c.OnRetry(func(attempt int, err error) { retries++ })

	rec, err := c.GetObjectAtVersion(context.Background(), addr(2), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.Version != 7 {
		t.Fatalf("got %+v, want version 7", rec)
	}
	if retries != 2 {
		t.Fatalf("retries = %d, want 2", retries)
	}
}

func TestClientExhaustsRetriesAndReturnsTransientError(t *testing.T) {
	fake := &fakeRawClient{objects: map[object.Address]*ObjectRecord{}, failsFirst: 100}
	c := NewClient(nil, fake)

	_, err := c.GetObjectAtVersion(context.Background(), addr(3), nil)
	if err == nil {
		t.Fatal("expected error after exhausting retry budget")
	}
	if !IsTransient(err) {
		t.Errorf("expected a transient-classified error, got %v", err)
	}
}

func TestClassifyMapsNotFoundAndUnavailable(t *testing.T) {
	_, notFound, _ := classify(status.Error(codes.NotFound, "x"))
	if !notFound {
		t.Error("NotFound should classify as notFound=true")
	}
	retriable, _, _ := classify(status.Error(codes.Unavailable, "x"))
	if !retriable {
		t.Error("Unavailable should classify as retriable=true")
	}
	retriable, notFound, mapped := classify(errors.New("plain error"))
	if retriable || notFound || mapped == nil {
		t.Error("non-status errors should map to a non-retriable, non-notfound Malformed error")
	}
}

func TestFetchPackageRejectsNonPackageObject(t *testing.T) {
	fake := &fakeRawClient{objects: map[object.Address]*ObjectRecord{addr(4): {Version: 1}}}
	c := NewClient(nil, fake)

	_, _, _, err := c.FetchPackage(context.Background(), addr(4), nil)
	if err == nil {
		t.Fatal("expected error fetching a non-package object as a package")
	}
}
