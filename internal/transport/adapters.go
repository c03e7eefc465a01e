package transport

import (
	"context"
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/prefetch"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/resolver"
)

// PackageSourceAdapter satisfies resolver.PackageSource (C4), which has
// no context parameter — package resolution runs before the VM session
// exists, so there is nothing for a request to be bound to yet; ctx is
// fixed at construction instead, following §9's "explicit adapter
// struct" pattern for bridging a context-free narrow capability onto a
// context-aware transport.
type PackageSourceAdapter struct {
	client *Client
	ctx    context.Context
}

func NewPackageSourceAdapter(client *Client, ctx context.Context) *PackageSourceAdapter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &PackageSourceAdapter{client: client, ctx: ctx}
}

func (a *PackageSourceAdapter) FetchPackage(storageID object.Address, version *uint64) (*resolver.FetchedPackage, error) {
	modules, linkage, resolvedVersion, err := a.client.FetchPackage(a.ctx, storageID, version)
	if err != nil {
		return nil, err
	}
	return &resolver.FetchedPackage{
		StorageID: storageID,
		Version:   resolvedVersion,
		Modules:   modules,
		Linkage:   linkage,
	}, nil
}

// PrefetchEnumerator adapts FetchDynamicFields into prefetch.Enumerator
// (C6 step 1).
func (c *Client) PrefetchEnumerator() prefetch.Enumerator {
	return func(ctx context.Context, parent object.Address, limit int) ([]prefetch.ChildDescriptor, error) {
		descs, err := c.FetchDynamicFields(ctx, parent, limit)
		if err != nil {
			return nil, err
		}
		out := make([]prefetch.ChildDescriptor, 0, len(descs))
		for _, d := range descs {
			if d.ObjectID == nil {
				continue
			}
			keyType, err := object.Parse(d.NameType)
			if err != nil {
				return nil, fmt.Errorf("transport: parse dynamic field key type %q: %w", d.NameType, err)
			}
			var valueType object.TypeTag
			if d.ValueType != nil {
				valueType, err = object.Parse(*d.ValueType)
				if err != nil {
					return nil, fmt.Errorf("transport: parse dynamic field value type %q: %w", *d.ValueType, err)
				}
			}
			out = append(out, prefetch.ChildDescriptor{
				ChildID:   *d.ObjectID,
				KeyType:   keyType,
				KeyBCS:    d.NameBCS,
				ValueType: valueType,
			})
		}
		return out, nil
	}
}

// PrefetchFetcher adapts GetObjectAtVersion into prefetch.Fetcher (C6
// step 3): version == 0 requests latest, matching the "retry at latest"
// fallback the prefetcher already drives.
func (c *Client) PrefetchFetcher() prefetch.Fetcher {
	return func(ctx context.Context, child object.Address, version object.Version) (object.TypeTag, []byte, error) {
		var versionPtr *uint64
		if version != 0 {
			v := version
			versionPtr = &v
		}
		rec, err := c.GetObjectAtVersion(ctx, child, versionPtr)
		if err != nil {
			return object.TypeTag{}, nil, err
		}
		if rec == nil {
			return object.TypeTag{}, nil, fmt.Errorf("transport: object %s not found at version %d", child, version)
		}
		if rec.TypeString == nil {
			return object.TypeTag{}, nil, fmt.Errorf("transport: object %s missing type", child)
		}
		t, err := object.Parse(*rec.TypeString)
		if err != nil {
			return object.TypeTag{}, nil, fmt.Errorf("transport: parse type %q: %w", *rec.TypeString, err)
		}
		return t, rec.BCS, nil
	}
}

// PrefetchCurrentVersion adapts GetObjectAtVersion (nil version =
// latest) into prefetch.CurrentVersion (C6 step 2(b)).
func (c *Client) PrefetchCurrentVersion() prefetch.CurrentVersion {
	return func(ctx context.Context, child object.Address) (object.Version, error) {
		rec, err := c.GetObjectAtVersion(ctx, child, nil)
		if err != nil {
			return 0, err
		}
		if rec == nil {
			return 0, fmt.Errorf("transport: object %s not found", child)
		}
		return rec.Version, nil
	}
}
