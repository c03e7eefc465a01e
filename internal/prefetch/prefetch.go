// Package prefetch implements C6: recursively enumerating and fetching
// dynamic-field children under a set of known parents, indexed for both
// ID-based and key-based lookup (§4.6).
package prefetch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// ChildDescriptor is one entry returned by enumerating a parent's dynamic
// fields — the shape of the chain-data transport's
// `fetch_dynamic_fields(parent, limit)` response (§6).
type ChildDescriptor struct {
	ChildID   object.Address
	KeyType   object.TypeTag
	KeyBCS    []byte
	ValueType object.TypeTag
}

// Enumerator lists the dynamic-field children of a parent, bounded by
// limit. It is the chain-data transport's narrow capability, not this
// package's concern (§9: polymorphism over transports via narrow
// capabilities, no inheritance).
type Enumerator func(ctx context.Context, parent object.Address, limit int) ([]ChildDescriptor, error)

// Fetcher retrieves a child's serialized bytes and type at a specific
// historical version.
type Fetcher func(ctx context.Context, child object.Address, version object.Version) (valueType object.TypeTag, bytes []byte, err error)

// CurrentVersion reads a child's current on-chain version, used by step
// 2(b) of §4.6 when the transaction's loaded-object list doesn't name the
// child directly.
type CurrentVersion func(ctx context.Context, child object.Address) (object.Version, error)

// Config bounds the recursive enumeration per §4.6 and §6's
// `prefetch_depth`/`prefetch_limit` configuration surface.
type Config struct {
	MaxFieldsPerObject int
	MaxDepth           int
	// MaxLamportVersion bounds step 2(b): a child's current version is
	// accepted only if it does not exceed this value.
	MaxLamportVersion object.Version
	Concurrency       int
}

// Stats reports what the prefetch run actually did, per §8's truncation
// boundary behavior and §9's diagnostics needs.
type Stats struct {
	Fetched          int
	Truncated        []object.Address // parents whose children exceeded MaxFieldsPerObject
	SkippedFutureVer []object.Address // children skipped because current version > MaxLamportVersion
	Failed           []object.Address // children unreachable even after retry at latest
}

// Prefetcher implements §4.6's recursive enumeration algorithm.
type Prefetcher struct {
	enumerate Enumerator
	fetch     Fetcher
	current   CurrentVersion
	cfg       Config
}

func New(enumerate Enumerator, fetch Fetcher, current CurrentVersion, cfg Config) *Prefetcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Prefetcher{enumerate: enumerate, fetch: fetch, current: current, cfg: cfg}
}

// Run walks every root parent to MaxDepth, returning the populated index
// and run statistics. loadedVersions supplies the transaction's
// loaded-object list (step 2(a)); children absent from it fall through to
// step 2(b)'s current-version check.
func (p *Prefetcher) Run(ctx context.Context, roots []object.Address, loadedVersions map[object.Address]object.Version) (*Index, *Stats, error) {
	idx := NewIndex()
	stats := &Stats{}
	seen := map[object.Address]bool{}

	type job struct {
		parent object.Address
		depth  int
	}
	queue := make([]job, 0, len(roots))
	for _, r := range roots {
		queue = append(queue, job{parent: r, depth: 0})
	}

	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		if seen[j.parent] || j.depth > p.cfg.MaxDepth {
			continue
		}
		seen[j.parent] = true

		children, err := p.enumerate(ctx, j.parent, p.cfg.MaxFieldsPerObject+1)
		if err != nil {
			return nil, nil, fmt.Errorf("prefetch: enumerate %s: %w", j.parent, err)
		}
		if len(children) > p.cfg.MaxFieldsPerObject {
			children = children[:p.cfg.MaxFieldsPerObject]
			stats.Truncated = append(stats.Truncated, j.parent)
		}

		resolved, err := p.resolveVersions(ctx, children, loadedVersions, stats)
		if err != nil {
			return nil, nil, err
		}

		fetched, err := p.fetchAll(ctx, j.parent, resolved, stats)
		if err != nil {
			return nil, nil, err
		}
		for _, e := range fetched {
			idx.Add(e)
			queue = append(queue, job{parent: e.ChildID, depth: j.depth + 1})
		}
	}

	return idx, stats, nil
}

type resolvedChild struct {
	desc    ChildDescriptor
	version object.Version
}

// resolveVersions applies step 2 of §4.6: prefer the transaction's
// loaded-object version, else accept the current version only if it does
// not exceed the transaction's maximum lamport version.
func (p *Prefetcher) resolveVersions(ctx context.Context, children []ChildDescriptor, loadedVersions map[object.Address]object.Version, stats *Stats) ([]resolvedChild, error) {
	out := make([]resolvedChild, 0, len(children))
	for _, c := range children {
		if v, ok := loadedVersions[c.ChildID]; ok {
			out = append(out, resolvedChild{desc: c, version: v})
			continue
		}
		v, err := p.current(ctx, c.ChildID)
		if err != nil {
			return nil, fmt.Errorf("prefetch: current version of %s: %w", c.ChildID, err)
		}
		if v > p.cfg.MaxLamportVersion {
			stats.SkippedFutureVer = append(stats.SkippedFutureVer, c.ChildID)
			continue
		}
		out = append(out, resolvedChild{desc: c, version: v})
	}
	return out, nil
}

// fetchAll fetches each resolved child concurrently (bounded, per §5's
// cooperative-I/O model), retrying at latest on failure before recording
// the child as unreachable (§4.6 step 3).
func (p *Prefetcher) fetchAll(ctx context.Context, parent object.Address, resolved []resolvedChild, stats *Stats) ([]*Entry, error) {
	entries := make([]*Entry, len(resolved))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i, rc := range resolved {
		i, rc := i, rc
		g.Go(func() error {
			valueType, bytes, err := p.fetch(gctx, rc.desc.ChildID, rc.version)
			if err != nil {
				valueType, bytes, err = p.fetch(gctx, rc.desc.ChildID, 0) // retry at latest
				if err != nil {
					mu.Lock()
					stats.Failed = append(stats.Failed, rc.desc.ChildID)
					mu.Unlock()
					return nil
				}
			}
			entries[i] = &Entry{
				ParentID:  parent,
				ChildID:   rc.desc.ChildID,
				KeyType:   rc.desc.KeyType,
				KeyBCS:    rc.desc.KeyBCS,
				ValueType: valueType,
				Bytes:     bytes,
				Version:   rc.version,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := entries[:0]
	for _, e := range entries {
		if e != nil {
			out = append(out, e)
		}
	}
	stats.Fetched += len(out)
	return out, nil
}
