package resolver

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// SearchStrategy selects how HistoricalVersionFinder walks candidate
// versions looking for the one whose bytecode embeds a target constant
// (§4.3).
type SearchStrategy uint8

const (
	Descending SearchStrategy = iota
	Ascending
	BinarySearch
)

// ConstantLookup reads the u64 constant pool of a package's first
// module at a given storage version, the probe HistoricalVersionFinder
// uses to test a candidate. Returning found == false means the package has
// no version constant at all, distinct from the constant simply not
// matching — both are handled identically by the finder (§4.3's
// "fails gracefully" clause).
type ConstantLookup func(storageID object.Address, version uint64) (found bool, values []uint64)

// FindResult is what HistoricalVersionFinder.Find returns on success:
// the version located and how many probes it took to find it.
type FindResult struct {
	Version    uint64
	Iterations int
}

type versionCacheKey struct {
	storageID object.Address
	target    uint64
}

// HistoricalVersionFinder implements C3: given a package's storage
// address and a target version constant, locate the historical package
// version whose first-module constant pool contains that value.
type HistoricalVersionFinder struct {
	lookup   ConstantLookup
	latest   func(storageID object.Address) (uint64, error)
	maxIters int
	cache    *lru.Cache[versionCacheKey, FindResult]
}

// NewHistoricalVersionFinder builds a finder bounded to maxIterations
// probes per search, backed by a small LRU of past results so repeated
// lookups for the same (package, target) pair within a process are free
// (§6: "Results are cacheable").
func NewHistoricalVersionFinder(lookup ConstantLookup, latest func(object.Address) (uint64, error), maxIterations, cacheSize int) (*HistoricalVersionFinder, error) {
	cache, err := lru.New[versionCacheKey, FindResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("resolver: new version cache: %w", err)
	}
	return &HistoricalVersionFinder{lookup: lookup, latest: latest, maxIters: maxIterations, cache: cache}, nil
}

// Find locates a version of storageID whose first-module constant pool
// contains target, using strategy. Returns (nil, nil) — not an error —
// when the package has no version constant or the constant never took
// the target value within the iteration budget, per §4.3's
// fail-gracefully contract.
func (f *HistoricalVersionFinder) Find(storageID object.Address, target uint64, strategy SearchStrategy) (*FindResult, error) {
	key := versionCacheKey{storageID: storageID, target: target}
	if cached, ok := f.cache.Get(key); ok {
		result := cached
		return &result, nil
	}

	latest, err := f.latest(storageID)
	if err != nil {
		return nil, fmt.Errorf("resolver: latest version of %s: %w", storageID, err)
	}

	var result *FindResult
	switch strategy {
	case Ascending:
		result = f.searchAscending(storageID, target, latest)
	case BinarySearch:
		result = f.searchBinary(storageID, target, latest)
	default:
		result = f.searchDescending(storageID, target, latest)
	}

	if result != nil {
		f.cache.Add(key, *result)
	}
	return result, nil
}

func (f *HistoricalVersionFinder) matches(storageID object.Address, version, target uint64) bool {
	found, values := f.lookup(storageID, version)
	if !found {
		return false
	}
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func (f *HistoricalVersionFinder) searchDescending(storageID object.Address, target, latest uint64) *FindResult {
	iterations := 0
	for v := latest; v >= 1 && iterations < f.maxIters; v-- {
		iterations++
		if f.matches(storageID, v, target) {
			return &FindResult{Version: v, Iterations: iterations}
		}
		if v == 1 {
			break
		}
	}
	return nil
}

func (f *HistoricalVersionFinder) searchAscending(storageID object.Address, target, latest uint64) *FindResult {
	iterations := 0
	for v := uint64(1); v <= latest && iterations < f.maxIters; v++ {
		iterations++
		if f.matches(storageID, v, target) {
			return &FindResult{Version: v, Iterations: iterations}
		}
	}
	return nil
}

// searchBinary assumes the version constant is monotone non-decreasing
// with storage version, which holds for the common case of a package
// incrementing a CURRENT_VERSION constant on every upgrade. It narrows
// toward the lowest version whose observed constant is >= target, then
// verifies an exact match; non-monotone histories fall back to none
// within budget rather than returning a false positive.
func (f *HistoricalVersionFinder) searchBinary(storageID object.Address, target, latest uint64) *FindResult {
	lo, hi := uint64(1), latest
	iterations := 0
	var candidate uint64
	haveCandidate := false

	for lo <= hi && iterations < f.maxIters {
		iterations++
		mid := lo + (hi-lo)/2
		found, values := f.lookup(storageID, mid)
		if !found || len(values) == 0 {
			hi = mid - 1
			continue
		}
		maxV := values[0]
		for _, v := range values[1:] {
			if v > maxV {
				maxV = v
			}
		}
		switch {
		case maxV == target:
			return &FindResult{Version: mid, Iterations: iterations}
		case maxV > target:
			candidate, haveCandidate = mid, true
			hi = mid - 1
		default:
			lo = mid + 1
		}
	}

	if haveCandidate && iterations < f.maxIters {
		iterations++
		if f.matches(storageID, candidate, target) {
			return &FindResult{Version: candidate, Iterations: iterations}
		}
	}
	return nil
}
