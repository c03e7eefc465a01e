package resolver

import (
	"fmt"
	"testing"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// fakeSource is an in-memory PackageSource keyed by (storageID, version)
// with a "latest" pointer per storage address, used to exercise the
// resolver and version finder without a real chain-data transport.
type fakeSource struct {
	packages map[object.Address]map[uint64]*FetchedPackage
	latest   map[object.Address]uint64
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		packages: map[object.Address]map[uint64]*FetchedPackage{},
		latest:   map[object.Address]uint64{},
	}
}

func (f *fakeSource) add(pkg *FetchedPackage) {
	if f.packages[pkg.StorageID] == nil {
		f.packages[pkg.StorageID] = map[uint64]*FetchedPackage{}
	}
	f.packages[pkg.StorageID][pkg.Version] = pkg
	if pkg.Version > f.latest[pkg.StorageID] {
		f.latest[pkg.StorageID] = pkg.Version
	}
}

func (f *fakeSource) FetchPackage(storageID object.Address, version *uint64) (*FetchedPackage, error) {
	versions, ok := f.packages[storageID]
	if !ok {
		return nil, fmt.Errorf("no such package %s", storageID)
	}
	v := f.latest[storageID]
	if version != nil {
		v = *version
	}
	pkg, ok := versions[v]
	if !ok {
		return nil, fmt.Errorf("no version %d of %s", v, storageID)
	}
	cp := *pkg
	return &cp, nil
}

// moduleSelfAddr/moduleDeps below fake "bytecode introspection" by
// encoding the module's self-address and dependency list as a tiny
// pipe-delimited string, since we don't carry a real Move bytecode
// parser — a stand-in for the VM contract's module loader (§9).
func encodeModule(self object.Address, deps ...object.Address) []byte {
	s := self.String()
	for _, d := range deps {
		s += "|" + d.String()
	}
	return []byte(s)
}

func splitModule(b []byte) []string {
	parts := []string{""}
	cur := 0
	for _, c := range b {
		if c == '|' {
			parts = append(parts, "")
			cur++
			continue
		}
		parts[cur] += string(c)
	}
	return parts
}

func fakeSelfAddress(b []byte) (object.Address, error) {
	parts := splitModule(b)
	return object.ParseAddress(parts[0])
}

func fakeDependencies(b []byte) ([]object.Address, error) {
	parts := splitModule(b)
	var out []object.Address
	for _, p := range parts[1:] {
		a, err := object.ParseAddress(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func TestPackageResolverBasicFrontier(t *testing.T) {
	root, _ := object.ParseAddress("0x10")
	dep, _ := object.ParseAddress("0x20")

	src := newFakeSource()
	src.add(&FetchedPackage{
		StorageID: root,
		Version:   1,
		Modules:   map[string][]byte{"main": encodeModule(root, dep)},
		Linkage:   map[object.Address]object.Address{},
	})
	src.add(&FetchedPackage{
		StorageID: dep,
		Version:   1,
		Modules:   map[string][]byte{"main": encodeModule(dep)},
		Linkage:   map[object.Address]object.Address{},
	})

	r := NewPackageResolver(src, fakeSelfAddress, fakeDependencies)
	res, err := r.Resolve([]object.Address{root}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Packages) != 2 {
		t.Fatalf("expected 2 packages resolved, got %d", len(res.Packages))
	}
	if _, ok := res.Packages[root]; !ok {
		t.Fatalf("expected root package resolved under its original id")
	}
	if _, ok := res.Packages[dep]; !ok {
		t.Fatalf("expected dependency resolved")
	}
}

func TestPackageResolverUpgradeAlias(t *testing.T) {
	original, _ := object.ParseAddress("0x30")
	upgraded, _ := object.ParseAddress("0x31")

	src := newFakeSource()
	// The package now lives at `upgraded`, but its bytecode still
	// declares `original` as its self-address.
	src.add(&FetchedPackage{
		StorageID: upgraded,
		Version:   2,
		Modules:   map[string][]byte{"main": encodeModule(original)},
		Linkage:   map[object.Address]object.Address{},
	})

	r := NewPackageResolver(src, fakeSelfAddress, fakeDependencies)
	res, err := r.Resolve([]object.Address{upgraded}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	pkg, ok := res.Packages[original]
	if !ok {
		t.Fatalf("expected package indexed under its original id")
	}
	if pkg.StorageID != upgraded {
		t.Fatalf("expected storage id preserved as %s, got %s", upgraded, pkg.StorageID)
	}
	if res.Aliases[upgraded] != original {
		t.Fatalf("expected storage->original alias recorded")
	}
}

func TestPackageResolverFrameworkSkipped(t *testing.T) {
	root, _ := object.ParseAddress("0x40")
	framework, _ := object.ParseAddress("0x2")

	src := newFakeSource()
	src.add(&FetchedPackage{
		StorageID: root,
		Version:   1,
		Modules:   map[string][]byte{"main": encodeModule(root, framework)},
		Linkage:   map[object.Address]object.Address{},
	})

	r := NewPackageResolver(src, fakeSelfAddress, fakeDependencies)
	res, err := r.Resolve([]object.Address{root}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Packages) != 1 {
		t.Fatalf("expected framework dependency skipped, got %d packages", len(res.Packages))
	}
}

func TestPackageResolverUnreachableReportsAddress(t *testing.T) {
	root, _ := object.ParseAddress("0x50")
	src := newFakeSource()
	r := NewPackageResolver(src, fakeSelfAddress, fakeDependencies)
	_, err := r.Resolve([]object.Address{root}, nil)
	if err == nil {
		t.Fatalf("expected error for unreachable package")
	}
	var unresolved *UnresolvedError
	if !asUnresolved(err, &unresolved) {
		t.Fatalf("expected UnresolvedError, got %T: %v", err, err)
	}
	if unresolved.Address != root {
		t.Fatalf("expected error to name %s, got %s", root, unresolved.Address)
	}
}

func asUnresolved(err error, target **UnresolvedError) bool {
	if ue, ok := err.(*UnresolvedError); ok {
		*target = ue
		return true
	}
	return false
}

func TestHistoricalVersionFinderDescending(t *testing.T) {
	pkg, _ := object.ParseAddress("0x60")
	constants := map[uint64]uint64{
		1: 3, 2: 3, 3: 5, 4: 8, 5: 8, 6: 8, 7: 9,
	}
	lookup := func(storageID object.Address, version uint64) (bool, []uint64) {
		v, ok := constants[version]
		if !ok {
			return false, nil
		}
		return true, []uint64{v}
	}
	latest := func(object.Address) (uint64, error) { return 7, nil }

	finder, err := NewHistoricalVersionFinder(lookup, latest, 50, 16)
	if err != nil {
		t.Fatalf("new finder: %v", err)
	}
	result, err := finder.Find(pkg, 8, Descending)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if result == nil {
		t.Fatalf("expected a result")
	}
	if constants[result.Version] != 8 {
		t.Fatalf("version %d does not embed target 8", result.Version)
	}
}

func TestHistoricalVersionFinderNotFound(t *testing.T) {
	pkg, _ := object.ParseAddress("0x61")
	lookup := func(object.Address, uint64) (bool, []uint64) { return false, nil }
	latest := func(object.Address) (uint64, error) { return 5, nil }

	finder, err := NewHistoricalVersionFinder(lookup, latest, 10, 16)
	if err != nil {
		t.Fatalf("new finder: %v", err)
	}
	result, err := finder.Find(pkg, 100, Descending)
	if err != nil {
		t.Fatalf("find should not error on a graceful miss: %v", err)
	}
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
}

func TestHistoricalVersionFinderBinarySearch(t *testing.T) {
	pkg, _ := object.ParseAddress("0x62")
	// Monotone non-decreasing version constant across storage versions.
	constants := map[uint64]uint64{1: 1, 2: 1, 3: 2, 4: 4, 5: 4, 6: 4, 7: 6, 8: 6, 9: 8, 10: 8}
	lookup := func(storageID object.Address, version uint64) (bool, []uint64) {
		v, ok := constants[version]
		if !ok {
			return false, nil
		}
		return true, []uint64{v}
	}
	latest := func(object.Address) (uint64, error) { return 10, nil }

	finder, err := NewHistoricalVersionFinder(lookup, latest, 50, 16)
	if err != nil {
		t.Fatalf("new finder: %v", err)
	}
	result, err := finder.Find(pkg, 8, BinarySearch)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if result == nil || constants[result.Version] != 8 {
		t.Fatalf("expected a version embedding 8, got %+v", result)
	}
}
