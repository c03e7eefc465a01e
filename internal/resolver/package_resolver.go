package resolver

import (
	"fmt"
	"sort"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// VersionHint supplies the version a package should be fetched at when
// one is known ahead of time — from the historical-version map or from
// the transaction's loaded-object list (§4.4 step 1). Resolve falls
// back to the latest version when no hint is present.
type VersionHint map[object.Address]uint64

// UnresolvedError names an address the resolver could not fetch or
// whose linkage self-upgrade target was also unreachable (§4.4 failure
// modes).
type UnresolvedError struct {
	Address object.Address
	Cause   error
}

func (e *UnresolvedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolver: package %s unresolved: %v", e.Address, e.Cause)
	}
	return fmt.Sprintf("resolver: package %s unresolved", e.Address)
}

func (e *UnresolvedError) Unwrap() error { return e.Cause }

// Resolution is the output of PackageResolver.Resolve: every resolved
// package keyed by its original_id (the address module loading uses
// naturally, per §4.4 step 5), plus the storage->original alias table
// accumulated along the way.
type Resolution struct {
	Packages map[object.Address]*Package
	Aliases  object.AliasMap
}

// PackageResolver implements C4: given a root set of package addresses,
// fetch every package following linkage tables and upgrade chains and
// assemble module tables keyed by original address.
type PackageResolver struct {
	source       PackageSource
	selfAddress  ModuleSelfAddress
	dependencies ModuleDependencies
}

func NewPackageResolver(source PackageSource, selfAddress ModuleSelfAddress, dependencies ModuleDependencies) *PackageResolver {
	return &PackageResolver{source: source, selfAddress: selfAddress, dependencies: dependencies}
}

// Resolve runs the frontier algorithm of §4.4 to completion, returning
// every package reachable from roots. Framework addresses (0x1/0x2/0x3)
// are fetched if requested directly but never recursed into as a
// dependency of another package.
func (r *PackageResolver) Resolve(roots []object.Address, hints VersionHint) (*Resolution, error) {
	aliases := object.AliasMap{}
	resolved := map[object.Address]*Package{} // keyed by original_id
	storageSeen := map[object.Address]bool{}
	frontier := append([]object.Address(nil), roots...)

	for len(frontier) > 0 {
		addr := frontier[0]
		frontier = frontier[1:]
		if storageSeen[addr] {
			continue
		}
		storageSeen[addr] = true

		pkg, newFrontier, err := r.resolveOne(addr, hints, aliases, resolved)
		if err != nil {
			return nil, err
		}
		if pkg == nil {
			continue
		}
		resolved[pkg.OriginalID] = mergeTieBreak(resolved[pkg.OriginalID], pkg)
		for _, dep := range newFrontier {
			if !storageSeen[dep] {
				frontier = append(frontier, dep)
			}
		}
	}

	return &Resolution{Packages: resolved, Aliases: aliases}, nil
}

// resolveOne fetches one frontier address and returns its resolved
// package plus the dependency addresses it contributes to the frontier.
func (r *PackageResolver) resolveOne(addr object.Address, hints VersionHint, aliases object.AliasMap, resolved map[object.Address]*Package) (*Package, []object.Address, error) {
	var versionPtr *uint64
	if v, ok := hints[addr]; ok {
		versionPtr = &v
	}

	fetched, err := r.source.FetchPackage(addr, versionPtr)
	if err != nil {
		return nil, nil, &UnresolvedError{Address: addr, Cause: err}
	}

	firstModule, err := firstModuleBytes(fetched.Modules)
	if err != nil {
		return nil, nil, &UnresolvedError{Address: addr, Cause: err}
	}
	originalID, err := r.selfAddress(firstModule)
	if err != nil {
		return nil, nil, &UnresolvedError{Address: addr, Cause: fmt.Errorf("recover self-address: %w", err)}
	}

	pkg := &Package{
		StorageID:  fetched.StorageID,
		OriginalID: originalID,
		Version:    fetched.Version,
		Modules:    fetched.Modules,
		Linkage:    fetched.Linkage,
	}

	if fetched.StorageID != originalID {
		aliases[fetched.StorageID] = originalID
	}

	var frontierAdds []object.Address
	for linkOriginal, linkUpgraded := range fetched.Linkage {
		if linkOriginal == originalID && linkUpgraded != fetched.StorageID {
			// Self-upgrade indicator (§4.4 step 3): this package's own
			// identity moved on; follow it and substitute those modules.
			upgraded, err := r.source.FetchPackage(linkUpgraded, nil)
			if err != nil {
				return nil, nil, &UnresolvedError{Address: linkUpgraded, Cause: fmt.Errorf("follow self-upgrade from %s: %w", fetched.StorageID, err)}
			}
			pkg.Modules = upgraded.Modules
			pkg.StorageID = upgraded.StorageID
			pkg.Version = upgraded.Version
			aliases[upgraded.StorageID] = originalID
			continue
		}
	}

	for _, mod := range pkg.Modules {
		deps, err := r.dependencies(mod)
		if err != nil {
			return nil, nil, &UnresolvedError{Address: addr, Cause: fmt.Errorf("extract dependencies: %w", err)}
		}
		for _, dep := range deps {
			normalized := dep
			if normalized.IsFramework() {
				continue
			}
			if upgraded, ok := fetched.Linkage[normalized]; ok {
				normalized = upgraded
			}
			if _, already := resolved[normalized]; already {
				continue
			}
			frontierAdds = append(frontierAdds, normalized)
		}
	}

	return pkg, frontierAdds, nil
}

// mergeTieBreak resolves the "several candidate storage addresses for
// one original_id" case from §4.4's tie-breaks: prefer the higher
// declared version, then the lexicographically larger address.
func mergeTieBreak(existing, incoming *Package) *Package {
	if existing == nil {
		return incoming
	}
	if incoming.Version != existing.Version {
		if incoming.Version > existing.Version {
			return incoming
		}
		return existing
	}
	if existing.StorageID.Less(incoming.StorageID) {
		return incoming
	}
	return existing
}

func firstModuleBytes(modules map[string][]byte) ([]byte, error) {
	if len(modules) == 0 {
		return nil, fmt.Errorf("package has no modules")
	}
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return modules[names[0]], nil
}

// LoadOrder sorts resolved packages by version ascending, the order
// §4.4's "module loading order" requires so later writes overwrite
// earlier ones for any alias collision when feeding the VM's resolver.
func LoadOrder(res *Resolution) []*Package {
	out := make([]*Package, 0, len(res.Packages))
	for _, p := range res.Packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version < out[j].Version
		}
		return out[i].OriginalID.Less(out[j].OriginalID)
	})
	return out
}
