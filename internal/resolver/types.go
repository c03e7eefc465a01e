// Package resolver implements the historical version finder (C3) and
// package resolver (C4): locating the exact historical bytecode a
// transaction executed against, and assembling the full package graph —
// modules, versions, and the upgrade-linkage aliases between them —
// reachable from a root set of addresses.
package resolver

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

// Package is the resolved on-chain package data described in §3: where
// it currently lives (StorageID), its stable cross-upgrade identity
// (OriginalID), its version, its modules, and its linkage table mapping
// each dependency's original address to the upgraded address currently
// in use.
type Package struct {
	StorageID  object.Address
	OriginalID object.Address
	Version    uint64
	Modules    map[string][]byte
	Linkage    map[object.Address]object.Address
}

// ModuleSelfAddress recovers a compiled module's self-address — the
// address the module's bytecode declares as its own home, which for an
// upgraded package differs from StorageID. Module bytecode parsing is
// the Move VM's concern (§6's black-box VM contract already parses
// modules to load them); this narrow capability lets the resolver reuse
// that parsing without owning a Move bytecode format implementation of
// its own (§9: polymorphism captured by narrow capabilities, not
// inheritance).
type ModuleSelfAddress func(moduleBytes []byte) (object.Address, error)

// ModuleDependencies extracts every address a module's bytecode
// references (import handles), letting the resolver discover the
// dependency frontier of §4.4 step 4.
type ModuleDependencies func(moduleBytes []byte) ([]object.Address, error)

// PackageSource is the chain-data transport capability (§6) the
// resolver fetches raw package bytes through. version == nil requests
// the latest version.
type PackageSource interface {
	FetchPackage(storageID object.Address, version *uint64) (*FetchedPackage, error)
}

// FetchedPackage is what a PackageSource returns for one storage
// address at one version: raw module bytes keyed by module name, plus
// whatever linkage table the chain recorded for that version.
type FetchedPackage struct {
	StorageID object.Address
	Version   uint64
	Modules   map[string][]byte
	Linkage   map[object.Address]object.Address
}
