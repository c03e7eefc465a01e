package vmhost

import (
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// ModuleKey identifies one compiled module by the address its package
// lives at and its module name — the VM's module-loading key per §6.
type ModuleKey struct {
	Address object.Address
	Name    string
}

// ModuleResolver is the VM's module table. Install overwrites an
// existing entry, so installing packages in ascending package-version
// order (§4.10 step 7) lets later writes win any alias collision. No
// code in this repository installs into it outside tests, and the
// replay engine's MoveCall/Publish/Upgrade handling does not consult it.
type ModuleResolver struct {
	modules map[ModuleKey][]byte
}

func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{modules: map[ModuleKey][]byte{}}
}

// Install registers (or overwrites) one module's bytecode under addr.
func (r *ModuleResolver) Install(addr object.Address, name string, bytes []byte) {
	r.modules[ModuleKey{Address: addr, Name: name}] = bytes
}

// Lookup returns a module's bytecode, or ok=false if nothing was
// installed under that key.
func (r *ModuleResolver) Lookup(addr object.Address, name string) ([]byte, bool) {
	b, ok := r.modules[ModuleKey{Address: addr, Name: name}]
	return b, ok
}

// MustLookup is Lookup with an error instead of a bool, for call sites
// that treat a missing module as a hard failure (e.g. a MoveCall whose
// package the resolver never reached).
func (r *ModuleResolver) MustLookup(addr object.Address, name string) ([]byte, error) {
	b, ok := r.Lookup(addr, name)
	if !ok {
		return nil, fmt.Errorf("vmhost: module %s::%s not loaded", addr, name)
	}
	return b, nil
}

// Len reports how many modules are currently installed.
func (r *ModuleResolver) Len() int { return len(r.modules) }
