package depcache

// Recorder accumulates a Record during a single replay, the way a
// session-local builder is used rather than mutating the persisted
// shape directly; Finish hands back the immutable result.
type Recorder struct {
	rec Record

	now func() uint64
}

// NewRecorder starts a fresh record for one transaction digest. now
// supplies the Unix timestamp RecordedAt is stamped with at Finish —
// injected rather than read from the clock directly, since this
// package's callers (and this repo's no-toolchain build constraint)
// must never depend on wall-clock time inside a replay.
func NewRecorder(digest string, now func() uint64) *Recorder {
	return &Recorder{
		rec: Record{
			Digest:         digest,
			Packages:       nil,
			InputObjects:   nil,
			DynamicFields:  nil,
			AddressAliases: map[string]string{},
		},
		now: now,
	}
}

func (r *Recorder) SetCheckpoint(cp uint64) { r.rec.Checkpoint = &cp }
func (r *Recorder) SetSender(sender string) { r.rec.Sender = &sender }

// RecordPackage adds a package dependency, deduplicating by address and
// counting retries the way the original's `add_package` does.
func (r *Recorder) RecordPackage(address string, discovery Discovery) {
	r.RecordPackageFull(address, discovery, nil, nil, nil)
}

// RecordPackageFull adds or updates a package dependency with full
// detail, matching `add_package_full`'s update-in-place semantics.
func (r *Recorder) RecordPackageFull(address string, discovery Discovery, version *uint64, originalAddress *string, moduleNames []string) {
	for i := range r.rec.Packages {
		p := &r.rec.Packages[i]
		if p.Address != address {
			continue
		}
		if version != nil {
			p.Version = version
		}
		if originalAddress != nil {
			p.OriginalAddress = originalAddress
		}
		if len(moduleNames) > 0 {
			p.ModuleNames = moduleNames
		}
		return
	}

	r.rec.Packages = append(r.rec.Packages, PackageDependency{
		Address:         address,
		Discovery:       discovery,
		Version:         version,
		OriginalAddress: originalAddress,
		ModuleNames:     moduleNames,
	})
	r.rec.FetchStats.PackagesLoaded++
	if discovery == DiscoveryExecutionDiscovery {
		r.rec.FetchStats.PackagesFromRetry++
	}
}

// RecordObject adds an object dependency, deduplicating by
// (address, version) and tracking binary-search iteration stats.
func (r *Recorder) RecordObject(address string, version uint64, typeString *string, method FetchMethod, isShared bool) {
	for _, o := range r.rec.InputObjects {
		if o.Address == address && o.Version == version {
			return
		}
	}
	if method.Kind == FetchBinarySearch {
		r.rec.FetchStats.ObjectsBinarySearched++
		r.rec.FetchStats.TotalBinarySearchIterations += method.Iterations
	}
	r.rec.InputObjects = append(r.rec.InputObjects, ObjectDependency{
		Address:     address,
		Version:     version,
		Type:        typeString,
		FetchMethod: method,
		IsShared:    isShared,
	})
	r.rec.FetchStats.ObjectsFetched++
}

// RecordDynamicField adds a dynamic-field dependency, deduplicating by
// child ID.
func (r *Recorder) RecordDynamicField(parent, child, keyType string, keyValue, childType *string, version uint64, method FetchMethod) {
	for _, df := range r.rec.DynamicFields {
		if df.Child == child {
			return
		}
	}
	switch method.Kind {
	case FetchHistoricalArchive, FetchGRPCTransactionData:
		r.rec.FetchStats.DynamicFieldsHistorical++
	case FetchCurrentFallback:
		r.rec.FetchStats.DynamicFieldsFallback++
	}
	r.rec.DynamicFields = append(r.rec.DynamicFields, DynamicFieldDependency{
		Parent:      parent,
		Child:       child,
		KeyType:     keyType,
		KeyValue:    keyValue,
		ChildType:   childType,
		Version:     version,
		FetchMethod: method,
	})
	r.rec.FetchStats.DynamicFieldsAccessed++
}

// RecordAlias records an on-chain-to-bytecode address alias, skipping
// the no-op case where both sides already agree.
func (r *Recorder) RecordAlias(onChain, bytecode string) {
	if onChain == bytecode {
		return
	}
	r.rec.AddressAliases[onChain] = bytecode
}

func (r *Recorder) RecordRetry()        { r.rec.RetriesNeeded++ }
func (r *Recorder) MarkSuccessful()     { r.rec.ReplaySuccessful = true }
func (r *Recorder) Stats() FetchStats   { return r.rec.FetchStats }
func (r *Recorder) HadExpensiveFetches() bool { return r.rec.HadExpensiveFetches() }

// Finish stamps RecordedAt and returns the completed record.
func (r *Recorder) Finish() Record {
	r.rec.RecordedAt = r.now()
	return r.rec
}
