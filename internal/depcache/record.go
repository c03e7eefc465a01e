// Package depcache implements C10: the append-oriented, one-file-per-
// digest dependency record the engine writes after replaying a
// transaction, recording what was actually needed — packages, input
// objects, dynamic-field children, address aliases, and fetch
// statistics — so a later replay of the same transaction can skip
// rediscovery (§6's persisted dependency record, supplemented by
// original_source/src/cache/dependency.rs's discovery/fetch-method
// taxonomy).
package depcache

// Discovery records how a package dependency was found.
type Discovery string

const (
	DiscoveryTransactionReference Discovery = "transaction_reference"
	DiscoveryExecutionDiscovery   Discovery = "execution_discovery"
	DiscoveryTransitiveDependency Discovery = "transitive_dependency"
	DiscoveryCached               Discovery = "cached"
)

// FetchMethod records how an object or dynamic field was fetched.
// BinarySearch carries the iteration count so an expensive lookup is
// identifiable and cacheable across replays even when its outcome was
// otherwise unremarkable.
type FetchMethod struct {
	Kind       string `json:"kind"`
	Iterations uint32 `json:"iterations,omitempty"`
}

const (
	FetchDirect              = "direct"
	FetchGRPCTransactionData = "grpc_transaction_data"
	FetchBinarySearch        = "binary_search"
	FetchHistoricalArchive   = "historical_archive"
	FetchCurrentFallback     = "current_fallback"
	FetchCache               = "cache"
)

func Direct() FetchMethod              { return FetchMethod{Kind: FetchDirect} }
func GRPCTransactionData() FetchMethod { return FetchMethod{Kind: FetchGRPCTransactionData} }
func BinarySearch(iterations uint32) FetchMethod {
	return FetchMethod{Kind: FetchBinarySearch, Iterations: iterations}
}
func HistoricalArchive() FetchMethod { return FetchMethod{Kind: FetchHistoricalArchive} }
func CurrentFallback() FetchMethod   { return FetchMethod{Kind: FetchCurrentFallback} }
func Cache() FetchMethod             { return FetchMethod{Kind: FetchCache} }

// PackageDependency is one package the replay needed.
type PackageDependency struct {
	Address         string    `json:"address"`
	Discovery       Discovery `json:"discovery"`
	Version         *uint64   `json:"version,omitempty"`
	OriginalAddress *string   `json:"original_address,omitempty"`
	ModuleNames     []string  `json:"modules,omitempty"`
}

// ObjectDependency is one object the replay needed as a transaction
// input.
type ObjectDependency struct {
	Address     string      `json:"address"`
	Version     uint64      `json:"version"`
	Type        *string     `json:"type,omitempty"`
	FetchMethod FetchMethod `json:"fetch_method"`
	IsShared    bool        `json:"is_shared"`
}

// DynamicFieldDependency is one dynamic-field child the replay
// accessed.
type DynamicFieldDependency struct {
	Parent      string      `json:"parent"`
	Child       string      `json:"child"`
	KeyType     string      `json:"key_type"`
	KeyValue    *string     `json:"key_value,omitempty"`
	ChildType   *string     `json:"child_type,omitempty"`
	Version     uint64      `json:"version"`
	FetchMethod FetchMethod `json:"fetch_method"`
}

// FetchStats summarizes a record's fetch activity for quick filtering
// without re-walking every slice (§6, `AggregateStats`/`find_expensive`
// style queries).
type FetchStats struct {
	PackagesLoaded               uint32 `json:"packages_loaded"`
	PackagesFromRetry            uint32 `json:"packages_from_retry"`
	ObjectsFetched                uint32 `json:"objects_fetched"`
	ObjectsBinarySearched         uint32 `json:"objects_binary_searched"`
	TotalBinarySearchIterations   uint32 `json:"total_binary_search_iterations"`
	DynamicFieldsAccessed        uint32 `json:"dynamic_fields_accessed"`
	DynamicFieldsHistorical      uint32 `json:"dynamic_fields_historical"`
	DynamicFieldsFallback        uint32 `json:"dynamic_fields_fallback"`
}

// Record is the full persisted dependency record for one transaction
// digest, matching §6's JSON shape exactly.
type Record struct {
	Digest          string                    `json:"digest"`
	Checkpoint      *uint64                   `json:"checkpoint,omitempty"`
	Sender          *string                   `json:"sender,omitempty"`
	Packages        []PackageDependency       `json:"packages"`
	InputObjects    []ObjectDependency        `json:"input_objects"`
	DynamicFields   []DynamicFieldDependency  `json:"dynamic_fields"`
	AddressAliases  map[string]string         `json:"address_aliases"`
	FetchStats      FetchStats                `json:"fetch_stats"`
	RecordedAt      uint64                    `json:"recorded_at"`
	ReplaySuccessful bool                     `json:"replay_successful"`
	RetriesNeeded   uint32                    `json:"retries_needed"`
}

// HadExpensiveFetches reports whether this record required a retry,
// binary search, or fallback fetch anywhere.
func (r *Record) HadExpensiveFetches() bool {
	return r.FetchStats.PackagesFromRetry > 0 ||
		r.FetchStats.ObjectsBinarySearched > 0 ||
		r.FetchStats.DynamicFieldsFallback > 0
}
