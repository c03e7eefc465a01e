package depcache

import (
	"path/filepath"
	"testing"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/testutil"
)

func testNow() func() uint64 {
	return func() uint64 { return 1234567890 }
}

// newSandboxDir gives each Store test its own isolated cache directory,
// cleaned up automatically, via the shared testutil.Sandbox rather than
// t.TempDir() directly — Store is the one component that actually writes
// a cache directory to disk, so it is the sandbox's natural home.
func newSandboxDir(t *testing.T) string {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("new sandbox: %v", err)
	}
	t.Cleanup(func() {
		if err := sb.Cleanup(); err != nil {
			t.Errorf("sandbox cleanup: %v", err)
		}
	})
	return sb.Root
}

func TestRecorderDedupsPackagesObjectsAndFields(t *testing.T) {
	rec := NewRecorder("digestA", testNow())
	rec.RecordPackage("0x2", DiscoveryTransactionReference)
	rec.RecordPackage("0x2", DiscoveryTransactionReference)
	rec.RecordObject("0x10", 5, nil, Direct(), false)
	rec.RecordObject("0x10", 5, nil, Direct(), false)
	rec.RecordDynamicField("0x10", "0x11", "u64", nil, nil, 5, HistoricalArchive())
	rec.RecordDynamicField("0x10", "0x11", "u64", nil, nil, 5, HistoricalArchive())

	out := rec.Finish()
	if len(out.Packages) != 1 {
		t.Fatalf("expected 1 package after dedup, got %d", len(out.Packages))
	}
	if len(out.InputObjects) != 1 {
		t.Fatalf("expected 1 object after dedup, got %d", len(out.InputObjects))
	}
	if len(out.DynamicFields) != 1 {
		t.Fatalf("expected 1 dynamic field after dedup, got %d", len(out.DynamicFields))
	}
	if out.FetchStats.PackagesLoaded != 1 || out.FetchStats.ObjectsFetched != 1 || out.FetchStats.DynamicFieldsAccessed != 1 {
		t.Fatalf("unexpected fetch stats: %+v", out.FetchStats)
	}
	if out.RecordedAt != 1234567890 {
		t.Fatalf("expected injected clock value, got %d", out.RecordedAt)
	}
}

func TestRecorderTracksRetriesAndBinarySearchIterations(t *testing.T) {
	rec := NewRecorder("digestB", testNow())
	rec.RecordPackage("0x3", DiscoveryExecutionDiscovery)
	rec.RecordObject("0x20", 1, nil, BinarySearch(6), false)
	rec.RecordRetry()
	rec.RecordRetry()
	rec.MarkSuccessful()

	out := rec.Finish()
	if out.FetchStats.PackagesFromRetry != 1 {
		t.Fatalf("expected 1 package from retry, got %d", out.FetchStats.PackagesFromRetry)
	}
	if out.FetchStats.ObjectsBinarySearched != 1 || out.FetchStats.TotalBinarySearchIterations != 6 {
		t.Fatalf("unexpected binary search stats: %+v", out.FetchStats)
	}
	if out.RetriesNeeded != 2 {
		t.Fatalf("expected 2 retries, got %d", out.RetriesNeeded)
	}
	if !out.ReplaySuccessful {
		t.Fatalf("expected replay marked successful")
	}
	if !out.HadExpensiveFetches() {
		t.Fatalf("expected HadExpensiveFetches true due to retry+binary search")
	}
}

func TestRecorderSkipsNoOpAlias(t *testing.T) {
	rec := NewRecorder("digestC", testNow())
	rec.RecordAlias("0x1", "0x1")
	rec.RecordAlias("0x1", "0x2")
	out := rec.Finish()
	if len(out.AddressAliases) != 1 || out.AddressAliases["0x1"] != "0x2" {
		t.Fatalf("unexpected aliases: %+v", out.AddressAliases)
	}
}

func TestStoreSaveLoadRoundTrips(t *testing.T) {
	dir := newSandboxDir(t)
	store, err := NewStore(dir, nil, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	rec := NewRecorder("digestD", testNow())
	rec.RecordPackage("0x2", DiscoveryTransactionReference)
	finished := rec.Finish()

	if store.Has("digestD") {
		t.Fatalf("expected no cached record before save")
	}
	if err := store.Save(&finished); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.Has("digestD") {
		t.Fatalf("expected cached record after save")
	}

	loaded, err := store.Load("digestD")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Digest != "digestD" || len(loaded.Packages) != 1 {
		t.Fatalf("unexpected loaded record: %+v", loaded)
	}

	wantPath := filepath.Join(dir, "digestD.deps.json")
	if store.path("digestD") != wantPath {
		t.Fatalf("unexpected path: %s", store.path("digestD"))
	}
}

func TestStoreListAndCount(t *testing.T) {
	dir := newSandboxDir(t)
	store, err := NewStore(dir, nil, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, digest := range []string{"d1", "d2", "d3"} {
		rec := NewRecorder(digest, testNow())
		finished := rec.Finish()
		if err := store.Save(&finished); err != nil {
			t.Fatalf("save %s: %v", digest, err)
		}
	}
	if store.Count() != 3 {
		t.Fatalf("expected count 3, got %d", store.Count())
	}
	digests, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(digests) != 3 {
		t.Fatalf("expected 3 digests, got %d", len(digests))
	}
}

func TestStoreFindByPackageAndFindExpensive(t *testing.T) {
	dir := newSandboxDir(t)
	store, err := NewStore(dir, nil, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	cheap := NewRecorder("cheap", testNow())
	cheap.RecordPackage("0x2", DiscoveryTransactionReference)
	cheapRec := cheap.Finish()
	if err := store.Save(&cheapRec); err != nil {
		t.Fatalf("save cheap: %v", err)
	}

	expensive := NewRecorder("expensive", testNow())
	expensive.RecordPackage("0x2", DiscoveryTransactionReference)
	expensive.RecordPackage("0x3", DiscoveryExecutionDiscovery)
	expensiveRec := expensive.Finish()
	if err := store.Save(&expensiveRec); err != nil {
		t.Fatalf("save expensive: %v", err)
	}

	byPkg, err := store.FindByPackage("0x2")
	if err != nil {
		t.Fatalf("find by package: %v", err)
	}
	if len(byPkg) != 2 {
		t.Fatalf("expected both records to reference 0x2, got %d", len(byPkg))
	}

	expensiveDigests, err := store.FindExpensive()
	if err != nil {
		t.Fatalf("find expensive: %v", err)
	}
	if len(expensiveDigests) != 1 || expensiveDigests[0] != "expensive" {
		t.Fatalf("expected only 'expensive' record flagged, got %+v", expensiveDigests)
	}
}

func TestStoreAggregate(t *testing.T) {
	dir := newSandboxDir(t)
	store, err := NewStore(dir, nil, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	r1 := NewRecorder("a", testNow())
	r1.RecordPackage("0x2", DiscoveryTransactionReference)
	r1.RecordObject("0x10", 1, nil, Direct(), false)
	r1.MarkSuccessful()
	rec1 := r1.Finish()
	if err := store.Save(&rec1); err != nil {
		t.Fatalf("save a: %v", err)
	}

	r2 := NewRecorder("b", testNow())
	r2.RecordPackage("0x3", DiscoveryExecutionDiscovery)
	r2.RecordObject("0x20", 1, nil, BinarySearch(3), false)
	r2.RecordDynamicField("0x20", "0x21", "u64", nil, nil, 1, HistoricalArchive())
	r2.RecordRetry()
	rec2 := r2.Finish()
	if err := store.Save(&rec2); err != nil {
		t.Fatalf("save b: %v", err)
	}

	stats, err := store.Aggregate()
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if stats.TotalTransactions != 2 {
		t.Fatalf("expected 2 transactions, got %d", stats.TotalTransactions)
	}
	if stats.SuccessfulReplays != 1 {
		t.Fatalf("expected 1 successful replay, got %d", stats.SuccessfulReplays)
	}
	if stats.TotalPackages != 2 || stats.TotalObjects != 2 || stats.TotalDynamicFields != 1 {
		t.Fatalf("unexpected aggregate totals: %+v", stats)
	}
	if stats.TotalRetries != 1 {
		t.Fatalf("expected 1 total retry, got %d", stats.TotalRetries)
	}
	if stats.TotalBinarySearchIterations != 3 {
		t.Fatalf("expected 3 binary search iterations, got %d", stats.TotalBinarySearchIterations)
	}
	if stats.PackagesFromRetry != 1 {
		t.Fatalf("expected 1 package from retry, got %d", stats.PackagesFromRetry)
	}
}
