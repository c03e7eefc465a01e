package depcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Store persists one JSON file per transaction digest under a cache
// directory (§6). Writes to distinct digest files are safe from
// concurrent callers without additional locking — this mirrors
// `core/ledger.go`'s append-friendly WAL directory layout, simplified
// here to one complete record per file rather than a replayed log,
// since a dependency record is write-once-then-read rather than an
// incrementally replayed sequence of entries.
type Store struct {
	dir    string
	log    *logrus.Logger
	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewStore creates (if needed) the cache directory and returns a Store
// bound to it. log may be nil, in which case a JSON-formatted logger
// writing to stderr is used, matching `system_health_logging.go`'s
// formatter choice.
func NewStore(dir string, log *logrus.Logger, reg *prometheus.Registry) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("depcache: create cache dir: %w", err)
	}
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	s := &Store{
		dir: dir,
		log: log,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_depcache_hits_total",
			Help: "Dependency records served from cache without re-discovery.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_depcache_misses_total",
			Help: "Dependency lookups that found no cached record for the digest.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.hits, s.misses)
	}
	return s, nil
}

func (s *Store) path(digest string) string {
	return filepath.Join(s.dir, digest+".deps.json")
}

// Has reports whether a record is cached for digest.
func (s *Store) Has(digest string) bool {
	_, err := os.Stat(s.path(digest))
	return err == nil
}

// Load reads the cached record for digest.
func (s *Store) Load(digest string) (*Record, error) {
	b, err := os.ReadFile(s.path(digest))
	if err != nil {
		s.misses.Inc()
		return nil, fmt.Errorf("depcache: load %s: %w", digest, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("depcache: decode %s: %w", digest, err)
	}
	s.hits.Inc()
	return &rec, nil
}

// Save persists rec, overwriting any existing record for the same
// digest.
func (s *Store) Save(rec *Record) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("depcache: encode %s: %w", rec.Digest, err)
	}
	if err := os.WriteFile(s.path(rec.Digest), b, 0o644); err != nil {
		return fmt.Errorf("depcache: write %s: %w", rec.Digest, err)
	}
	s.log.WithFields(logrus.Fields{
		"digest":    rec.Digest,
		"packages":  len(rec.Packages),
		"objects":   len(rec.InputObjects),
		"successful": rec.ReplaySuccessful,
	}).Info("depcache: saved dependency record")
	return nil
}

// List returns every cached digest.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("depcache: list %s: %w", s.dir, err)
	}
	var digests []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".deps.json") {
			digests = append(digests, strings.TrimSuffix(name, ".deps.json"))
		}
	}
	return digests, nil
}

// Count returns the number of cached records.
func (s *Store) Count() int {
	digests, err := s.List()
	if err != nil {
		return 0
	}
	return len(digests)
}

// FindByPackage returns every cached digest whose record lists
// packageAddress among its packages.
func (s *Store) FindByPackage(packageAddress string) ([]string, error) {
	digests, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, digest := range digests {
		rec, err := s.Load(digest)
		if err != nil {
			continue
		}
		for _, p := range rec.Packages {
			if p.Address == packageAddress {
				out = append(out, digest)
				break
			}
		}
	}
	return out, nil
}

// FindExpensive returns every cached digest whose record required a
// retry, binary search, or fallback fetch.
func (s *Store) FindExpensive() ([]string, error) {
	digests, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, digest := range digests {
		rec, err := s.Load(digest)
		if err != nil {
			continue
		}
		if rec.HadExpensiveFetches() {
			out = append(out, digest)
		}
	}
	return out, nil
}

// AggregateStats summarizes every cached record, matching
// original_source's `AggregateStats`/`aggregate_stats` for building a
// prefetch plan across many replays. Callers must serialize concurrent
// calls externally (§5's caching rule).
type AggregateStats struct {
	TotalTransactions            int
	SuccessfulReplays            int
	TotalPackages                int
	TotalObjects                 int
	TotalDynamicFields           int
	TotalRetries                 int
	TotalBinarySearchIterations  int
	PackagesFromRetry            int
}

func (s *Store) Aggregate() (AggregateStats, error) {
	var stats AggregateStats
	digests, err := s.List()
	if err != nil {
		return stats, err
	}
	for _, digest := range digests {
		rec, err := s.Load(digest)
		if err != nil {
			continue
		}
		stats.TotalTransactions++
		if rec.ReplaySuccessful {
			stats.SuccessfulReplays++
		}
		stats.TotalPackages += len(rec.Packages)
		stats.TotalObjects += len(rec.InputObjects)
		stats.TotalDynamicFields += len(rec.DynamicFields)
		stats.TotalRetries += int(rec.RetriesNeeded)
		stats.TotalBinarySearchIterations += int(rec.FetchStats.TotalBinarySearchIterations)
		for _, p := range rec.Packages {
			if p.Discovery == DiscoveryExecutionDiscovery {
				stats.PackagesFromRetry++
			}
		}
	}
	return stats, nil
}
