// Package metrics exposes the replay engine's prometheus counters and
// histograms: commands succeeded, retries needed, and cache hits/misses,
// matching the "observational ledger + gauges" shape
// core/system_health_logging.go pairs a logrus JSON log with a
// prometheus.Registry for, adapted from per-node health stats to
// per-replay / per-process replay stats (C9/C10).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Replay bundles every counter/histogram the engine updates during and
// after a replay. A single Replay is shared by every replay run in a
// process, the way HealthLogger shares one registry across the
// lifetime of a node.
type Replay struct {
	registry *prometheus.Registry

	replaysTotal        prometheus.Counter
	replaysSucceeded    prometheus.Counter
	commandsSucceeded   prometheus.Counter
	commandsFailed      prometheus.Counter
	retriesTotal        prometheus.Counter
	hydrationGapsTotal  prometheus.Counter
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	groundTruthObjects  prometheus.Counter
	mm2Objects          prometheus.Counter
	onDemandObjects     prometheus.Counter
	replayDuration      prometheus.Histogram
	versionSearchProbes prometheus.Histogram
}

// New builds a Replay metrics bundle and registers every collector with
// reg. reg may be nil, in which case a fresh private registry is used,
// so two bundles built with nil never collide on metric names.
func New(reg *prometheus.Registry) *Replay {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Replay{
		registry: reg,
		replaysTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_transactions_total",
			Help: "Total number of transactions replayed.",
		}),
		replaysSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_transactions_succeeded_total",
			Help: "Replays that completed with local_success = true.",
		}),
		commandsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_commands_succeeded_total",
			Help: "PTB commands that executed without error across all replays.",
		}),
		commandsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_commands_failed_total",
			Help: "PTB commands that aborted across all replays.",
		}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_retries_total",
			Help: "Bounded-backoff retries issued against chain-data transports.",
		}),
		hydrationGapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_hydration_gaps_total",
			Help: "Required inputs or children unavailable after every fetch strategy.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_dependency_cache_hits_total",
			Help: "Dependency records served from the on-disk cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_dependency_cache_misses_total",
			Help: "Dependency lookups that found no cached record.",
		}),
		groundTruthObjects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_objects_ground_truth_total",
			Help: "Dynamic-field children resolved by ground-truth prefetch (layer 1).",
		}),
		mm2Objects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_objects_mm2_total",
			Help: "Dynamic-field children resolved by MM2 prediction (layer 2).",
		}),
		onDemandObjects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_objects_on_demand_total",
			Help: "Dynamic-field children resolved by on-demand hydration (layer 3).",
		}),
		replayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "replay_duration_seconds",
			Help:    "Wall-clock duration of a single replay, start to ReplayResult.",
			Buckets: prometheus.DefBuckets,
		}),
		versionSearchProbes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "replay_version_finder_probes",
			Help:    "Iterations taken by the historical version finder per lookup.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 50, 100},
		}),
	}
	reg.MustRegister(
		m.replaysTotal, m.replaysSucceeded,
		m.commandsSucceeded, m.commandsFailed,
		m.retriesTotal, m.hydrationGapsTotal,
		m.cacheHits, m.cacheMisses,
		m.groundTruthObjects, m.mm2Objects, m.onDemandObjects,
		m.replayDuration, m.versionSearchProbes,
	)
	return m
}

func (m *Replay) Registry() *prometheus.Registry { return m.registry }

func (m *Replay) ObserveReplay(succeeded bool, durationSeconds float64) {
	m.replaysTotal.Inc()
	if succeeded {
		m.replaysSucceeded.Inc()
	}
	m.replayDuration.Observe(durationSeconds)
}

func (m *Replay) CommandSucceeded() { m.commandsSucceeded.Inc() }
func (m *Replay) CommandFailed()    { m.commandsFailed.Inc() }
func (m *Replay) Retry()            { m.retriesTotal.Inc() }
func (m *Replay) HydrationGap()     { m.hydrationGapsTotal.Inc() }
func (m *Replay) CacheHit()         { m.cacheHits.Inc() }
func (m *Replay) CacheMiss()        { m.cacheMisses.Inc() }
func (m *Replay) GroundTruthObject(n int) { m.groundTruthObjects.Add(float64(n)) }
func (m *Replay) MM2Object(n int)         { m.mm2Objects.Add(float64(n)) }
func (m *Replay) OnDemandObject()         { m.onDemandObjects.Inc() }
func (m *Replay) VersionSearchProbes(n int) { m.versionSearchProbes.Observe(float64(n)) }
