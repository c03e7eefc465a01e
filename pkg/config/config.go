// Package config provides a reusable loader for the replay engine's
// configuration files and environment variables. It is versioned so
// that applications can depend on a stable API contract.
//
// Version: v0.2.0
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.2.0"

// Profile names a prefetch tuning profile (§6). It is carried in Config
// only: no code in this repository reads it, and Default sets depth 3
// and limit 200 whatever the profile.
type Profile string

const (
	ProfileSafe     Profile = "safe"
	ProfileBalanced Profile = "balanced"
	ProfileFast     Profile = "fast"
)

// FetchStrategy names whether on-demand hydration is allowed during
// execution (§6). It is carried in Config only; no code in this
// repository reads it, so FetchEager does not switch hydration off.
type FetchStrategy string

const (
	FetchEager FetchStrategy = "eager"
	FetchFull  FetchStrategy = "full"
)

// Source names the transport mix for the chain-data fetchers (§6). It is
// carried in Config only; no code in this repository reads it.
type Source string

const (
	SourceHybrid Source = "hybrid"
	SourceGRPC   Source = "grpc"
	SourceWalrus Source = "walrus"
	SourceLocal  Source = "local"
)

// Config is the unified configuration for one replay engine instance. It
// mirrors the structure of the YAML files under cmd/replay/config, in
// the same viper-backed shape the teacher's config loader used.
type Config struct {
	Engine struct {
		Profile               Profile       `mapstructure:"profile" json:"profile"`
		FetchStrategy         FetchStrategy `mapstructure:"fetch_strategy" json:"fetch_strategy"`
		AllowFallback         bool          `mapstructure:"allow_fallback" json:"allow_fallback"`
		PrefetchDepth         uint32        `mapstructure:"prefetch_depth" json:"prefetch_depth"`
		PrefetchLimit         uint32        `mapstructure:"prefetch_limit" json:"prefetch_limit"`
		AutoSystemObjects     bool          `mapstructure:"auto_system_objects" json:"auto_system_objects"`
		NoPrefetch            bool          `mapstructure:"no_prefetch" json:"no_prefetch"`
		Compare               bool          `mapstructure:"compare" json:"compare"`
		AnalyzeOnly           bool          `mapstructure:"analyze_only" json:"analyze_only"`
		VMOnly                bool          `mapstructure:"vm_only" json:"vm_only"`
		SynthesizeMissing     bool          `mapstructure:"synthesize_missing" json:"synthesize_missing"`
		SelfHealDynamicFields bool          `mapstructure:"self_heal_dynamic_fields" json:"self_heal_dynamic_fields"`
		AnalyzeMM2            bool          `mapstructure:"analyze_mm2" json:"analyze_mm2"`
	} `mapstructure:"engine" json:"engine"`

	Transport struct {
		Source           Source `mapstructure:"source" json:"source"`
		GRPCEndpoint     string `mapstructure:"grpc_endpoint" json:"grpc_endpoint"`
		RequestTimeoutMS int    `mapstructure:"request_timeout_ms" json:"request_timeout_ms"`
	} `mapstructure:"transport" json:"transport"`

	Cache struct {
		DependencyCacheDir string `mapstructure:"dependency_cache_dir" json:"dependency_cache_dir"`
		PackageCacheSize   int    `mapstructure:"package_cache_size" json:"package_cache_size"`
		VersionCacheSize   int    `mapstructure:"version_cache_size" json:"version_cache_size"`
	} `mapstructure:"cache" json:"cache"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// Default returns the configuration §6 implies when nothing is
// overridden: balanced profile, full (lazy) hydration allowed, fallback
// permitted, depth 3, limit 200.
func Default() Config {
	var c Config
	c.Engine.Profile = ProfileBalanced
	c.Engine.FetchStrategy = FetchFull
	c.Engine.AllowFallback = true
	c.Engine.PrefetchDepth = 3
	c.Engine.PrefetchLimit = 200
	c.Transport.Source = SourceHybrid
	c.Transport.RequestTimeoutMS = 5000
	c.Cache.PackageCacheSize = 256
	c.Cache.VersionCacheSize = 256
	c.Logging.Level = "info"
	return c
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig = Default()

// Load reads configuration files and merges any environment-specific
// overrides, following the teacher's
// viper.SetConfigName/AddConfigPath/MergeInConfig + AutomaticEnv
// sequence. The resulting configuration is stored in AppConfig and
// returned. If env is empty, only the default configuration file is
// loaded.
func Load(env string) (*Config, error) {
	cfg := Default()

	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/replay/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // no env prefix is set; REPLAY_* overrides are applied below

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}

	// Nested mapstructure fields aren't reached by viper.AutomaticEnv()
	// without an explicit key replacer, so the handful of numeric knobs
	// operators most commonly tune get their own direct env overrides.
	cfg.Transport.RequestTimeoutMS = utils.EnvOrDefaultInt("REPLAY_REQUEST_TIMEOUT_MS", cfg.Transport.RequestTimeoutMS)
	cfg.Cache.PackageCacheSize = utils.EnvOrDefaultInt("REPLAY_PACKAGE_CACHE_SIZE", cfg.Cache.PackageCacheSize)
	cfg.Cache.VersionCacheSize = utils.EnvOrDefaultInt("REPLAY_VERSION_CACHE_SIZE", cfg.Cache.VersionCacheSize)

	AppConfig = cfg
	return &cfg, nil
}

// LoadFromEnv loads configuration using the REPLAY_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("REPLAY_ENV", ""))
}
