// Package kernelconfig holds the kernel's recognised configuration options
// (spec §6) and loads them the way the rest of the codebase loads
// configuration: viper, with defaults, a YAML file, and WALLKERNEL_-prefixed
// environment overrides.
//
// Unlike the backend's config package the kernel never touches the global
// viper singleton: every call to Load builds its own *viper.Viper so that
// multiple kernel instances (or tests) never fight over global state.
package kernelconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ReportingLevel controls how much detail a ValidationReport carries.
type ReportingLevel string

const (
	ReportingMinimal       ReportingLevel = "minimal"
	ReportingNormal        ReportingLevel = "normal"
	ReportingComprehensive ReportingLevel = "comprehensive"
)

// Options holds every configuration knob the kernel's components read, per
// spec §6.
type Options struct {
	Tolerance                float64        `mapstructure:"tolerance" yaml:"tolerance" json:"tolerance"`
	MaxComplexity            float64        `mapstructure:"max_complexity" yaml:"max_complexity" json:"max_complexity"`
	MiterLimit               float64        `mapstructure:"miter_limit" yaml:"miter_limit" json:"miter_limit"`
	ExtremeAngleThresholdDeg float64        `mapstructure:"extreme_angle_threshold_deg" yaml:"extreme_angle_threshold_deg" json:"extreme_angle_threshold_deg"`
	ParallelOverlapThreshold float64        `mapstructure:"parallel_overlap_threshold" yaml:"parallel_overlap_threshold" json:"parallel_overlap_threshold"`
	EnableParallelProcessing bool           `mapstructure:"enable_parallel_processing" yaml:"enable_parallel_processing" json:"enable_parallel_processing"`
	SpatialIndexingEnabled   bool           `mapstructure:"spatial_indexing_enabled" yaml:"spatial_indexing_enabled" json:"spatial_indexing_enabled"`
	OptimizationEnabled      bool           `mapstructure:"optimization_enabled" yaml:"optimization_enabled" json:"optimization_enabled"`
	EnableAutoRecovery       bool           `mapstructure:"enable_auto_recovery" yaml:"enable_auto_recovery" json:"enable_auto_recovery"`
	MaxRecoveryAttempts      int            `mapstructure:"max_recovery_attempts" yaml:"max_recovery_attempts" json:"max_recovery_attempts"`
	QualityThreshold         float64        `mapstructure:"quality_threshold" yaml:"quality_threshold" json:"quality_threshold"`
	FailFast                 bool           `mapstructure:"fail_fast" yaml:"fail_fast" json:"fail_fast"`
	ReportingLevel           ReportingLevel `mapstructure:"reporting_level" yaml:"reporting_level" json:"reporting_level"`
	EnablePreValidation      bool           `mapstructure:"enable_pre_validation" yaml:"enable_pre_validation" json:"enable_pre_validation"`
	EnablePostValidation     bool           `mapstructure:"enable_post_validation" yaml:"enable_post_validation" json:"enable_post_validation"`

	CacheMaxEntries       int           `mapstructure:"cache_max_entries" yaml:"cache_max_entries" json:"cache_max_entries"`
	CacheMaxMemoryMB      int           `mapstructure:"cache_max_memory_mb" yaml:"cache_max_memory_mb" json:"cache_max_memory_mb"`
	CacheTTL              time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"`
	CacheCleanupInterval  time.Duration `mapstructure:"cache_cleanup_interval" yaml:"cache_cleanup_interval" json:"cache_cleanup_interval"`
	CacheEnableStatistics bool          `mapstructure:"cache_enable_statistics" yaml:"cache_enable_statistics" json:"cache_enable_statistics"`
}

// Default returns the kernel's built-in defaults, matching spec §4 constants
// (base tolerance 1e-6, miter limit 10, etc.).
func Default() Options {
	return Options{
		Tolerance:                1e-6,
		MaxComplexity:            100000,
		MiterLimit:               10.0,
		ExtremeAngleThresholdDeg: 15.0,
		ParallelOverlapThreshold: 0.8,
		EnableParallelProcessing: false,
		SpatialIndexingEnabled:   true,
		OptimizationEnabled:      true,
		EnableAutoRecovery:       true,
		MaxRecoveryAttempts:      3,
		QualityThreshold:         0.7,
		FailFast:                 false,
		ReportingLevel:           ReportingNormal,
		EnablePreValidation:      true,
		EnablePostValidation:     true,

		CacheMaxEntries:       5000,
		CacheMaxMemoryMB:      64,
		CacheTTL:              30 * time.Minute,
		CacheCleanupInterval:  5 * time.Minute,
		CacheEnableStatistics: true,
	}
}

// Load reads kernel configuration from (in order of increasing precedence)
// built-in defaults, an optional kernel.yaml, and WALLKERNEL_-prefixed
// environment variables.
func Load(configPaths ...string) (Options, error) {
	v := viper.New()
	defaults := Default()

	v.SetDefault("tolerance", defaults.Tolerance)
	v.SetDefault("max_complexity", defaults.MaxComplexity)
	v.SetDefault("miter_limit", defaults.MiterLimit)
	v.SetDefault("extreme_angle_threshold_deg", defaults.ExtremeAngleThresholdDeg)
	v.SetDefault("parallel_overlap_threshold", defaults.ParallelOverlapThreshold)
	v.SetDefault("enable_parallel_processing", defaults.EnableParallelProcessing)
	v.SetDefault("spatial_indexing_enabled", defaults.SpatialIndexingEnabled)
	v.SetDefault("optimization_enabled", defaults.OptimizationEnabled)
	v.SetDefault("enable_auto_recovery", defaults.EnableAutoRecovery)
	v.SetDefault("max_recovery_attempts", defaults.MaxRecoveryAttempts)
	v.SetDefault("quality_threshold", defaults.QualityThreshold)
	v.SetDefault("fail_fast", defaults.FailFast)
	v.SetDefault("reporting_level", string(defaults.ReportingLevel))
	v.SetDefault("enable_pre_validation", defaults.EnablePreValidation)
	v.SetDefault("enable_post_validation", defaults.EnablePostValidation)
	v.SetDefault("cache_max_entries", defaults.CacheMaxEntries)
	v.SetDefault("cache_max_memory_mb", defaults.CacheMaxMemoryMB)
	v.SetDefault("cache_ttl", defaults.CacheTTL.String())
	v.SetDefault("cache_cleanup_interval", defaults.CacheCleanupInterval.String())
	v.SetDefault("cache_enable_statistics", defaults.CacheEnableStatistics)

	v.SetConfigName("kernel")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if len(configPaths) == 0 {
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("WALLKERNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Options{}, fmt.Errorf("kernelconfig: reading config file: %w", err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("kernelconfig: unmarshaling config: %w", err)
	}

	if err := validate(&opts); err != nil {
		return Options{}, fmt.Errorf("kernelconfig: %w", err)
	}

	return opts, nil
}

func validate(o *Options) error {
	if o.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", o.Tolerance)
	}
	if o.MiterLimit <= 0 {
		return fmt.Errorf("miter_limit must be positive, got %v", o.MiterLimit)
	}
	if o.MaxRecoveryAttempts < 0 {
		return fmt.Errorf("max_recovery_attempts must be >= 0, got %d", o.MaxRecoveryAttempts)
	}
	switch o.ReportingLevel {
	case ReportingMinimal, ReportingNormal, ReportingComprehensive:
	default:
		return fmt.Errorf("unknown reporting_level %q", o.ReportingLevel)
	}
	return nil
}
