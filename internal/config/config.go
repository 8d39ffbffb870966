// Package config loads run configuration from a YAML file with REDSHIFT_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-redshift/dsp/resample"
	"github.com/cwbudde/algo-redshift/measure/continuum"
	"github.com/cwbudde/algo-redshift/measure/xcorr"
	"github.com/cwbudde/algo-redshift/spectrum"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid value")

// Config is the top-level run configuration.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Redis     RedisConfig     `yaml:"redis"`
	Continuum ContinuumConfig `yaml:"continuum"`
	Xcorr     XcorrConfig     `yaml:"xcorr"`
	Template  TemplateConfig  `yaml:"template"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Output    OutputConfig    `yaml:"output"`
}

// DataConfig locates the input spectra. Each location is a local path or
// an http(s) URL.
type DataConfig struct {
	Observed    string        `yaml:"observed"`
	Template    string        `yaml:"template"`
	Library     string        `yaml:"library"`
	CacheDir    string        `yaml:"cacheDir"`
	Cache       bool          `yaml:"cache"`
	LockTimeout time.Duration `yaml:"lockTimeout"`
	HTTPTimeout time.Duration `yaml:"httpTimeout"`
}

// RedisConfig configures the optional shared download cache.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ContinuumConfig controls continuum subtraction before matching.
type ContinuumConfig struct {
	Enabled    bool              `yaml:"enabled"`
	Family     string            `yaml:"family"`
	Degree     int               `yaml:"degree"`
	Regions    []spectrum.Region `yaml:"regions"`
	Weighted   bool              `yaml:"weighted"`
	ClipSigma  float64           `yaml:"clipSigma"`
	ClipRounds int               `yaml:"clipRounds"`
}

// XcorrConfig controls the cross-correlation stage.
type XcorrConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Method     string  `yaml:"method"`
	ZMin       float64 `yaml:"zmin"`
	ZMax       float64 `yaml:"zmax"`
	ZStep      float64 `yaml:"zstep"`
	MinOverlap float64 `yaml:"minOverlap"`
}

// Grid returns the lag grid.
func (x XcorrConfig) Grid() xcorr.LagGrid {
	return xcorr.LagGrid{Min: x.ZMin, Max: x.ZMax, Step: x.ZStep}
}

// TemplateConfig controls the template sweep. Redshifts, when set, replace
// the ZMin/ZMax/ZStep range.
type TemplateConfig struct {
	Enabled    bool      `yaml:"enabled"`
	Resampler  string    `yaml:"resampler"`
	Redshifts  []float64 `yaml:"redshifts"`
	ZMin       float64   `yaml:"zmin"`
	ZMax       float64   `yaml:"zmax"`
	ZStep      float64   `yaml:"zstep"`
	Workers    int       `yaml:"workers"`
	MinOverlap float64   `yaml:"minOverlap"`
}

// Trials returns the redshifts to evaluate.
func (t TemplateConfig) Trials() ([]float64, error) {
	if len(t.Redshifts) > 0 {
		return t.Redshifts, nil
	}

	return xcorr.LagGrid{Min: t.ZMin, Max: t.ZMax, Step: t.ZStep}.Values()
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// OutputConfig sets where intermediate spectra are written. An empty Dir
// disables output.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a YAML config file (if provided) and applies environment
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cacheDir := ".redshift-cache"
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		cacheDir = filepath.Join(dir, "algo-redshift")
	}

	grid := xcorr.DefaultGrid()

	return &Config{
		Data: DataConfig{
			CacheDir:    cacheDir,
			Cache:       true,
			LockTimeout: 30 * time.Second,
			HTTPTimeout: 60 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
		Continuum: ContinuumConfig{
			Enabled: true,
			Family:  continuum.Linear.String(),
			Degree:  1,
		},
		Xcorr: XcorrConfig{
			Enabled:    true,
			Method:     "grid",
			ZMin:       grid.Min,
			ZMax:       grid.Max,
			ZStep:      grid.Step,
			MinOverlap: xcorr.DefaultMinOverlap,
		},
		Template: TemplateConfig{
			Enabled:    true,
			Resampler:  resample.MethodFluxConserving.String(),
			ZMin:       grid.Min,
			ZMax:       grid.Max,
			ZStep:      0.01,
			MinOverlap: 0.25,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if _, err := continuum.ParseFamily(c.Continuum.Family); err != nil {
		return fmt.Errorf("%w: continuum.family: %v", ErrInvalid, err)
	}
	if c.Continuum.Degree < 0 {
		return fmt.Errorf("%w: continuum.degree %d < 0", ErrInvalid, c.Continuum.Degree)
	}
	for i, r := range c.Continuum.Regions {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: continuum.regions[%d]: %v", ErrInvalid, i, err)
		}
	}
	if c.Continuum.ClipSigma < 0 || c.Continuum.ClipRounds < 0 {
		return fmt.Errorf("%w: continuum sigma clip must not be negative", ErrInvalid)
	}

	switch c.Xcorr.Method {
	case "grid", "fft":
	default:
		return fmt.Errorf("%w: xcorr.method %q (want grid or fft)", ErrInvalid, c.Xcorr.Method)
	}
	if c.Xcorr.Enabled {
		if err := c.Xcorr.Grid().Validate(); err != nil {
			return fmt.Errorf("%w: xcorr: %v", ErrInvalid, err)
		}
	}
	if err := fraction("xcorr.minOverlap", c.Xcorr.MinOverlap); err != nil {
		return err
	}

	if _, err := resample.ParseMethod(c.Template.Resampler); err != nil {
		return fmt.Errorf("%w: template.resampler: %v", ErrInvalid, err)
	}
	if c.Template.Enabled {
		if _, err := c.Template.Trials(); err != nil {
			return fmt.Errorf("%w: template redshifts: %v", ErrInvalid, err)
		}
	}
	if c.Template.Workers < 0 {
		return fmt.Errorf("%w: template.workers %d < 0", ErrInvalid, c.Template.Workers)
	}
	if err := fraction("template.minOverlap", c.Template.MinOverlap); err != nil {
		return err
	}

	if c.Data.Cache && c.Data.CacheDir == "" {
		return fmt.Errorf("%w: data.cacheDir is required when caching", ErrInvalid)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalid)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("%w: metrics.addr is required when metrics are enabled", ErrInvalid)
	}

	return nil
}

func fraction(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %g outside [0, 1]", ErrInvalid, name, v)
	}

	return nil
}

// applyEnvOverrides reads REDSHIFT_* environment variables and overrides the
// corresponding fields.
func applyEnvOverrides(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv("REDSHIFT_" + key); v != "" {
			*dst = v
		}
	}

	var errs []error
	parse := func(key string, set func(string) error) {
		if v := os.Getenv("REDSHIFT_" + key); v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("REDSHIFT_%s=%q: %w", key, v, err))
			}
		}
	}
	float := func(key string, dst *float64) {
		parse(key, func(v string) (err error) {
			*dst, err = strconv.ParseFloat(v, 64)
			return err
		})
	}
	integer := func(key string, dst *int) {
		parse(key, func(v string) (err error) {
			*dst, err = strconv.Atoi(v)
			return err
		})
	}
	boolean := func(key string, dst *bool) {
		parse(key, func(v string) (err error) {
			*dst, err = strconv.ParseBool(v)
			return err
		})
	}
	duration := func(key string, dst *time.Duration) {
		parse(key, func(v string) (err error) {
			*dst, err = time.ParseDuration(v)
			return err
		})
	}

	str("DATA_OBSERVED", &cfg.Data.Observed)
	str("DATA_TEMPLATE", &cfg.Data.Template)
	str("DATA_LIBRARY", &cfg.Data.Library)
	str("DATA_CACHE_DIR", &cfg.Data.CacheDir)
	boolean("DATA_CACHE", &cfg.Data.Cache)
	duration("DATA_LOCK_TIMEOUT", &cfg.Data.LockTimeout)
	duration("DATA_HTTP_TIMEOUT", &cfg.Data.HTTPTimeout)

	boolean("REDIS_ENABLED", &cfg.Redis.Enabled)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	integer("REDIS_DB", &cfg.Redis.DB)
	duration("REDIS_TTL", &cfg.Redis.TTL)

	str("CONTINUUM_FAMILY", &cfg.Continuum.Family)
	integer("CONTINUUM_DEGREE", &cfg.Continuum.Degree)

	str("XCORR_METHOD", &cfg.Xcorr.Method)
	float("XCORR_ZMIN", &cfg.Xcorr.ZMin)
	float("XCORR_ZMAX", &cfg.Xcorr.ZMax)
	float("XCORR_ZSTEP", &cfg.Xcorr.ZStep)

	str("TEMPLATE_RESAMPLER", &cfg.Template.Resampler)
	integer("TEMPLATE_WORKERS", &cfg.Template.Workers)
	parse("TEMPLATE_REDSHIFTS", func(v string) error {
		zs, err := ParseFloatList(v)
		if err != nil {
			return err
		}
		cfg.Template.Redshifts = zs
		return nil
	})

	str("LOGGING_LEVEL", &cfg.Logging.Level)
	str("LOGGING_FORMAT", &cfg.Logging.Format)
	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	str("METRICS_ADDR", &cfg.Metrics.Addr)
	str("OUTPUT_DIR", &cfg.Output.Dir)

	return errors.Join(errs...)
}

// ParseFloatList parses a comma separated list of numbers.
func ParseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}
