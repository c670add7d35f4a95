package rhi

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Native API names accepted by Config.API.
const (
	APIAuto   = "auto"
	APIDX12   = "dx12"
	APIVulkan = "vulkan"
	APIMetal  = "metal"
	APIGL     = "gl"
	APINoop   = "noop"
)

// Default configuration values.
const (
	DefaultFenceTimeout   = 5 * time.Second
	DefaultFramesInFlight = 3

	// maxConfigSize bounds the YAML file LoadConfig accepts.
	maxConfigSize = 1 << 20
)

// Config selects and tunes the backend a device is opened on.
type Config struct {
	// Backend is the registry name of the backend. Empty picks the highest
	// priority registered backend.
	Backend string `yaml:"backend"`

	// API is the native API the backend drives. APIAuto tries D3D12 first.
	API string `yaml:"api"`

	// AdapterIndex selects an adapter by enumeration index. Negative means
	// automatic selection.
	AdapterIndex int `yaml:"adapter"`

	// PreferLowPower prefers integrated over discrete adapters.
	PreferLowPower bool `yaml:"prefer_low_power"`

	// FenceTimeout bounds every fence wait.
	FenceTimeout time.Duration `yaml:"fence_timeout"`

	// FramesInFlight is the number of per-frame resource sets kept alive.
	FramesInFlight int `yaml:"frames_in_flight"`

	// Label prefixes the debug labels of native objects.
	Label string `yaml:"label"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		API:            APIAuto,
		AdapterIndex:   -1,
		FenceTimeout:   DefaultFenceTimeout,
		FramesInFlight: DefaultFramesInFlight,
		Label:          "rhi",
	}
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		return cfg, fmt.Errorf("rhi: load config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("rhi: load config: %s is %d bytes, limit %d", path, info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("rhi: load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("rhi: parse config %s: %w", path, err)
	}

	Logger().Debug("rhi: loaded config", "path", path, "backend", cfg.Backend, "api", cfg.API)
	return cfg, nil
}

// ApplyEnv overrides fields from RHI_BACKEND, RHI_API, RHI_ADAPTER and
// RHI_FENCE_TIMEOUT when they are set.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("RHI_BACKEND"); ok {
		c.Backend = v
	}
	if v, ok := os.LookupEnv("RHI_API"); ok {
		c.API = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("RHI_ADAPTER"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("rhi: RHI_ADAPTER: %w", err)
		}
		c.AdapterIndex = n
	}
	if v, ok := os.LookupEnv("RHI_FENCE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("rhi: RHI_FENCE_TIMEOUT: %w", err)
		}
		c.FenceTimeout = d
	}
	return nil
}

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("rhi: invalid config")

// Validate reports configuration values no backend can honor.
func (c *Config) Validate() error {
	switch c.API {
	case "", APIAuto, APIDX12, APIVulkan, APIMetal, APIGL, APINoop:
	default:
		return fmt.Errorf("%w: unknown api %q", ErrInvalidConfig, c.API)
	}
	if c.FenceTimeout <= 0 {
		return fmt.Errorf("%w: fence timeout %v must be positive", ErrInvalidConfig, c.FenceTimeout)
	}
	if c.FramesInFlight < 1 {
		return fmt.Errorf("%w: frames in flight %d must be at least 1", ErrInvalidConfig, c.FramesInFlight)
	}
	return nil
}
