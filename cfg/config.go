package cfg

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// DecodePolicy selects how primitive tag reads react to I/O failures
type DecodePolicy string

const (
	PolicyLenient DecodePolicy = "lenient" // Degrade to zero values
	PolicyStrict  DecodePolicy = "strict"  // Propagate the failure
)

// StorageBackend selects where serial files are persisted
type StorageBackend string

const (
	BackendDisk   StorageBackend = "disk"
	BackendPebble StorageBackend = "pebble"
)

// FormatConfiguration selects the format used when none is given explicitly
type FormatConfiguration struct {
	Default  string `toml:"default"`  // Registered format name, e.g. "json"
	Strategy string `toml:"strategy"` // Registered strategy name, "" for none
	Pretty   bool   `toml:"pretty"`   // Indent text formats
}

// TagConfiguration controls the binary tag format
type TagConfiguration struct {
	Compression      string       `toml:"compression"`       // gzip, zstd, lz4 or none
	CompressionLevel int          `toml:"compression_level"` // 1 (fastest) to 4 (best)
	Policy           DecodePolicy `toml:"policy"`
}

// StorageConfiguration controls persistence of serial files
type StorageConfiguration struct {
	Backend     StorageBackend `toml:"backend"`
	Path        string         `toml:"path"`          // Relative to data_dir unless absolute
	CacheSizeMB int64          `toml:"cache_size_mb"` // Pebble block cache
}

// LoggingConfiguration controls logging behavior
type LoggingConfiguration struct {
	Verbose bool   `toml:"verbose"`
	Format  string `toml:"format"` // "console" or "json"
}

// PrometheusConfiguration for metrics
type PrometheusConfiguration struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

// Configuration is the main configuration structure
type Configuration struct {
	DataDir    string                  `toml:"data_dir"`
	Format     FormatConfiguration     `toml:"format"`
	Tag        TagConfiguration        `toml:"tag"`
	Storage    StorageConfiguration    `toml:"storage"`
	Logging    LoggingConfiguration    `toml:"logging"`
	Prometheus PrometheusConfiguration `toml:"prometheus"`
}

// Command line flags
var (
	ConfigPathFlag = flag.String("config", "serializer.toml", "Path to configuration file")
	DataDirFlag    = flag.String("data-dir", "", "Data directory (overrides config)")
	FormatFlag     = flag.String("format", "", "Default format (overrides config)")
	PolicyFlag     = flag.String("policy", "", "Tag decode policy: lenient or strict (overrides config)")
	VerboseFlag    = flag.Bool("verbose", false, "Enable debug logging")
)

// Default configuration
var Config = &Configuration{
	DataDir: "./serializer-data",

	Format: FormatConfiguration{
		Default:  "json",
		Strategy: "",
		Pretty:   true,
	},

	Tag: TagConfiguration{
		Compression:      "gzip",
		CompressionLevel: 2,
		Policy:           PolicyLenient,
	},

	Storage: StorageConfiguration{
		Backend:     BackendDisk,
		Path:        "files",
		CacheSizeMB: 8,
	},

	Logging: LoggingConfiguration{
		Verbose: false,
		Format:  "console",
	},

	Prometheus: PrometheusConfiguration{
		Enabled:   false,
		Namespace: "serializer",
	},
}

var (
	knownFormats     = map[string]bool{"json": true, "yaml": true, "tag": true, "protobuf": true, "msgpack": true, "cbor": true, "toml": true}
	knownCompression = map[string]bool{"gzip": true, "zstd": true, "lz4": true, "none": true}
)

// Load loads configuration from file and applies CLI overrides
func Load(configPath string) error {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			log.Info().Str("path", configPath).Msg("Loading configuration")
			if _, err := toml.DecodeFile(configPath, Config); err != nil {
				return fmt.Errorf("failed to decode config: %w", err)
			}
		} else {
			log.Debug().Str("path", configPath).Msg("Config file not found, using defaults")
		}
	}

	if *DataDirFlag != "" {
		Config.DataDir = *DataDirFlag
	}
	if *FormatFlag != "" {
		Config.Format.Default = *FormatFlag
	}
	if *PolicyFlag != "" {
		Config.Tag.Policy = DecodePolicy(*PolicyFlag)
	}
	if *VerboseFlag {
		Config.Logging.Verbose = true
	}

	return nil
}

// Validate checks configuration for errors
func Validate() error {
	if Config.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}

	if !knownFormats[Config.Format.Default] {
		return fmt.Errorf("invalid default format: %s", Config.Format.Default)
	}

	if !knownCompression[Config.Tag.Compression] {
		return fmt.Errorf("invalid tag compression: %s", Config.Tag.Compression)
	}

	if Config.Tag.CompressionLevel < 1 || Config.Tag.CompressionLevel > 4 {
		return fmt.Errorf("tag compression level must be between 1 and 4")
	}

	if Config.Tag.Policy != PolicyLenient && Config.Tag.Policy != PolicyStrict {
		return fmt.Errorf("invalid tag decode policy: %s", Config.Tag.Policy)
	}

	if Config.Storage.Backend != BackendDisk && Config.Storage.Backend != BackendPebble {
		return fmt.Errorf("invalid storage backend: %s", Config.Storage.Backend)
	}

	if Config.Storage.Backend == BackendPebble && Config.Storage.CacheSizeMB < 1 {
		return fmt.Errorf("pebble cache size must be >= 1MB")
	}

	if Config.Logging.Format != "console" && Config.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s", Config.Logging.Format)
	}

	return nil
}

// StoragePath returns the storage location resolved against the data directory
func StoragePath() string {
	if filepath.IsAbs(Config.Storage.Path) {
		return Config.Storage.Path
	}
	return filepath.Join(Config.DataDir, Config.Storage.Path)
}
