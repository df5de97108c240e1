package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	SourceFile  = "file"
	SourceKafka = "kafka"

	defaultInputSource          = SourceFile
	defaultInputPath            = "events.jsonl"
	defaultKafkaGroupID         = "queuelens-default-group"
	defaultTargetWaitSeconds    = 30.0
	defaultMaxServers           = 20
	defaultWindowWidthSeconds   = 300.0
	defaultImprovementThreshold = 0.05
	defaultServiceCV            = 1.0
	defaultServiceTimeSeconds   = 2.0
	defaultReportPath           = "queuelens_report.json"
	defaultLogLevel             = "info"
	defaultLogFormat            = "console"
	defaultLogFileEnabled       = false
	defaultLogDirectory         = "log"
	defaultLogFilename          = "app.log"
	defaultLogMaxSizeMB         = 100
	defaultLogMaxBackups        = 3
	defaultLogMaxAgeDays        = 7
	defaultLogCompress          = false

	// Environment variable prefix
	envPrefix = "QUEUELENS"
)

type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Report   ReportConfig   `mapstructure:"report"`
	Log      LogConfig      `mapstructure:"log"`
}

// InputConfig selects where the normalized event stream comes from.
type InputConfig struct {
	Source string      `mapstructure:"source"` // "file" or "kafka"
	Path   string      `mapstructure:"path"`   // JSON-lines file for the file source
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"groupID"`
}

// AnalysisConfig is the engine's tuning surface. Utilization bands left
// empty fall back to the planner's minimum/conservative/optimal/safe set.
type AnalysisConfig struct {
	TargetWaitSeconds    float64 `mapstructure:"targetWaitSeconds"`
	MaxServers           int     `mapstructure:"maxServers"`
	WindowWidthSeconds   float64 `mapstructure:"windowWidthSeconds"`
	ImprovementThreshold float64 `mapstructure:"improvementThreshold"`
	DefaultServiceCV     float64 `mapstructure:"defaultServiceCV"`
	// DefaultServiceTimeSeconds stands in for the mean service time of
	// streams that carry no service observations (flow-through vehicles).
	DefaultServiceTimeSeconds float64      `mapstructure:"defaultServiceTimeSeconds"`
	UtilizationBands          []BandConfig `mapstructure:"utilizationBands"`
}

type BandConfig struct {
	Name string  `mapstructure:"name"`
	Rho  float64 `mapstructure:"rho"`
}

type ReportConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v)

	// Read configuration from file (error if mandatory file is missing)
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal the configuration
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.source", defaultInputSource)
	v.SetDefault("input.path", defaultInputPath)
	v.SetDefault("input.kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("analysis.targetWaitSeconds", defaultTargetWaitSeconds)
	v.SetDefault("analysis.maxServers", defaultMaxServers)
	v.SetDefault("analysis.windowWidthSeconds", defaultWindowWidthSeconds)
	v.SetDefault("analysis.improvementThreshold", defaultImprovementThreshold)
	v.SetDefault("analysis.defaultServiceCV", defaultServiceCV)
	v.SetDefault("analysis.defaultServiceTimeSeconds", defaultServiceTimeSeconds)
	v.SetDefault("report.path", defaultReportPath)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Input.Source {
	case SourceFile:
		if cfg.Input.Path == "" {
			return ErrEmptyInputPath
		}
	case SourceKafka:
		if len(cfg.Input.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Input.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
		if cfg.Input.Kafka.GroupID == "" {
			return ErrEmptyKafkaGroupID
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidInputSource, cfg.Input.Source)
	}

	if cfg.Analysis.TargetWaitSeconds <= 0 {
		return ErrInvalidTargetWait
	}
	if cfg.Analysis.MaxServers < 1 {
		return ErrInvalidMaxServers
	}
	if cfg.Analysis.WindowWidthSeconds <= 0 {
		return ErrInvalidWindowWidth
	}
	if cfg.Analysis.ImprovementThreshold < 0 || cfg.Analysis.ImprovementThreshold >= 1 {
		return ErrInvalidImprovementThreshold
	}
	if cfg.Analysis.DefaultServiceCV <= 0 {
		return ErrInvalidServiceCV
	}
	if cfg.Analysis.DefaultServiceTimeSeconds <= 0 {
		return ErrInvalidServiceTime
	}
	for _, band := range cfg.Analysis.UtilizationBands {
		if band.Rho <= 0 || band.Rho >= 1 {
			return fmt.Errorf("%w: band %q has rho %g", ErrInvalidUtilizationBand, band.Name, band.Rho)
		}
	}
	if cfg.Report.Path == "" {
		return ErrEmptyReportPath
	}
	return nil
}
