package config

import "errors"

var (
	ErrReadingConfigFile           = errors.New("failed to read config file")
	ErrUnmarshallingConfig         = errors.New("failed to unmarshal config")
	ErrConfigFileMissing           = errors.New("config file not found")
	ErrInvalidInputSource          = errors.New("input source must be \"file\" or \"kafka\"")
	ErrEmptyInputPath              = errors.New("input path cannot be empty for file source")
	ErrEmptyKafkaBrokers           = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic             = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID           = errors.New("kafka groupID cannot be empty")
	ErrInvalidTargetWait           = errors.New("analysis targetWaitSeconds must be positive")
	ErrInvalidMaxServers           = errors.New("analysis maxServers must be at least 1")
	ErrInvalidWindowWidth          = errors.New("analysis windowWidthSeconds must be positive")
	ErrInvalidImprovementThreshold = errors.New("analysis improvementThreshold must be in [0,1)")
	ErrInvalidServiceCV            = errors.New("analysis defaultServiceCV must be positive")
	ErrInvalidServiceTime          = errors.New("analysis defaultServiceTimeSeconds must be positive")
	ErrInvalidUtilizationBand      = errors.New("utilization band rho must be in (0,1)")
	ErrEmptyReportPath             = errors.New("report path cannot be empty")
)
