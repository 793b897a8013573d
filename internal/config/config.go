package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 10 * 1024 * 1024

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	APIConfig             APIConfig             `json:"api_config,omitempty" yaml:"api_config,omitempty"`
	ImageConfig           ImageConfig           `json:"image_config,omitempty" yaml:"image_config,omitempty"`
	LogConfig             LogConfig             `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	ProgressConfig        ProgressConfig        `json:"progress_config,omitempty" yaml:"progress_config,omitempty"`
	ReporterConfig        ReporterConfig        `json:"reporter_config,omitempty" yaml:"reporter_config,omitempty"`
	ResourceLimiterConfig ResourceLimiterConfig `json:"resource_limiter_config,omitempty" yaml:"resource_limiter_config,omitempty"`
	ScrollConfig          ScrollConfig          `json:"scroll_config,omitempty" yaml:"scroll_config,omitempty"`
	StorageConfig         StorageConfig         `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	ViewerConfig          ViewerConfig          `json:"viewer_config,omitempty" yaml:"viewer_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		APIConfig:             NewDefaultAPIConfig(),
		ImageConfig:           NewDefaultImageConfig(),
		LogConfig:             NewDefaultLogConfig(),
		ProgressConfig:        NewDefaultProgressConfig(),
		ReporterConfig:        NewDefaultReporterConfig(),
		ResourceLimiterConfig: NewDefaultResourceLimiterConfig(),
		ScrollConfig:          NewDefaultScrollConfig(),
		StorageConfig:         NewDefaultStorageConfig(),
		ViewerConfig:          NewDefaultViewerConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is used if the file extension is .yaml or .yml.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	data, err := loadConfigFileContent(filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Loaded config file")
	return cfg, nil
}

func loadConfigFileContent(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, common.NewValidationError("config_file", filePath, "config file too large")
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// SaveGlobalConfig writes cfg to filePath as YAML or JSON depending on the extension.
func SaveGlobalConfig(cfg *GlobalConfig, filePath string, logger zerolog.Logger) error {
	if cfg == nil {
		return common.NewValidationError("config", cfg, "config cannot be nil")
	}

	var data []byte
	var err error
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return common.WrapError(err, "failed to marshal config")
	}

	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return common.WrapError(err, "failed to create config directory")
		}
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return common.WrapError(err, "failed to write config file")
	}

	logger.Info().Str("path", filePath).Str("format", ext).Msg("Saved config file")
	return nil
}
