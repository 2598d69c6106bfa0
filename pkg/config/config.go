// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"zoneferry/pkg/log"

	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// SecretRegex matches environment variable references like ${ENV_VAR}
var SecretRegex = regexp.MustCompile(`\${([^}]+)}`)

// ConfigFile represents the structure of the configuration file
type ConfigFile struct {
	General   GeneralConfig             `yaml:"general"`
	Source    SourceConfig              `yaml:"source"`
	Record    RecordConfig              `yaml:"record"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Report    ReportConfig              `yaml:"report"`
}

// GeneralConfig represents global application settings
type GeneralConfig struct {
	LogLevel string `yaml:"log_level"`
	DryRun   bool   `yaml:"dry_run"`
	Provider string `yaml:"provider"`
}

// SourceConfig describes where zone data is read from: the registrar API
// or a CSV export. When CSVFile is set the API settings are ignored.
type SourceConfig struct {
	APIURL        string `yaml:"api_url"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	PageLimit     int    `yaml:"page_limit"`
	SkipTLSVerify bool   `yaml:"skip_tls_verify"`
	CSVFile       string `yaml:"csv_file"`
	Watch         bool   `yaml:"watch"`
}

// RecordConfig holds record normalization settings
type RecordConfig struct {
	DefaultTTL     int  `yaml:"default_ttl"`
	MaxValueLength int  `yaml:"max_value_length"`
	DedupeTargets  bool `yaml:"dedupe_targets"`
}

// ProviderConfig represents configuration for a destination provider profile
type ProviderConfig struct {
	Type    string            `yaml:"type"`
	Options map[string]string `yaml:",inline"`
}

// GetOptions returns the provider options with secret references resolved
func (pc *ProviderConfig) GetOptions() map[string]string {
	options := make(map[string]string, len(pc.Options))
	for k, v := range pc.Options {
		options[k] = v
	}
	return options
}

// ReportConfig controls where the rejected-record report is written
type ReportConfig struct {
	RejectsFile string `yaml:"rejects_file"`
}

// FindConfigFile locates the configuration file, checking the given path
// first, then the working directory, then /etc/zoneferry
func FindConfigFile(path string) (string, error) {
	candidates := []string{path}
	if path == "" {
		candidates = []string{"zoneferry.yml", "zoneferry.yaml", "/etc/zoneferry/zoneferry.yml"}
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no configuration file found (tried: %s)", strings.Join(candidates, ", "))
}

// LoadConfigFile loads the configuration from a YAML file.
// Environment variables override file values; defaults fill the rest.
func LoadConfigFile(path string) (*ConfigFile, error) {
	var cfg ConfigFile

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config] failed to read config file: %w", err)
	}

	processed := processConfigFileSecrets(string(content))
	if err := yaml.Unmarshal([]byte(processed), &cfg); err != nil {
		return nil, fmt.Errorf("[config] failed to parse YAML file: %w", err)
	}

	loadFromEnvironment(&cfg)
	setConfigDefaults(&cfg)

	return &cfg, nil
}

// Default returns a configuration with only environment overrides and
// built-in defaults applied, for running without a config file
func Default() *ConfigFile {
	var cfg ConfigFile
	loadFromEnvironment(&cfg)
	setConfigDefaults(&cfg)
	return &cfg
}

// setConfigDefaults applies application-level defaults (lowest precedence)
func setConfigDefaults(cfg *ConfigFile) {
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.Source.APIURL == "" {
		cfg.Source.APIURL = "https://api.openprovider.eu/v1beta"
	}
	if cfg.Source.PageLimit == 0 {
		// API caps the number of items per listing call
		cfg.Source.PageLimit = 500
	}
	if cfg.Record.DefaultTTL == 0 {
		cfg.Record.DefaultTTL = 3600
	}
	if cfg.Record.MaxValueLength == 0 {
		cfg.Record.MaxValueLength = 250
	}
	if cfg.General.Provider == "" && len(cfg.Providers) == 1 {
		for name := range cfg.Providers {
			cfg.General.Provider = name
		}
	}
}

// loadFromEnvironment applies environment variable overrides to the config
func loadFromEnvironment(cfg *ConfigFile) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv("OPENPROVIDER_USERNAME"); v != "" {
		cfg.Source.Username = v
	}
	if v := os.Getenv("OPENPROVIDER_PASSWORD"); v != "" {
		cfg.Source.Password = v
	}
	if v := os.Getenv("OPENPROVIDER_API_URL"); v != "" {
		cfg.Source.APIURL = v
	}
	if v := strings.ToLower(os.Getenv("DRY_RUN")); v == "true" || v == "1" || v == "yes" {
		cfg.General.DryRun = true
	}
}

// processConfigFileSecrets replaces environment variable references in the config file
func processConfigFileSecrets(content string) string {
	return SecretRegex.ReplaceAllStringFunc(content, func(match string) string {
		// Extract variable name (remove ${ and })
		varName := match[2 : len(match)-1]

		// Check if it's prefixed with "file:"
		if strings.HasPrefix(varName, "file:") {
			filePath := strings.TrimPrefix(varName, "file:")

			fileData, err := os.ReadFile(filePath)
			if err != nil {
				log.Error("[config] Failed to read secret file %s: %v", filePath, err)
				return match // Keep original if error
			}

			return strings.TrimSpace(string(fileData))
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}

		// If environment variable doesn't exist, keep original
		return match
	})
}
