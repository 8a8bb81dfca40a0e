package config

import (
	"fmt"
	"os"
	"sort"

	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parsererror"
	"fjacquet/mis-parser/internal/validation"

	"gopkg.in/yaml.v3"
)

// SourcesLoader loads and validates source configuration files.
type SourcesLoader struct {
	logger logging.Logger
}

// NewSourcesLoader creates a new instance of SourcesLoader.
func NewSourcesLoader(logger logging.Logger) *SourcesLoader {
	return &SourcesLoader{
		logger: logging.OrDefault(logger).WithField("component", "SourcesLoader"),
	}
}

// LoadSourceFiles loads several source files into one map keyed by source
// name. A source defined in more than one file is an error.
func (l *SourcesLoader) LoadSourceFiles(filePaths []string) (map[string]models.SourceConfig, error) {
	all := make(map[string]models.SourceConfig)

	for _, filePath := range filePaths {
		l.logger.WithField(logging.FieldFile, filePath).Debug("Loading source file")
		sources, err := l.loadSingleSourceFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load source file %s: %w", filePath, err)
		}
		for name, cfg := range sources {
			if _, seen := all[name]; seen {
				return nil, fmt.Errorf("duplicate source found: %s", name)
			}
			all[name] = cfg
		}
	}

	l.logger.Info("Loaded source configurations",
		logging.Field{Key: logging.FieldCount, Value: len(all)})
	return all, nil
}

// loadSingleSourceFile reads and parses a single YAML source file.
func (l *SourcesLoader) loadSingleSourceFile(filePath string) (map[string]models.SourceConfig, error) {
	data, err := os.ReadFile(filePath) // #nosec G304 -- operator supplied config path
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if info, err := os.Stat(filePath); err == nil {
		if err := validation.IsValidFilePermissions(info.Mode().Perm()); err != nil {
			l.logger.WithError(err).Warn("Source file is readable by others",
				logging.Field{Key: logging.FieldFile, Value: filePath})
		}
	}
	return ParseSources(data)
}

// ParseSources decodes a sources document:
//
//	sources:
//	  payu:
//	    read_from_s3_func: readFromS3
//	    columns_mapping: {...}
//
// Every source is named after its key and validated. Unknown identifiers
// and violated invariants are reported as *parsererror.ConfigError.
func ParseSources(data []byte) (map[string]models.SourceConfig, error) {
	var doc struct {
		Sources map[string]yaml.Node `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	names := make([]string, 0, len(doc.Sources))
	for name := range doc.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]models.SourceConfig, len(names))
	for _, name := range names {
		node := doc.Sources[name]
		var cfg models.SourceConfig
		if err := node.Decode(&cfg); err != nil {
			return nil, &parsererror.ConfigError{Source: name, Field: "definition", Reason: err.Error()}
		}
		cfg.Name = name
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		out[name] = cfg
	}
	return out, nil
}

// LoadSources loads the single sources file named in the application config.
func LoadSources(config *Config, logger logging.Logger) (map[string]models.SourceConfig, error) {
	return NewSourcesLoader(logger).LoadSourceFiles([]string{config.Sources.File})
}
