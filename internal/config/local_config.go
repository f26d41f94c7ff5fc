package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of optiq.yaml fields read directly from
// disk rather than through the viper singleton, for a caller that wants
// to inspect configuration before Initialize has run, or from a
// directory other than the process cwd. optiqctl does not read it.
type LocalConfig struct {
	AdaptiveHashIndex     *bool  `yaml:"adaptive_hash_index"`
	HashAnalysisThreshold *int   `yaml:"hash_analysis_threshold"`
	OptimizerTrace        *bool  `yaml:"optimizer_trace"`
	MaxHeapTableSize      *int64 `yaml:"max_heap_table_size"`
}

// LoadLocalConfig reads and parses optiq.yaml from the given
// directory. It returns an empty (not nil) LocalConfig if the file
// does not exist or cannot be parsed, so callers can treat "missing"
// and "empty" identically.
func LoadLocalConfig(dir string) *LocalConfig {
	path := filepath.Join(dir, "optiq.yaml")
	data, err := os.ReadFile(path) // #nosec G304 - path built from a caller-supplied directory
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}

// ApplyTo pushes every field set in the local config into the viper
// singleton, giving file-based configuration effect without requiring
// the caller to know viper's key names.
func (c *LocalConfig) ApplyTo() {
	if c == nil {
		return
	}
	if c.AdaptiveHashIndex != nil {
		Set(KeyAdaptiveHashIndex, *c.AdaptiveHashIndex)
	}
	if c.HashAnalysisThreshold != nil {
		Set(KeyHashAnalysisThreshold, *c.HashAnalysisThreshold)
	}
	if c.OptimizerTrace != nil {
		Set(KeyOptimizerTrace, *c.OptimizerTrace)
	}
	if c.MaxHeapTableSize != nil {
		Set(KeyMaxHeapTableSize, *c.MaxHeapTableSize)
	}
}
