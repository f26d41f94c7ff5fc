package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocalConfigMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := LoadLocalConfig(dir)
	assert.Nil(t, cfg.AdaptiveHashIndex)
	assert.Nil(t, cfg.HashAnalysisThreshold)
}

func TestLoadLocalConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := "adaptive_hash_index: false\nhash_analysis_threshold: 9\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "optiq.yaml"), []byte(yaml), 0o600))

	cfg := LoadLocalConfig(dir)
	require.NotNil(t, cfg.AdaptiveHashIndex)
	assert.False(t, *cfg.AdaptiveHashIndex)
	require.NotNil(t, cfg.HashAnalysisThreshold)
	assert.Equal(t, 9, *cfg.HashAnalysisThreshold)
}

func TestLoadLocalConfigMalformedYAMLReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "optiq.yaml"), []byte("not: [valid"), 0o600))

	cfg := LoadLocalConfig(dir)
	assert.Nil(t, cfg.AdaptiveHashIndex)
}

func TestApplyToOverridesViperSingleton(t *testing.T) {
	require.NoError(t, Initialize())

	disabled := false
	threshold := 3
	cfg := &LocalConfig{AdaptiveHashIndex: &disabled, HashAnalysisThreshold: &threshold}
	cfg.ApplyTo()

	assert.False(t, AdaptiveHashIndexEnabled())
	assert.EqualValues(t, 3, HashAnalysisThreshold())
}
