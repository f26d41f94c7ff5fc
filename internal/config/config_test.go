package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	require.NoError(t, Initialize())

	assert.True(t, AdaptiveHashIndexEnabled())
	assert.EqualValues(t, 17, HashAnalysisThreshold())
	assert.False(t, OptimizerTraceEnabled())
	assert.EqualValues(t, 16<<20, MaxHeapTableSize())
	assert.EqualValues(t, 1<<20, OptimizerTraceMaxMemSize())
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("OPTIQ_ADAPTIVE_HASH_INDEX", "false")
	os.Setenv("OPTIQ_HASH_ANALYSIS_THRESHOLD", "5")
	defer os.Unsetenv("OPTIQ_ADAPTIVE_HASH_INDEX")
	defer os.Unsetenv("OPTIQ_HASH_ANALYSIS_THRESHOLD")

	require.NoError(t, Initialize())

	assert.False(t, AdaptiveHashIndexEnabled())
	assert.EqualValues(t, 5, HashAnalysisThreshold())
}

func TestSetOverridesDefault(t *testing.T) {
	require.NoError(t, Initialize())
	Set(KeyOptimizerTrace, true)
	assert.True(t, OptimizerTraceEnabled())
}

func TestSnapshotReportsAllKeys(t *testing.T) {
	require.NoError(t, Initialize())
	snap := Snapshot()
	assert.Contains(t, snap, KeyAdaptiveHashIndex)
	assert.Contains(t, snap, KeyHashAnalysisThreshold)
	assert.Contains(t, snap, KeyOptimizerTrace)
	assert.Contains(t, snap, KeyMaxHeapTableSize)
	assert.Contains(t, snap, KeyOptimizerTraceMaxMem)
}

func TestMustGetInt64PanicsOnUnknownKey(t *testing.T) {
	require.NoError(t, Initialize())
	assert.Panics(t, func() {
		MustGetInt64("not_a_real_key")
	})
}
