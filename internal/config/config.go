// Package config holds the process-wide tunables recognised by the
// planner and the adaptive hash index (spec §6 "Configuration").
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Keys for the settings named in spec §6. Values are read through the
// viper singleton so they can come from environment variables
// (OPTIQ_<KEY>, dots become underscores), from Set, or from an
// optiq.yaml read with LoadLocalConfig and applied with ApplyTo.
const (
	KeyAdaptiveHashIndex      = "adaptive_hash_index"
	KeyHashAnalysisThreshold  = "hash_analysis_threshold"
	KeyOptimizerTrace         = "optimizer_trace"
	KeyMaxHeapTableSize       = "max_heap_table_size"
	KeyOptimizerTraceMaxMem   = "optimizer_trace_max_mem_size"
)

var (
	mu sync.Mutex
	v  *viper.Viper
)

func newDefaultViper() *viper.Viper {
	vv := viper.New()
	vv.SetEnvPrefix("OPTIQ")
	vv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vv.AutomaticEnv()

	vv.SetDefault(KeyAdaptiveHashIndex, true)
	vv.SetDefault(KeyHashAnalysisThreshold, 17)  // spec §4.3 BUILD_HASH_AFTER
	vv.SetDefault(KeyOptimizerTrace, false)
	vv.SetDefault(KeyMaxHeapTableSize, int64(16<<20)) // 16MiB
	vv.SetDefault(KeyOptimizerTraceMaxMem, int64(1<<20))

	return vv
}

// Initialize (re)creates the viper singleton with defaults plus
// environment overrides. It is safe to call repeatedly (e.g. between
// test cases); each call resets to defaults before re-reading the
// environment.
func Initialize() error {
	mu.Lock()
	defer mu.Unlock()
	v = newDefaultViper()
	return nil
}

func ensure() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	if v == nil {
		v = newDefaultViper()
	}
	return v
}

// AdaptiveHashIndexEnabled reports whether AHI operations should run
// at all (spec §6 "adaptive_hash_index: {on, off}").
func AdaptiveHashIndexEnabled() bool {
	return ensure().GetBool(KeyAdaptiveHashIndex)
}

// HashAnalysisThreshold returns BUILD_HASH_AFTER (spec §4.3).
func HashAnalysisThreshold() uint32 {
	n := ensure().GetInt(KeyHashAnalysisThreshold)
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// OptimizerTraceEnabled reports whether the cost model should append
// trace strings (spec §6 "optimizer_trace: {on, off}").
func OptimizerTraceEnabled() bool {
	return ensure().GetBool(KeyOptimizerTrace)
}

// MaxHeapTableSize returns the byte threshold used to choose between
// in-memory and on-disk temp-table costing (spec §6).
func MaxHeapTableSize() int64 {
	return ensure().GetInt64(KeyMaxHeapTableSize)
}

// OptimizerTraceMaxMemSize returns the cap on the trace buffer (spec §6).
func OptimizerTraceMaxMemSize() int64 {
	return ensure().GetInt64(KeyOptimizerTraceMaxMem)
}

// Set overrides a single key at runtime, primarily for tests and for
// the optiqctl CLI's "config set" subcommand.
func Set(key string, value interface{}) {
	ensure().Set(key, value)
}

// Snapshot returns the resolved values of every key this package
// recognises, useful for `optiqctl config show`.
func Snapshot() map[string]interface{} {
	vv := ensure()
	return map[string]interface{}{
		KeyAdaptiveHashIndex:     vv.GetBool(KeyAdaptiveHashIndex),
		KeyHashAnalysisThreshold: vv.GetInt(KeyHashAnalysisThreshold),
		KeyOptimizerTrace:        vv.GetBool(KeyOptimizerTrace),
		KeyMaxHeapTableSize:      vv.GetInt64(KeyMaxHeapTableSize),
		KeyOptimizerTraceMaxMem:  vv.GetInt64(KeyOptimizerTraceMaxMem),
	}
}

// MustGetInt64 is a small helper used by callers that already know the
// key exists (defaults guarantee it does) and want to fail loudly on a
// programmer error (typo'd key) rather than silently get a zero value.
func MustGetInt64(key string) int64 {
	vv := ensure()
	if !vv.IsSet(key) {
		panic(fmt.Sprintf("config: unknown key %q", key))
	}
	return vv.GetInt64(key)
}
