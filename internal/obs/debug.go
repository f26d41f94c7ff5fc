// Package obs holds the ambient observability concerns shared by the
// planner and the adaptive hash index: debug logging, the optimizer
// trace buffer, and OpenTelemetry metrics.
package obs

import (
	"fmt"
	"os"
	"sync"
)

var (
	enabled     = os.Getenv("OPTIQ_DEBUG") != ""
	verboseMode bool
	logMutex    sync.Mutex
)

// Enabled reports whether debug logging is active, either via the
// OPTIQ_DEBUG environment variable or SetVerbose.
func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose force-enables debug logging regardless of the environment.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// Logf writes a formatted debug line to stderr when debug logging is
// enabled. It is a no-op otherwise, so call sites can be left in place
// without a cost in production builds.
func Logf(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	logMutex.Lock()
	defer logMutex.Unlock()
	fmt.Fprintf(os.Stderr, "[optiq] "+format+"\n", args...)
}
