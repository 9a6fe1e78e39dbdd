package cache

import "runtime"

// defaultThreadCount is used when a MultiThread cache is configured with
// CACHE_THREAD_COUNT=0 (spec.md §6: "0 means use the host's available
// parallelism").
func defaultThreadCount() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}

	return n
}
