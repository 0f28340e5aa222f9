package utils

import (
	"os"
	"strconv"
)

// DefaultSemaphoreLimit is the fallback concurrency bound used when neither
// an explicit value nor the SEMAPHORE_LIMIT environment variable is set.
const DefaultSemaphoreLimit = 20

// GetSemaphoreLimit returns the default concurrency bound for the
// ConcurrentExecutor / WorkerPool helpers, read from SEMAPHORE_LIMIT.
func GetSemaphoreLimit() int {
	val := os.Getenv("SEMAPHORE_LIMIT")
	if val == "" {
		return DefaultSemaphoreLimit
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit <= 0 {
		return DefaultSemaphoreLimit
	}
	return limit
}
