// Package utils provides concurrency and panic-safety helpers shared across
// the ingestion and storage layers.
//
//   - Panic recovery helpers for goroutines (recovery.go)
//   - Semaphore-bounded concurrent execution and worker pools (concurrent.go)
package utils
