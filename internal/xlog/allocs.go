//go:build debugheaplog

package xlog

import (
	"runtime"
	"sync"
)

var (
	memstats   runtime.MemStats
	lastAllocs uint64
	lastMalloc uint64
	allocmu    sync.Mutex
)

// LogAllocs prints the heap allocation delta since the last call, or does
// nothing if no allocation occurred. Used by [LogAttrs] under debugheaplog
// to pinpoint which engine event is responsible for an unexpected
// allocation.
func LogAllocs(msg string) {
	allocmu.Lock()
	defer allocmu.Unlock()
	runtime.ReadMemStats(&memstats)
	if memstats.TotalAlloc == lastAllocs {
		return
	}
	print("[ALLOC] ", msg)
	print(" inc=", int64(memstats.TotalAlloc)-int64(lastAllocs))
	print(" n=", int64(memstats.Mallocs)-int64(lastMalloc))
	print(" heap=", memstats.HeapAlloc)
	println()
	lastAllocs = memstats.TotalAlloc
	lastMalloc = memstats.Mallocs
}
