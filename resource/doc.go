// Package resource implements the memory budget and IO throttle shared by
// the containers in this module.
//
//	┌──────────────────────────────────────────────┐
//	│                  Controller                  │
//	├───────────────────────┬──────────────────────┤
//	│  Memory budget        │  IO rate limiter     │
//	│  (fail-fast)          │  (token bucket)      │
//	├───────────────────────┼──────────────────────┤
//	│  AcquireMemory        │  AcquireIO           │
//	│  ReleaseMemory        │  RateLimitedWriter   │
//	│  MemoryUsage          │  RateLimitedReader   │
//	└───────────────────────┴──────────────────────┘
//
// # Memory
//
// Every growth of a buffer reserves the additional bytes from its
// Controller before touching its storage. AcquireMemory never blocks: when
// the limit would be exceeded it returns ErrMemoryLimitExceeded and the
// caller leaves its structure untouched.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(4096)
//
// # IO
//
// Snapshot streams can be throttled with a token bucket:
//
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller: memory is neither limited nor
// tracked and IO is unthrottled.
package resource
