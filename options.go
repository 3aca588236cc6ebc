package vex

import (
	"github.com/hupe1980/vex/hashtable"
	"github.com/hupe1980/vex/resource"
)

type options struct {
	capacity         int
	chainCapacity    int
	memoryLimit      int64
	controller       *resource.Controller
	logger           *Logger
	metricsCollector MetricsCollector
	hasher           any
}

// Option configures a Map.
type Option func(*options)

// WithCapacity preallocates room for n distinct hashes.
//
// Chains are always created lazily, so this only sizes the bucket index.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithChainCapacity sizes every new collision chain for n entries.
// The default is hashtable.DefaultChainCapacity.
func WithChainCapacity(n int) Option {
	return func(o *options) {
		o.chainCapacity = n
	}
}

// WithMemoryLimit caps the bytes the map may reserve.
//
// It creates a private resource.Controller and is ignored when
// WithController is also given. Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithController charges all allocations against a shared controller.
//
// Use this to put several maps under one budget:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	users, _ := vex.New[string, User](vex.WithController(rc))
//	orders, _ := vex.New[uint64, Order](vex.WithController(rc))
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vex.BasicMetricsCollector{}
//	m, _ := vex.New[string, int](vex.WithMetricsCollector(metrics))
//	// ... use m ...
//	stats := metrics.GetStats()
//	fmt.Printf("Puts: %d, hit rate: %.2f\n", stats.PutCount, stats.HitRate())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithHasher replaces the default runtime hasher.
//
// The hasher's key type must match the map's; New returns
// ErrHasherMismatch otherwise.
func WithHasher[K any](h hashtable.Hasher[K]) Option {
	return func(o *options) {
		o.hasher = h
	}
}

func applyOptions(opts []Option) options {
	o := options{
		chainCapacity:    hashtable.DefaultChainCapacity,
		metricsCollector: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.controller == nil {
		o.controller = resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	}
	return o
}
