package evtimer

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shaovie/evtimer/internal/log"
)

const (
	defaultEvReadyNum   = 10
	defaultArrSize      = 1024
	defaultHeapInitSize = 64
)

// Options configures a Manager.
type Options struct {
	backend Backend

	logger *slog.Logger

	metricsNamespace  string
	metricsRegisterer prometheus.Registerer

	evReadyNum      int  // sources fetched by one wait
	registryArrSize int  // array part of the handle index
	lockOSThread    bool // Run locks its goroutine to the OS thread
}

// Option sets one field of Options.
type Option func(*Options)

func setOptions(optL ...Option) *Options {
	//= default options
	opts := &Options{
		logger:          log.Noop,
		evReadyNum:      defaultEvReadyNum,
		registryArrSize: defaultArrSize,
		lockOSThread:    true,
	}
	for _, opt := range optL {
		opt(opts)
	}
	if opts.backend == nil {
		opts.backend = defaultBackend(opts.evReadyNum)
	}
	return opts
}

// WithBackend selects the timer source and multiplexer implementation.
// Default: EpollBackend on linux, HeapBackend elsewhere.
func WithBackend(b Backend) Option {
	return func(o *Options) {
		if b != nil {
			o.backend = b
		}
	}
}

// WithLogger sets the logger, nil keeps the default no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics registers the manager collectors under namespace.
func WithMetrics(namespace string, reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.metricsNamespace = namespace
		o.metricsRegisterer = reg
	}
}

// WithEventBatchSize is the maximum number of ready events one epoll_wait
// returns. Only used by the default backend.
func WithEventBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.evReadyNum = n
		}
	}
}

// WithRegistryArrSize sets the array part of the handle index. Handles below
// n are found by indexing, the rest through a map.
func WithRegistryArrSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.registryArrSize = n
		}
	}
}

// WithLockOSThread controls whether Run binds its goroutine to the current
// OS thread for the lifetime of the loop.
func WithLockOSThread(v bool) Option {
	return func(o *Options) {
		o.lockOSThread = v
	}
}
