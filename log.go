package epub

import "go.uber.org/zap"

// Option configures optional behavior of the write-path operations
// (WriteBook, ExtractBook, AssembleBook, ModifyMetadataField). The zero
// value of options is always valid; every Option is a functional override.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger attaches a zap logger to an operation. Without it, operations
// log to a no-op logger, matching the library's default of silent operation
// unless a caller opts in.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func resolveOptions(opts ...Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
