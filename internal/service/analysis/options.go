package analysis

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	MatchLimit           int
	HighlightConcurrency int
	Timeout              time.Duration
	Logger               *zap.Logger
}

// WithMatchLimit caps how many similar cases are kept per analysis.
func WithMatchLimit(limit int) Option {
	return func(o *Options) {
		o.MatchLimit = limit
	}
}

// WithHighlightConcurrency runs up to n highlight calls at once. 1 is sequential.
func WithHighlightConcurrency(n int) Option {
	return func(o *Options) {
		o.HighlightConcurrency = n
	}
}

// WithTimeout bounds each vector store and image store call.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MatchLimit:           3,
		HighlightConcurrency: 1,
		Timeout:              30 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.HighlightConcurrency < 1 {
		options.HighlightConcurrency = 1
	}
	if options.Logger == nil {
		options.Logger = zap.L()
	}
	return options
}
