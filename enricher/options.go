package enricher

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	Timeout       time.Duration
	MaxKeywords   int
	FallbackRunes int
	Logger        *zap.Logger
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func WithMaxKeywords(max int) Option {
	return func(o *Options) {
		o.MaxKeywords = max
	}
}

func WithFallbackRunes(n int) Option {
	return func(o *Options) {
		o.FallbackRunes = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Timeout:       30 * time.Second,
		MaxKeywords:   4,
		FallbackRunes: 30,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = zap.L()
	}
	return options
}
