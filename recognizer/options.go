package recognizer

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	Location string
	Timeout  time.Duration
	Logger   *zap.Logger
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

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
		Timeout: 30 * time.Second,
		Logger:  zap.L(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
