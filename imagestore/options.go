package imagestore

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	Bucket        string
	PublicBaseURL string
	Timeout       time.Duration
	Logger        *zap.Logger
	Context       context.Context
}

func WithBucket(bucket string) Option {
	return func(o *Options) {
		o.Bucket = bucket
	}
}

func WithPublicBaseURL(url string) Option {
	return func(o *Options) {
		o.PublicBaseURL = url
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
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = zap.L()
	}
	return options
}
