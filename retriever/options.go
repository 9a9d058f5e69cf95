package retriever

import (
	"context"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	Location   string
	Collection string
	Dimensions int
	Logger     *zap.Logger
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithCollection(collection string) Option {
	return func(o *Options) {
		o.Collection = collection
	}
}

func WithDimensions(dims int) Option {
	return func(o *Options) {
		o.Dimensions = dims
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Collection: "example_case",
		Dimensions: 768,
		Logger:     zap.L(),
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
