package qdrant

import (
	"context"

	"github.com/w-h-a/redflag/retriever"
)

type apiKeyKey struct{}

func WithApiKey(key string) retriever.Option {
	return func(o *retriever.Options) {
		o.Context = context.WithValue(o.Context, apiKeyKey{}, key)
	}
}

func ApiKeyFrom(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(apiKeyKey{}).(string)
	return key, ok
}
