package gcs

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/w-h-a/redflag/imagestore"
)

type clientKey struct{}

// WithClient injects an existing storage client instead of dialing one.
func WithClient(client *storage.Client) imagestore.Option {
	return func(o *imagestore.Options) {
		o.Context = context.WithValue(o.Context, clientKey{}, client)
	}
}

func ClientFrom(ctx context.Context) (*storage.Client, bool) {
	client, ok := ctx.Value(clientKey{}).(*storage.Client)
	return client, ok
}
