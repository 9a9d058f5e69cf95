package http

import (
	"context"
	"net/http"

	"github.com/w-h-a/redflag/server"
)

type middlewareKey struct{}

type tlsKey struct{}

// TLS names the certificate and key files served by the listener.
type TLS struct {
	CertFile string
	KeyFile  string
}

// WithMiddleware wraps the handler; the first middleware is outermost.
func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

// WithTLS serves HTTPS. Empty paths leave the server on plain HTTP.
func WithTLS(certFile, keyFile string) server.Option {
	return func(o *server.Options) {
		if len(certFile) == 0 || len(keyFile) == 0 {
			return
		}
		o.Context = context.WithValue(o.Context, tlsKey{}, TLS{CertFile: certFile, KeyFile: keyFile})
	}
}

func TLSFrom(ctx context.Context) (TLS, bool) {
	t, ok := ctx.Value(tlsKey{}).(TLS)
	return t, ok
}
