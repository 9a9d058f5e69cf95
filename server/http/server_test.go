package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/redflag/server"
	"go.uber.org/zap"
)

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	options := server.NewOptions(WithMiddleware(mark("outer"), mark("inner")))
	ms, ok := MiddlewareFrom(options.Context)
	require.True(t, ok)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})
	for i := len(ms) - 1; i >= 0; i-- {
		handler = ms[i](handler)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestTraceContextSetsRequestId(t *testing.T) {
	handler := TraceContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get(headerRequestId))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestId, "req-1")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "req-1", rr.Header().Get(headerRequestId))
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":{"message":"internal server error","code":"INTERNAL"}}`, rr.Body.String())
}

func TestAccessLogKeepsStatus(t *testing.T) {
	handler := AccessLog(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestServerStartStop(t *testing.T) {
	srv := NewServer(
		server.WithAddress("127.0.0.1:0"),
		server.WithHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})),
		WithMiddleware(TraceContext),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	require.Eventually(t, func() bool {
		rsp, err := http.Get("http://" + srv.Address() + "/")
		if err != nil {
			return false
		}
		defer rsp.Body.Close()
		return rsp.StatusCode == http.StatusNoContent && len(rsp.Header.Get(headerRequestId)) > 0
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, <-errCh)
}

func TestNewServerRequiresHandler(t *testing.T) {
	assert.Panics(t, func() {
		NewServer(server.WithAddress("127.0.0.1:0"))
	})
}

func TestWithTLS(t *testing.T) {
	options := server.NewOptions(WithTLS("", "key.pem"))
	_, ok := TLSFrom(options.Context)
	assert.False(t, ok)

	options = server.NewOptions(WithTLS("cert.pem", "key.pem"))
	cert, ok := TLSFrom(options.Context)
	require.True(t, ok)
	assert.Equal(t, TLS{CertFile: "cert.pem", KeyFile: "key.pem"}, cert)
}

func TestStartFailsWithMissingCertificate(t *testing.T) {
	srv := NewServer(
		server.WithAddress("127.0.0.1:0"),
		server.WithHandler(http.NotFoundHandler()),
		WithTLS(filepath.Join(t.TempDir(), "missing.crt"), filepath.Join(t.TempDir(), "missing.key")),
	)

	assert.Error(t, srv.Start())
}
