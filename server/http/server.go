package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/w-h-a/redflag/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type httpServer struct {
	options server.Options
	srv     *http.Server
	mtx     sync.RWMutex
	addr    string
}

func (s *httpServer) Start() error {
	ln, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	s.addr = ln.Addr().String()
	s.mtx.Unlock()

	if cert, ok := TLSFrom(s.options.Context); ok {
		s.options.Logger.Info("https server listening", zap.String("address", s.Address()))
		err = s.srv.ServeTLS(ln, cert.CertFile, cert.KeyFile)
	} else {
		s.options.Logger.Info("http server listening", zap.String("address", s.Address()))
		err = s.srv.Serve(ln)
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()

	s.options.Logger.Info("http server stopping")

	return s.srv.Shutdown(ctx)
}

func (s *httpServer) Address() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if len(s.addr) > 0 {
		return s.addr
	}
	return s.options.Address
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	if options.Handler == nil {
		detail := "an http handler is required"
		options.Logger.Error(detail)
		panic(detail)
	}

	handler := options.Handler

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	handler = otelhttp.NewHandler(handler, "redflag")

	return &httpServer{
		options: options,
		srv: &http.Server{
			Addr:         options.Address,
			Handler:      handler,
			ReadTimeout:  options.ReadTimeout,
			WriteTimeout: options.WriteTimeout,
		},
	}
}
