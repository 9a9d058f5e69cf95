package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	headerTraceId   = "X-Trace-Id"
	headerRequestId = "X-Request-Id"
)

// TraceContext echoes a request id and the active trace id on every response.
func TraceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqId := strings.TrimSpace(r.Header.Get(headerRequestId))
		if len(reqId) == 0 {
			reqId = uuid.NewString()
		}

		traceId := ""
		if spanCtx := trace.SpanContextFromContext(r.Context()); spanCtx.HasTraceID() {
			traceId = spanCtx.TraceID().String()
		}

		w.Header().Set(headerRequestId, reqId)
		if len(traceId) > 0 {
			w.Header().Set(headerTraceId, traceId)
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// AccessLog logs one line per request.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", w.Header().Get(headerRequestId)),
			)
		})
	}
}

// Recover turns a handler panic into a 500.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("handler panicked", zap.Any("panic", v), zap.String("path", r.URL.Path))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":{"message":"internal server error","code":"INTERNAL"}}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
