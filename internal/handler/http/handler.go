package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/w-h-a/redflag/internal/service/analysis"
	"github.com/w-h-a/redflag/internal/service/user"
	"go.uber.org/zap"
)

type Handler struct {
	analysis *analysis.Service
	users    *user.Service
	logger   *zap.Logger
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Info("request rejected", fields...)
	}

	writeError(w, status, code, msg)
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analysis/upload", h.upload).Methods(http.MethodPost)
	api.HandleFunc("/analysis/{analysisId}", h.detail).Methods(http.MethodGet)
	api.HandleFunc("/user/issue", h.issueUser).Methods(http.MethodPost)
	api.HandleFunc("/user/me", h.currentUser).Methods(http.MethodGet)
}

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	h.Routes(r)
	return r
}

func NewHandler(analysisService *analysis.Service, userService *user.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{
		analysis: analysisService,
		users:    userService,
		logger:   logger,
	}
}
