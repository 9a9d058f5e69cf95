package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/w-h-a/redflag/internal/service/analysis"
	"go.uber.org/zap"
)

// multipart framing on top of the largest accepted image
const maxUploadBody = analysis.MaxImageSize + 1<<20

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	userId, err := identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, string(analysis.TooLarge), "the image exceeds the 10 MiB limit")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, string(analysis.EmptyFile), "the image field is required")
		return
	}
	defer file.Close()

	h.logger.Info("upload received",
		zap.Stringer("userId", userId),
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	res, err := h.analysis.Upload(r.Context(), userId, analysis.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	userId, err := identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	analysisId, err := uuid.Parse(mux.Vars(r)["analysisId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ANALYSIS_ID", "the analysis id is not a valid UUID")
		return
	}

	detail, err := h.analysis.Detail(r.Context(), userId, analysisId)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
