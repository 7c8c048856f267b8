package api

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/pkg/logger"
)

// multipartSlack covers form boundaries and part headers.
const multipartSlack = 1 << 20

// DatasetsHandler handles uploads and dataset metadata.
type DatasetsHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(deps Dependencies, maxBytes int64) *DatasetsHandler {
	return &DatasetsHandler{deps: deps, maxBytes: maxBytes}
}

type uploadResponse struct {
	ID           string             `json:"id"`
	Rows         int                `json:"rows"`
	Cached       bool               `json:"cached"`
	Capabilities model.Capabilities `json:"capabilities"`
	Source       model.Source       `json:"source"`
}

// HandleUpload handles POST /datasets. The body is either multipart with a
// "file" part or the raw file with ?filename=.
func (h *DatasetsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartSlack)

	name, body, size, err := uploadBody(r)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	up, err := h.deps.Ingest(ctx, name, body, size)
	if err != nil {
		writeFailure(w, op, err)
		return
	}

	t := up.Table
	if sid := r.Header.Get(SessionHeader); sid != "" {
		if err := h.deps.AttachDataset(ctx, sid, t.Source.ID); err != nil {
			logger.Get().Warn(ctx, "session not updated", logger.String("session", sid), logger.Error(err))
		}
	}
	status := http.StatusCreated
	if up.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, uploadResponse{
		ID:           t.Source.ID,
		Rows:         t.Len(),
		Cached:       up.Cached,
		Capabilities: t.Capabilities,
		Source:       t.Source,
	})
}

// uploadBody locates the file within r without buffering it.
func uploadBody(r *http.Request) (string, io.Reader, int64, error) {
	const op = "api.upload_body"
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.URL.Query().Get("filename"), r.Body, r.ContentLength, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, 0, WrapKind(op, ErrBadRequest, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, 0, NewKind(op, ErrNoFile)
		}
		if err != nil {
			return "", nil, 0, WrapKind(op, ErrBadRequest, err)
		}
		if part.FormName() == "file" {
			return part.FileName(), part, -1, nil
		}
		_ = part.Close()
	}
}

// HandleDelete handles DELETE /datasets/{id}.
func (h *DatasetsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DropDataset(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "api.delete_dataset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleOptions handles GET /datasets/{id}/options.
func (h *DatasetsHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.deps.Options(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "api.options", err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

