package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/interfaces"
	"github.com/m-mizutani/modkit/pkg/domain/model"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

const maxRequestBodySize = 1 << 20

type destRequest struct {
	Dest string `json:"dest"`
}

type extractRequest struct {
	Archive string `json:"archive"`
	Dest    string `json:"dest"`
}

type deleteRequest struct {
	Path string `json:"path"`
}

type launchRequest struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ModFilesetHandler exposes ModFilesetUseCase operations as JSON endpoints
type ModFilesetHandler struct {
	uc interfaces.ModFilesetUseCase
}

// NewModFilesetHandler creates a new ModFilesetHandler
func NewModFilesetHandler(uc interfaces.ModFilesetUseCase) *ModFilesetHandler {
	return &ModFilesetHandler{uc: uc}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return goerr.Wrap(err, "invalid JSON request", goerr.T(types.ErrTagInvalidRequest))
	}
	return nil
}

// requireFields takes name/value pairs and rejects the first empty value
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return goerr.New("required field is empty",
				goerr.T(types.ErrTagInvalidRequest),
				goerr.V("field", pairs[i]))
		}
	}
	return nil
}

// InstallRuntime handles POST /runtime/install
func (h *ModFilesetHandler) InstallRuntime(w http.ResponseWriter, r *http.Request) {
	var req destRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireFields("dest", req.Dest); err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.uc.InstallRuntime(r.Context(), req.Dest)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, &messageResponse{Message: msg})
}

// RemoveRuntime handles POST /runtime/remove
func (h *ModFilesetHandler) RemoveRuntime(w http.ResponseWriter, r *http.Request) {
	var req destRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireFields("dest", req.Dest); err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.uc.RemoveRuntimeFootprint(r.Context(), req.Dest)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, &messageResponse{Message: msg})
}

// RuntimeStatus handles GET /runtime/status?dest=...
func (h *ModFilesetHandler) RuntimeStatus(w http.ResponseWriter, r *http.Request) {
	dest := r.URL.Query().Get("dest")
	if err := requireFields("dest", dest); err != nil {
		writeError(w, r, err)
		return
	}

	status, err := h.uc.FootprintStatus(r.Context(), dest)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// ExtractArchive handles POST /archives/extract. The archive is deleted on success.
func (h *ModFilesetHandler) ExtractArchive(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireFields("archive", req.Archive, "dest", req.Dest); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.uc.ExtractAndCleanup(r.Context(), req.Archive, req.Dest); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download handles POST /downloads
func (h *ModFilesetHandler) Download(w http.ResponseWriter, r *http.Request) {
	var task model.DownloadTask
	if err := decodeRequest(w, r, &task); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireFields("url", task.URL, "dest", task.DestPath); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.uc.Download(r.Context(), task.URL, task.DestPath); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePath handles POST /paths/delete
func (h *ModFilesetHandler) DeletePath(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireFields("path", req.Path); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.uc.Delete(r.Context(), req.Path); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Launch handles POST /launch. It always answers 202 once the request is
// decoded, whether or not the executable could be started.
func (h *ModFilesetHandler) Launch(w http.ResponseWriter, r *http.Request) {
	var req launchRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	h.uc.Launch(r.Context(), req.Path, req.Args)
	w.WriteHeader(http.StatusAccepted)
}
