package httpx

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxUploadBytes = 8 << 20 // 8 MiB

var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// UploadsHandler simpan gambar produk/banner ke disk dengan nama uuid;
// serving-nya urusan reverse proxy / CDN.
type UploadsHandler struct {
	Dir string
	Log *zap.Logger
}

func (h *UploadsHandler) RegisterAdmin(r chi.Router) {
	r.Post("/uploads", h.upload)
}

func (h *UploadsHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid multipart body", nil)
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "file field is required", nil)
		return
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if !allowedImageExt[ext] {
		writeError(w, http.StatusBadRequest, "invalid_argument", "only png, jpg or webp images are accepted", nil)
		return
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		h.fail(w, err)
		return
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.Dir, name))
	if err != nil {
		h.fail(w, err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": "/uploads/" + name})
}

func (h *UploadsHandler) fail(w http.ResponseWriter, err error) {
	if h.Log != nil {
		h.Log.Error("upload failed", zap.Error(err))
	}
	writeError(w, http.StatusInternalServerError, "internal", "internal error", nil)
}
