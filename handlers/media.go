package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/reelbase/catalog/apperr"
	"github.com/reelbase/catalog/service"
	"github.com/reelbase/catalog/utils"
)

// Uploader puts an object into media storage and returns its key.
type Uploader interface {
	Upload(ctx context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error)
}

type MediaHandler struct {
	Media    Uploader
	MaxBytes int64
	Log      *zap.Logger
}

type UploadResponse struct {
	Key         string `json:"key"`
	Locator     string `json:"locator"`
	ContentType string `json:"contentType"`
}

var videoExts = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
}

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Upload accepts a multipart "file" part holding a video or a thumbnail image
// and stores it in the media bucket. The returned locator can be used as
// contentUrl or thumbnailUrl.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	// Parts beyond 32 MiB spill to temp files instead of memory.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.WriteError(w, h.Log, apperr.Invalid("file", "failed to parse multipart form"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, h.Log, apperr.Invalid("file", "field 'file' is required"))
		return
	}
	defer file.Close()

	prefix, contentType, ok := classifyMedia(header.Filename, header.Header.Get("Content-Type"))
	if !ok {
		utils.WriteError(w, h.Log, apperr.Invalid("file", "only video and image files are allowed"))
		return
	}

	key, err := h.Media.Upload(r.Context(), prefix, header.Filename, file, contentType)
	if err != nil {
		utils.WriteError(w, h.Log, apperr.Internal(err))
		return
	}
	h.Log.Info("media uploaded",
		zap.String("key", key),
		zap.String("contentType", contentType),
		zap.Int64("size", header.Size))
	utils.WriteJSON(w, http.StatusCreated, UploadResponse{
		Key:         key,
		Locator:     service.MediaLocator(key),
		ContentType: contentType,
	})
}

// classifyMedia picks the bucket prefix and content type, trusting the file
// extension over the part's declared type.
func classifyMedia(filename, declared string) (prefix, contentType string, ok bool) {
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(filename)))
	if ct, found := videoExts[ext]; found {
		return "videos/", ct, true
	}
	if ct, found := imageExts[ext]; found {
		return "thumbnails/", ct, true
	}
	declared = strings.ToLower(declared)
	switch {
	case strings.HasPrefix(declared, "video/"):
		return "videos/", declared, true
	case strings.HasPrefix(declared, "image/"):
		return "thumbnails/", declared, true
	}
	return "", "", false
}
