// files.go serves stored uploads back to their owners.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/storage"
)

// GetFile streams a stored upload.
// GET /api/v1/files/*key
//
// Other users' files are reported as 404 so keys cannot be probed.
func (h *Handler) GetFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if h.Storage == nil {
		errorJSON(c, http.StatusNotFound, "not_found", "File not found")
		return
	}

	key := c.Param("key")
	if storage.Owner(key) != user.ID {
		errorJSON(c, http.StatusNotFound, "not_found", "File not found")
		return
	}

	f, info, err := h.Storage.Open(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrInvalidKey) {
			log.Printf("❌ Failed to open stored file %s: %v", key, err)
		}
		errorJSON(c, http.StatusNotFound, "not_found", "File not found")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+path.Base(key)+`"`)
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
