package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luc4spas/erp-joy-maker/internal/importer"
	"github.com/luc4spas/erp-joy-maker/internal/middleware"
)

// maxUploadSize largest accepted spreadsheet
const maxUploadSize = 20 << 20

// Import runs an uploaded spreadsheet through the pipeline (SSE response).
// The done event carries the batch preview; save=true also stores the closing.
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload field \"file\""})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	_ = file.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		UserID:      middleware.UserID(c),
		Filename:    fileHeader.Filename,
		Data:        data,
		SaveClosing: c.DefaultPostForm("save", "false") == "true",
	})

	for event := range progressChan {
		if report, ok := event.Data.(*importer.ImportReport); ok && event.Type == importer.EventDone {
			roundBatchInPlace(&report.Result.Batch)
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// ListImports recent import logs
// GET /api/imports
func (h *Handler) ListImports(c *gin.Context) {
	logs, err := h.store.ListImportLogs(c.Request.Context(), middleware.UserID(c), parseIntWithDefault(c.Query("limit"), 20))
	if err != nil {
		respondStoreError(c, err, "list imports")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": logs})
}
