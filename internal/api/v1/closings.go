package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/luc4spas/erp-joy-maker/internal/calculator"
	"github.com/luc4spas/erp-joy-maker/internal/exporter"
	"github.com/luc4spas/erp-joy-maker/internal/middleware"
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

// CreateClosing persists a previewed batch as the closing of its report date (today when absent)
// POST /api/closings
func (h *Handler) CreateClosing(c *gin.Context) {
	var batch model.Batch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch: " + err.Error()})
		return
	}
	if batch.ReportDate != nil && *batch.ReportDate != "" {
		if !validDate(*batch.ReportDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reportDate, use YYYY-MM-DD"})
			return
		}
	}

	record := model.NewClosingRecord(batch, middleware.UserID(c), h.now())
	if err := h.store.CreateClosing(c.Request.Context(), &record); err != nil {
		respondStoreError(c, err, "save closing")
		return
	}

	log.WithFields(log.Fields{"user_id": record.UserID, "date": record.Date}).Info("closing saved")
	c.JSON(http.StatusCreated, record)
}

// ListClosings closings of the tenant in date order
// GET /api/closings
func (h *Handler) ListClosings(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	closings, err := h.store.ListClosings(c.Request.Context(), store.ClosingQueryOptions{
		UserID: middleware.UserID(c),
		From:   from,
		To:     to,
		Limit:  parseIntWithDefault(c.Query("limit"), 0),
		Offset: parseIntWithDefault(c.Query("offset"), 0),
	})
	if err != nil {
		respondStoreError(c, err, "list closings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"closings": closings,
		"total":    len(closings),
	})
}

// GetClosing one closing
// GET /api/closings/:id
func (h *Handler) GetClosing(c *gin.Context) {
	closing, err := h.store.GetClosing(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "get closing")
		return
	}
	c.JSON(http.StatusOK, closing)
}

// DeleteClosing removes a closing
// DELETE /api/closings/:id
func (h *Handler) DeleteClosing(c *gin.Context) {
	if err := h.store.DeleteClosing(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondStoreError(c, err, "delete closing")
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportClosings closing history workbook
// GET /api/closings/export
func (h *Handler) ExportClosings(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), exporter.ExportOptions{
		UserID: middleware.UserID(c),
		From:   from,
		To:     to,
	})
	if err != nil {
		respondStoreError(c, err, "export closings")
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(from, to)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		log.WithError(err).Warn("failed to stream closing export")
	}
}

// GetSummary dashboard figures over a date range
// GET /api/summary
func (h *Handler) GetSummary(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	closings, err := h.store.ListClosings(ctx, store.ClosingQueryOptions{UserID: userID, From: from, To: to})
	if err != nil {
		respondStoreError(c, err, "load closings")
		return
	}
	expenses, err := h.store.ListExpenses(ctx, userID, from, to)
	if err != nil {
		respondStoreError(c, err, "load expenses")
		return
	}

	c.JSON(http.StatusOK, roundRangeSummary(calculator.SummarizeRange(closings, expenses)))
}

func exportFilename(from, to *string) string {
	switch {
	case from != nil && to != nil:
		return fmt.Sprintf("fechamentos-%s-a-%s.xlsx", *from, *to)
	case from != nil:
		return fmt.Sprintf("fechamentos-desde-%s.xlsx", *from)
	case to != nil:
		return fmt.Sprintf("fechamentos-ate-%s.xlsx", *to)
	}
	return "fechamentos.xlsx"
}
