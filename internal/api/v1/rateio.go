package v1

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/luc4spas/erp-joy-maker/internal/middleware"
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/rateio"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

type togglePaidRequest struct {
	StaffID   string  `json:"staffId"`
	WeekStart string  `json:"weekStart"`
	Amount    float64 `json:"amount"`
	Paid      bool    `json:"paid"`
}

type rateioResponse struct {
	rateio.Result
	Distributed float64 `json:"distributed"`
	Stale       bool    `json:"stale,omitempty"`
}

// GetRateio weekly commission distribution of the week containing date (default today)
// GET /api/rateio
func (h *Handler) GetRateio(c *gin.Context) {
	week, ok := h.weekParam(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	res, current, err := h.computeRateio(c.Request.Context(), userID, week)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to compute rateio")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute rateio"})
		return
	}
	c.JSON(http.StatusOK, newRateioResponse(res, !current))
}

// GetCurrentRateio recomputes the week last requested through GetRateio, or the current week
// GET /api/rateio/current
func (h *Handler) GetCurrentRateio(c *gin.Context) {
	userID := middleware.UserID(c)
	week, ok := h.sequencer(userID).Week()
	if !ok {
		week = rateio.WeekWindow(h.now(), h.policy.WeekStart)
	}

	res, current, err := h.computeRateio(c.Request.Context(), userID, week)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to compute rateio")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute rateio"})
		return
	}
	c.JSON(http.StatusOK, newRateioResponse(res, !current))
}

// ExportRateio payout sheet of a week as CSV
// GET /api/rateio/export
func (h *Handler) ExportRateio(c *gin.Context) {
	week, ok := h.weekParam(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	res, err := h.allocateWeek(c.Request.Context(), userID, week)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to compute rateio")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute rateio"})
		return
	}

	var buf bytes.Buffer
	if err := rateio.NewPayoutRows(roundRateioResult(res)).ToCSV(&buf); err != nil {
		log.WithError(err).Error("failed to write payout csv")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export rateio"})
		return
	}

	filename := fmt.Sprintf("rateio_%s.csv", week.StartDate())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// TogglePaid records whether a staff member was paid for a week
// POST /api/rateio/payments
func (h *Handler) TogglePaid(c *gin.Context) {
	var req togglePaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.StaffID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staffId is required"})
		return
	}
	week, err := rateio.WeekOf(req.WeekStart, h.policy.WeekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weekStart, use YYYY-MM-DD"})
		return
	}
	if req.Amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
		return
	}

	confirmation, err := h.store.SetPaid(c.Request.Context(), middleware.UserID(c), model.PaymentConfirmation{
		StaffID:   req.StaffID,
		WeekStart: week.StartDate(),
		Amount:    roundMoney(req.Amount),
		Paid:      req.Paid,
	})
	if err != nil {
		respondStoreError(c, err, "record payment")
		return
	}
	c.JSON(http.StatusOK, confirmation)
}

// weekParam reads the date query parameter, defaulting to today
func (h *Handler) weekParam(c *gin.Context) (rateio.Week, bool) {
	date := c.Query("date")
	if date == "" {
		return rateio.WeekWindow(h.now(), h.policy.WeekStart), true
	}
	week, err := rateio.WeekOf(date, h.policy.WeekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return rateio.Week{}, false
	}
	return week, true
}

// computeRateio allocates the week and makes it the tenant's current one;
// current is false when a newer request superseded this one
func (h *Handler) computeRateio(ctx context.Context, userID string, week rateio.Week) (rateio.Result, bool, error) {
	seq := h.sequencer(userID)
	ticket := seq.Begin(week)

	res, err := h.allocateWeek(ctx, userID, week)
	if err != nil {
		return rateio.Result{}, false, err
	}
	current := seq.Current(ticket)
	if !current {
		log.WithFields(log.Fields{"user_id": userID, "week": week.StartDate()}).Debug("rateio result superseded by a newer request")
	}
	return res, current, nil
}

// allocateWeek loads the week's closings, active staff and payments and allocates them
func (h *Handler) allocateWeek(ctx context.Context, userID string, week rateio.Week) (rateio.Result, error) {
	from, to := week.StartDate(), week.EndDate()
	closings, err := h.store.ListClosings(ctx, store.ClosingQueryOptions{UserID: userID, From: &from, To: &to})
	if err != nil {
		return rateio.Result{}, err
	}
	staff, err := h.store.ListStaff(ctx, userID, true)
	if err != nil {
		return rateio.Result{}, err
	}
	confirmations, err := h.store.ListConfirmations(ctx, userID, from, to)
	if err != nil {
		return rateio.Result{}, err
	}
	return rateio.Allocate(week, closings, staff, confirmations, h.policy), nil
}

func newRateioResponse(res rateio.Result, stale bool) rateioResponse {
	return rateioResponse{
		Result:      roundRateioResult(res),
		Distributed: roundMoney(res.Distributed()),
		Stale:       stale,
	}
}
