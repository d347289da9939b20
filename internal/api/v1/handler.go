package v1

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/luc4spas/erp-joy-maker/internal/exporter"
	"github.com/luc4spas/erp-joy-maker/internal/importer"
	"github.com/luc4spas/erp-joy-maker/internal/middleware"
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/rateio"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

// Handler API handlers
type Handler struct {
	store       *store.Store
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
	policy      rateio.Policy
	now         func() time.Time

	seqMu      sync.Mutex
	sequencers map[string]*rateio.Sequencer
}

// NewHandler creates the API handler
func NewHandler(st *store.Store, coordinator *importer.Coordinator, policy rateio.Policy) *Handler {
	if coordinator == nil {
		coordinator = importer.NewCoordinator(st, nil, nil)
	}
	return &Handler{
		store:       st,
		coordinator: coordinator,
		exporter:    exporter.NewExporter(st),
		policy:      policy,
		now:         time.Now,
		sequencers:  make(map[string]*rateio.Sequencer),
	}
}

// RegisterRoutes registers the API routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// ingestion
	router.POST("/import", h.Import)
	router.GET("/imports", h.ListImports)

	// closings
	router.POST("/closings", h.CreateClosing)
	router.GET("/closings", h.ListClosings)
	router.GET("/closings/export", h.ExportClosings)
	router.GET("/closings/:id", h.GetClosing)
	router.DELETE("/closings/:id", h.DeleteClosing)
	router.GET("/summary", h.GetSummary)

	// staff
	router.GET("/staff", h.ListStaff)
	router.POST("/staff", h.CreateStaff)
	router.PATCH("/staff/:id", h.UpdateStaff)
	router.DELETE("/staff/:id", h.DeactivateStaff)

	// expenses
	router.GET("/expenses", h.ListExpenses)
	router.POST("/expenses", h.CreateExpense)
	router.DELETE("/expenses/:id", h.DeleteExpense)

	// weekly commission
	router.GET("/rateio", h.GetRateio)
	router.GET("/rateio/current", h.GetCurrentRateio)
	router.GET("/rateio/export", h.ExportRateio)
	router.POST("/rateio/payments", h.TogglePaid)
}

// sequencer latest-wins gate of one tenant
func (h *Handler) sequencer(userID string) *rateio.Sequencer {
	h.seqMu.Lock()
	defer h.seqMu.Unlock()

	seq, ok := h.sequencers[userID]
	if !ok {
		seq = &rateio.Sequencer{}
		h.sequencers[userID] = seq
	}
	return seq
}

// dateRange reads optional from/to query parameters
func dateRange(c *gin.Context) (from, to *string, ok bool) {
	for _, key := range []string{"from", "to"} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		if !validDate(v) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + " date, use YYYY-MM-DD"})
			return nil, nil, false
		}
		value := v
		if key == "from" {
			from = &value
		} else {
			to = &value
		}
	}
	return from, to, true
}

func validDate(v string) bool {
	_, err := time.Parse(model.DateLayout, v)
	return err == nil
}

func parseIntWithDefault(v string, d int) int {
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return d
	}
	return n
}

// respondStoreError maps store sentinels to HTTP statuses
func respondStoreError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrClosingExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithField("user_id", middleware.UserID(c)).Errorf("failed to %s", action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
	}
}
