package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luc4spas/erp-joy-maker/internal/middleware"
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

type createStaffRequest struct {
	Name   string       `json:"name"`
	Sector model.Sector `json:"sector"`
	Brand  model.Brand  `json:"brand"`
	Active *bool        `json:"active"`
}

// ListStaff roster of the tenant; all=true includes inactive members
// GET /api/staff
func (h *Handler) ListStaff(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	staff, err := h.store.ListStaff(c.Request.Context(), middleware.UserID(c), activeOnly)
	if err != nil {
		respondStoreError(c, err, "list staff")
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// CreateStaff adds a staff member
// POST /api/staff
func (h *Handler) CreateStaff(c *gin.Context) {
	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if !req.Sector.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sector"})
		return
	}
	if !req.Brand.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand"})
		return
	}

	member := model.StaffMember{
		UserID: middleware.UserID(c),
		Name:   req.Name,
		Sector: req.Sector,
		Brand:  req.Brand,
		Active: req.Active == nil || *req.Active,
	}
	if err := h.store.CreateStaff(c.Request.Context(), &member); err != nil {
		respondStoreError(c, err, "create staff member")
		return
	}
	c.JSON(http.StatusCreated, member)
}

// UpdateStaff partial update of a staff member
// PATCH /api/staff/:id
func (h *Handler) UpdateStaff(c *gin.Context) {
	var upd store.StaffUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
		return
	}
	if upd.Sector != nil && !upd.Sector.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sector"})
		return
	}
	if upd.Brand != nil && !upd.Brand.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand"})
		return
	}

	member, err := h.store.UpdateStaff(c.Request.Context(), middleware.UserID(c), c.Param("id"), upd)
	if err != nil {
		respondStoreError(c, err, "update staff member")
		return
	}
	c.JSON(http.StatusOK, member)
}

// DeactivateStaff removes a staff member from future distributions
// DELETE /api/staff/:id
func (h *Handler) DeactivateStaff(c *gin.Context) {
	if err := h.store.DeactivateStaff(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondStoreError(c, err, "deactivate staff member")
		return
	}
	c.Status(http.StatusNoContent)
}
