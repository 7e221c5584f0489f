package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"edulog/internal/identity"
)

// ListDepartments lists all departments.
func (h *Handler) ListDepartments(c *gin.Context) {
	depts, err := h.users.ListDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if depts == nil {
		depts = []identity.Department{}
	}
	c.JSON(http.StatusOK, depts)
}

type departmentRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateDepartment adds a department.
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dept := identity.Department{ID: uuid.NewString(), Name: req.Name}
	if err := h.users.CreateDepartment(c.Request.Context(), dept); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, dept)
}

// GetDepartment returns one department.
func (h *Handler) GetDepartment(c *gin.Context) {
	dept, err := h.users.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if dept == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		return
	}
	c.JSON(http.StatusOK, dept)
}

// UpdateDepartment renames a department.
func (h *Handler) UpdateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dept := identity.Department{ID: c.Param("id"), Name: req.Name}
	if err := h.users.UpdateDepartment(c.Request.Context(), dept); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, dept)
}

// DeleteDepartment removes a department; its users are detached, not
// deleted.
func (h *Handler) DeleteDepartment(c *gin.Context) {
	if err := h.users.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
