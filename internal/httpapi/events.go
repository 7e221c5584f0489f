package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"edulog/internal/events"
)

// ListEvents lists all events, newest date first.
func (h *Handler) ListEvents(c *gin.Context) {
	evs, err := h.events.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if evs == nil {
		evs = []events.Event{}
	}
	c.JSON(http.StatusOK, evs)
}

type eventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Date        string  `json:"date" binding:"required"`
	Location    *string `json:"location"`
}

// CreateEvent inserts a calendar event.
func (h *Handler) CreateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := h.events.Create(c.Request.Context(), events.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// GetEvent returns one event.
func (h *Handler) GetEvent(c *gin.Context) {
	ev, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if ev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, ev)
}

// UpdateEvent replaces an event's fields.
func (h *Handler) UpdateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := h.events.Update(c.Request.Context(), events.Event{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if ev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DeleteEvent removes an event.
func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if err == events.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// UpcomingEvents serves the next five events from today onward.
func (h *Handler) UpcomingEvents(c *gin.Context) {
	today := time.Now().UTC().Format("2006-01-02")
	evs, err := h.events.Upcoming(c.Request.Context(), today, 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	out := make([]gin.H, 0, len(evs))
	for _, ev := range evs {
		out = append(out, gin.H{
			"title":       ev.Title,
			"date":        ev.Date,
			"location":    ev.Location,
			"description": ev.Description,
		})
	}
	c.JSON(http.StatusOK, out)
}
