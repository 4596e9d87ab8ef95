package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/notifications
func (h *Handler) List(c *gin.Context) {
	views, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// POST /api/notifications/mark-read
func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read"})
}

// DELETE /api/notifications/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c)); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification removed"})
}
