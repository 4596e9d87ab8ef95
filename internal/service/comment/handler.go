package comment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
)

type textBody struct {
	Text string `json:"text"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/posts/:id/comments
func (h *Handler) Create(c *gin.Context) {
	var in textBody
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	view, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), in.Text)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GET /api/posts/:id/comments
func (h *Handler) List(c *gin.Context) {
	views, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// POST /api/posts/:id/comments/:commentId/reply
func (h *Handler) Reply(c *gin.Context) {
	var in textBody
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	view, err := h.svc.Reply(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("commentId"), in.Text)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// PUT /api/posts/:id/comments/:commentId
func (h *Handler) Update(c *gin.Context) {
	var in textBody
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	view, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("commentId"), in.Text)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /api/posts/:id/comments/:commentId
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("commentId")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment removed"})
}
