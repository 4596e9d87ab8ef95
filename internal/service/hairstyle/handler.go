package hairstyle

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
	"github.com/cutmatch/cutmatch-api/internal/repository"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/hairstyles[?tags=a,b&suitableFaceShapes=oval&gender=Unisex&search=bob]
func (h *Handler) List(c *gin.Context) {
	f := repository.HairstyleFilter{
		Tags:       commaList(c.Query("tags")),
		FaceShapes: commaList(c.Query("suitableFaceShapes")),
		Gender:     strings.TrimSpace(c.Query("gender")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/hairstyles/:id
func (h *Handler) Get(c *gin.Context) {
	hs, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, hs)
}

// POST /api/hairstyles (admin)
func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	hs, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, hs)
}

// PUT /api/hairstyles/:id (admin)
func (h *Handler) Update(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	hs, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, hs)
}

// DELETE /api/hairstyles/:id (admin)
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hairstyle removed"})
}

// GET /api/hairstyles/:id/reviews
func (h *Handler) Reviews(c *gin.Context) {
	views, err := h.svc.Reviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// POST /api/hairstyles/:id/reviews
func (h *Handler) AddReview(c *gin.Context) {
	var in ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	if _, err := h.svc.AddReview(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), in); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review added"})
}

func commaList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
