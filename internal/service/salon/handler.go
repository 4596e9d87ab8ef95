package salon

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/salons
func (h *Handler) List(c *gin.Context) {
	salons, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, salons)
}

// GET /api/salons/nearby?lng=100.5&lat=13.7[&name=]
func (h *Handler) Nearby(c *gin.Context) {
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	if errLng != nil || errLat != nil {
		c.Error(svcErr.BadRequest("Longitude and Latitude are required"))
		return
	}

	results, err := h.svc.Nearby(c.Request.Context(), orb.Point{lng, lat}, c.Query("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// POST /api/salons (admin)
func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	salon, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, salon)
}

// PUT /api/salons/:id (admin)
func (h *Handler) Update(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	salon, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, salon)
}

// DELETE /api/salons/:id (admin)
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Salon removed"})
}
