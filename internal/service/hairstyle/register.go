package hairstyle

import (
	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
)

// Registrar ties the hairstyle routes into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// RegisterRoutes mounts /hairstyles. Reads are public, reviews need a
// token and catalogue writes need an admin.
func (r *Registrar) RegisterRoutes(api *gin.RouterGroup) {
	h := NewHandler(NewService(r.appCtx))
	protect := middleware.Protect(r.appCtx)

	g := api.Group("/hairstyles")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/reviews", h.Reviews)
	g.POST("/:id/reviews", protect, h.AddReview)

	admin := g.Group("", protect, middleware.AdminOnly())
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}
