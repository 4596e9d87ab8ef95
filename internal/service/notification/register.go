package notification

import (
	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
)

// Registrar ties the notification routes into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// RegisterRoutes mounts /notifications; every route requires a token.
func (r *Registrar) RegisterRoutes(api *gin.RouterGroup) {
	h := NewHandler(NewService(r.appCtx))

	g := api.Group("/notifications", middleware.Protect(r.appCtx))
	g.GET("", h.List)
	g.POST("/mark-read", h.MarkRead)
	g.DELETE("/:id", h.Delete)
}
