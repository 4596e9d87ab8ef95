package post

import (
	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
)

// Registrar ties the post routes into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// RegisterRoutes mounts /posts; every route requires a token.
func (r *Registrar) RegisterRoutes(api *gin.RouterGroup) {
	h := NewHandler(NewService(r.appCtx))

	g := api.Group("/posts", middleware.Protect(r.appCtx))
	g.POST("", h.Create)
	g.GET("/feed", h.Feed)
	g.GET("/user/:userId", h.ByUser)
	g.PUT("/:id", h.Update)
	g.POST("/:id/like", h.Like)
	g.DELETE("/:id", h.Delete)
}
