package comment

import (
	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
)

// Registrar ties the comment routes into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// RegisterRoutes mounts /posts/:id/comments. The post wildcard is named
// ":id" because gin requires one name per path segment across /posts routes.
func (r *Registrar) RegisterRoutes(api *gin.RouterGroup) {
	h := NewHandler(NewService(r.appCtx))

	g := api.Group("/posts/:id/comments", middleware.Protect(r.appCtx))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.POST("/:commentId/reply", h.Reply)
	g.PUT("/:commentId", h.Update)
	g.DELETE("/:commentId", h.Delete)
}
