package user

import (
	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
)

// Registrar ties the user routes into the HTTP server
type Registrar struct {
	appCtx   *app.AppContext
	notifier FollowNotifier
}

func NewRegistrar(appCtx *app.AppContext, notifier FollowNotifier) *Registrar {
	return &Registrar{appCtx: appCtx, notifier: notifier}
}

// RegisterRoutes mounts /users. register, login and public profiles are open.
func (r *Registrar) RegisterRoutes(api *gin.RouterGroup) {
	h := NewHandler(NewService(r.appCtx, r.notifier))
	protect := middleware.Protect(r.appCtx)

	g := api.Group("/users")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/public/:id", h.GetPublicProfile)

	g.GET("/profile", protect, h.GetProfile)
	g.PUT("/profile", protect, h.UpdateProfile)
	g.DELETE("/profile", protect, h.DeleteProfile)

	g.GET("/search", protect, h.Search)

	g.GET("/favorites", protect, h.GetFavorites)
	g.POST("/favorites", protect, h.AddFavorite)
	g.DELETE("/favorites/:id", protect, h.RemoveFavorite)

	g.GET("/saved-looks", protect, h.GetSavedLooks)
	g.POST("/saved-looks", protect, h.AddSavedLook)
	g.DELETE("/saved-looks", protect, h.RemoveSavedLook)

	g.POST("/:id/follow", protect, h.Follow)
	g.DELETE("/:id/follow", protect, h.Unfollow)
}
