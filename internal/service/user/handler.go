package user

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/users/register
func (h *Handler) Register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	payload, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

// POST /api/users/login
func (h *Handler) Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	payload, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// GET /api/users/profile
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Profile(middleware.CurrentUser(c)))
}

// PUT /api/users/profile accepts JSON or multipart with a profileImage file.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var in UpdateProfileInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in.Username = optionalForm(c, "username")
		in.Email = optionalForm(c, "email")
		in.Password = optionalForm(c, "password")
		if fh, err := c.FormFile("profileImage"); err == nil {
			in.ProfileImage = fh
		}
	} else if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.Error(svcErr.BadRequest("Invalid request body"))
			return
		}
	}

	payload, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// DELETE /api/users/profile
func (h *Handler) DeleteProfile(c *gin.Context) {
	if err := h.svc.DeleteProfile(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}

// GET /api/users/favorites
func (h *Handler) GetFavorites(c *gin.Context) {
	list, err := h.svc.Favorites(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/users/favorites
func (h *Handler) AddFavorite(c *gin.Context) {
	var in struct {
		HairstyleID string `json:"hairstyleId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	if err := h.svc.AddFavorite(c.Request.Context(), middleware.CurrentUser(c).ID, in.HairstyleID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Added to favorites"})
}

// DELETE /api/users/favorites/:id
func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := h.svc.RemoveFavorite(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites"})
}

// GET /api/users/saved-looks
func (h *Handler) GetSavedLooks(c *gin.Context) {
	looks, err := h.svc.SavedLooks(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, looks)
}

// POST /api/users/saved-looks (multipart, savedLookImage)
func (h *Handler) AddSavedLook(c *gin.Context) {
	fh, err := c.FormFile("savedLookImage")
	if err != nil {
		c.Error(svcErr.BadRequest("No image file uploaded"))
		return
	}
	looks, err := h.svc.AddSavedLook(c.Request.Context(), middleware.CurrentUser(c).ID, fh)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Look saved", "savedLooks": looks})
}

// DELETE /api/users/saved-looks
func (h *Handler) RemoveSavedLook(c *gin.Context) {
	var in struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	looks, err := h.svc.RemoveSavedLook(c.Request.Context(), middleware.CurrentUser(c).ID, in.ImageURL)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Look removed", "savedLooks": looks})
}

// POST /api/users/:id/follow
func (h *Handler) Follow(c *gin.Context) {
	if err := h.svc.Follow(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Followed"})
}

// DELETE /api/users/:id/follow
func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.svc.Unfollow(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

// GET /api/users/public/:id
func (h *Handler) GetPublicProfile(c *gin.Context) {
	profile, err := h.svc.PublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GET /api/users/search?q=
func (h *Handler) Search(c *gin.Context) {
	users, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func optionalForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}
