package post

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/middleware"
	"github.com/cutmatch/cutmatch-api/internal/utils/pagination"
)

// NextCursorHeader carries the token of the next page when paginating.
const NextCursorHeader = "X-Next-Cursor"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/posts (multipart: text, linkedHairstyle, postImages[])
func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			c.Error(svcErr.BadRequest("Invalid multipart form"))
			return
		}
		in.Text = c.PostForm("text")
		in.LinkedHairstyleID = c.PostForm("linkedHairstyle")
		in.Images = form.File["postImages"]
	} else {
		var body struct {
			Text            string `json:"text"`
			LinkedHairstyle string `json:"linkedHairstyle"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Error(svcErr.BadRequest("Invalid request body"))
			return
		}
		in.Text, in.LinkedHairstyleID = body.Text, body.LinkedHairstyle
	}

	view, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GET /api/posts/feed[?limit=&cursor=]
func (h *Handler) Feed(c *gin.Context) {
	limit, token, ok := pageParams(c)
	if !ok {
		return
	}
	views, next, err := h.svc.Feed(c.Request.Context(), middleware.CurrentUser(c).ID, token, limit)
	if err != nil {
		c.Error(err)
		return
	}
	writePage(c, views, next)
}

// GET /api/posts/user/:userId[?limit=&cursor=]
func (h *Handler) ByUser(c *gin.Context) {
	limit, token, ok := pageParams(c)
	if !ok {
		return
	}
	views, next, err := h.svc.ByAuthor(c.Request.Context(), c.Param("userId"), token, limit)
	if err != nil {
		c.Error(err)
		return
	}
	writePage(c, views, next)
}

// PUT /api/posts/:id
func (h *Handler) Update(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(svcErr.BadRequest("Invalid request body"))
		return
	}
	view, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/posts/:id/like
func (h *Handler) Like(c *gin.Context) {
	view, err := h.svc.ToggleLike(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /api/posts/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post removed"})
}

func pageParams(c *gin.Context) (int, *string, bool) {
	limit, err := pagination.ParseLimit(c.Query("limit"))
	if err != nil {
		c.Error(svcErr.BadRequest(err.Error()))
		return 0, nil, false
	}
	var token *string
	if v := c.Query("cursor"); v != "" {
		token = &v
	}
	return limit, token, true
}

func writePage(c *gin.Context, views []View, next *string) {
	if next != nil {
		c.Header(NextCursorHeader, *next)
	}
	c.JSON(http.StatusOK, views)
}
