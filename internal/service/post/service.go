package post

import (
	"context"
	"errors"
	"mime/multipart"
	"slices"
	"strings"
	"time"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/repository"
	"github.com/cutmatch/cutmatch-api/internal/upload"
	"github.com/cutmatch/cutmatch-api/internal/utils/pagination"
)

// MaxImages is the most images a single post may carry.
const MaxImages = 10

// HairstyleSummary is the part of a hairstyle embedded in a post.
type HairstyleSummary struct {
	ID        string        `json:"_id"`
	Name      string        `json:"name"`
	ImageURLs db.StringList `json:"imageUrls"`
}

// View is a post with author and linked hairstyle expanded.
type View struct {
	ID              string            `json:"_id"`
	Author          *db.UserSummary   `json:"author"`
	Text            string            `json:"text"`
	ImageURLs       db.StringList     `json:"imageUrls"`
	LinkedHairstyle *HairstyleSummary `json:"linkedHairstyle"`
	Likes           db.StringList     `json:"likes"`
	CommentCount    int               `json:"commentCount"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type CreateInput struct {
	Text              string
	LinkedHairstyleID string
	Images            []*multipart.FileHeader
}

// UpdateInput carries only the fields the caller sent.
type UpdateInput struct {
	Text              *string `json:"text"`
	LinkedHairstyleID *string `json:"linkedHairstyle"`
}

// Service implements posts, the feed and likes.
type Service struct {
	appCtx     *app.AppContext
	posts      *repository.PostRepository
	users      *repository.UserRepository
	hairstyles *repository.HairstyleRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		posts:      repository.NewPostRepository(appCtx.DB),
		users:      repository.NewUserRepository(appCtx.DB),
		hairstyles: repository.NewHairstyleRepository(appCtx.DB),
	}
}

// Create publishes a post by authorID.
//
// Behavior:
//   - Up to MaxImages files, uploaded in order; their URLs keep that order.
//   - An empty LinkedHairstyleID leaves the post unlinked.
//   - The author's cached post count is invalidated.
func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (*View, error) {
	if len(in.Images) > MaxImages {
		return nil, svcErr.BadRequest("A post can have at most 10 images")
	}

	urls, err := upload.SaveFiles(ctx, s.appCtx.Uploads, in.Images, s.appCtx.Config.Upload.MaxBytes)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	p := &db.Post{
		AuthorID:  authorID,
		Text:      strings.TrimSpace(in.Text),
		ImageURLs: urls,
	}
	if id := strings.TrimSpace(in.LinkedHairstyleID); id != "" {
		p.LinkedHairstyleID = &id
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, svcErr.Map(err)
	}
	s.invalidateCount(ctx, authorID)

	s.appCtx.Logger.Debug("post created", "post_id", p.ID, "author", authorID, "images", len(urls))
	return s.view(ctx, p)
}

// Feed returns posts by userID and everyone userID follows, newest first.
// limit <= 0 returns the whole feed.
func (s *Service) Feed(ctx context.Context, userID string, token *string, limit int) ([]View, *string, error) {
	me, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, svcErr.MapNotFound(err, "User not found")
	}
	authors := append(slices.Clone([]string(me.Following)), me.ID)
	return s.list(ctx, authors, token, limit)
}

// ByAuthor returns posts written by authorID, newest first.
func (s *Service) ByAuthor(ctx context.Context, authorID string, token *string, limit int) ([]View, *string, error) {
	return s.list(ctx, []string{authorID}, token, limit)
}

// Update edits text and linked hairstyle. Only the author may do so.
func (s *Service) Update(ctx context.Context, caller *db.User, postID string, in UpdateInput) (*View, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "Post not found")
	}
	if p.AuthorID != caller.ID {
		return nil, svcErr.Forbidden("User not authorized")
	}

	if in.Text != nil {
		p.Text = strings.TrimSpace(*in.Text)
	}
	if in.LinkedHairstyleID != nil {
		if id := strings.TrimSpace(*in.LinkedHairstyleID); id != "" {
			p.LinkedHairstyleID = &id
		} else {
			p.LinkedHairstyleID = nil
		}
	}
	if err := s.posts.UpdateContent(ctx, p); err != nil {
		return nil, svcErr.Map(err)
	}
	return s.view(ctx, p)
}

// ToggleLike adds callerID to the likes, or removes it when already there.
// Two calls restore the original membership.
func (s *Service) ToggleLike(ctx context.Context, callerID, postID string) (*View, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "Post not found")
	}

	if i := slices.Index(p.Likes, callerID); i >= 0 {
		p.Likes = slices.Delete(p.Likes, i, i+1)
	} else {
		p.Likes = append(p.Likes, callerID)
	}
	if err := s.posts.UpdateLikes(ctx, p); err != nil {
		return nil, svcErr.Map(err)
	}
	return s.view(ctx, p)
}

// Delete removes a post and all its comments. Only the author may do so.
func (s *Service) Delete(ctx context.Context, caller *db.User, postID string) error {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return svcErr.MapNotFound(err, "Post not found")
	}
	if p.AuthorID != caller.ID {
		return svcErr.Forbidden("User not authorized")
	}
	if err := s.posts.DeleteWithComments(ctx, postID); err != nil {
		return svcErr.Map(err)
	}
	s.invalidateCount(ctx, p.AuthorID)

	s.appCtx.Logger.Info("post deleted", "post_id", postID, "author", p.AuthorID)
	return nil
}

func (s *Service) list(ctx context.Context, authors []string, token *string, limit int) ([]View, *string, error) {
	posts, next, err := s.posts.ListByAuthors(ctx, authors, token, limit)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidToken) {
			return nil, nil, svcErr.BadRequest("Invalid cursor")
		}
		return nil, nil, svcErr.Map(err)
	}
	views, err := s.populate(ctx, posts)
	if err != nil {
		return nil, nil, err
	}
	return views, next, nil
}

func (s *Service) view(ctx context.Context, p *db.Post) (*View, error) {
	views, err := s.populate(ctx, []db.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// populate expands authors and linked hairstyles with one query each.
func (s *Service) populate(ctx context.Context, posts []db.Post) ([]View, error) {
	authorIDs := make([]string, 0, len(posts))
	hairstyleIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		if p.LinkedHairstyleID != nil {
			hairstyleIDs = append(hairstyleIDs, *p.LinkedHairstyleID)
		}
	}

	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	hairstyles, err := s.hairstyles.GetByIDs(ctx, hairstyleIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	views := make([]View, 0, len(posts))
	for _, p := range posts {
		v := View{
			ID:           p.ID,
			Author:       authors[p.AuthorID].Summary(),
			Text:         p.Text,
			ImageURLs:    p.ImageURLs,
			Likes:        p.Likes,
			CommentCount: p.CommentCount,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}
		if p.LinkedHairstyleID != nil {
			if h, ok := hairstyles[*p.LinkedHairstyleID]; ok {
				v.LinkedHairstyle = &HairstyleSummary{ID: h.ID, Name: h.Name, ImageURLs: h.ImageURLs}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) invalidateCount(ctx context.Context, authorID string) {
	if err := s.appCtx.RedisCache.InvalidatePostCount(ctx, authorID); err != nil {
		s.appCtx.Logger.Warn("post count invalidation failed", "user_id", authorID, "err", err)
	}
}
