package comment

import (
	"context"
	"strings"
	"time"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/repository"
)

// View is a comment with its author and, for listings, its direct replies.
type View struct {
	ID            string          `json:"_id"`
	Author        *db.UserSummary `json:"author"`
	Post          string          `json:"post"`
	Text          string          `json:"text"`
	ParentComment *string         `json:"parentComment"`
	Replies       []View          `json:"replies"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Service implements comment threads. A thread is an arena of comment rows
// keyed by id; replies are looked up by parent id when a view is built.
type Service struct {
	appCtx   *app.AppContext
	comments *repository.CommentRepository
	posts    *repository.PostRepository
	users    *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		comments: repository.NewCommentRepository(appCtx.DB),
		posts:    repository.NewPostRepository(appCtx.DB),
		users:    repository.NewUserRepository(appCtx.DB),
	}
}

// Create adds a top-level comment to postID.
//
// Behavior:
//   - Empty text → 400; unknown post → 404.
//   - The post's commentCount is incremented after the insert. A failed
//     increment is logged and the counter is left behind.
func (s *Service) Create(ctx context.Context, authorID, postID, text string) (*View, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, svcErr.BadRequest("Comment text is required")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, svcErr.MapNotFound(err, "Post not found")
	}

	c := &db.Comment{AuthorID: authorID, PostID: postID, Text: text}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, svcErr.Map(err)
	}
	if err := s.posts.IncrementCommentCount(ctx, postID); err != nil {
		s.appCtx.Logger.Error("comment count increment failed", "post_id", postID, "comment_id", c.ID, "err", err)
	}
	return s.single(ctx, c, false)
}

// List returns the top-level comments of postID, oldest first, each with
// its direct replies. Deeper replies are not walked.
func (s *Service) List(ctx context.Context, postID string) ([]View, error) {
	tops, err := s.comments.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s.threads(ctx, tops)
}

// Reply answers parentID. The reply belongs to the parent's post.
func (s *Service) Reply(ctx context.Context, authorID, parentID, text string) (*View, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, svcErr.BadRequest("Reply text is required")
	}
	parent, err := s.comments.GetByID(ctx, parentID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "Parent comment not found")
	}

	c := &db.Comment{
		AuthorID:        authorID,
		PostID:          parent.PostID,
		Text:            text,
		ParentCommentID: &parent.ID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, svcErr.Map(err)
	}
	return s.single(ctx, c, false)
}

// Update replaces the text of a comment. Only its author may do so; an
// empty text keeps the old one. The response expands direct replies.
func (s *Service) Update(ctx context.Context, caller *db.User, commentID, text string) (*View, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "Comment not found")
	}
	if c.AuthorID != caller.ID {
		return nil, svcErr.Forbidden("User not authorized")
	}

	if text = strings.TrimSpace(text); text != "" {
		c.Text = text
		if err := s.comments.UpdateText(ctx, c); err != nil {
			return nil, svcErr.Map(err)
		}
	}

	fresh, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "Comment not found")
	}
	return s.single(ctx, fresh, true)
}

// Delete removes one comment.
//
// Behavior:
//   - Allowed for the comment author, the post author and admins (403 otherwise).
//   - Replies of a deleted comment are kept and become unreachable.
//   - The post's commentCount is not decremented.
func (s *Service) Delete(ctx context.Context, caller *db.User, commentID string) error {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return svcErr.MapNotFound(err, "Comment not found")
	}

	allowed := c.AuthorID == caller.ID || caller.IsAdmin()
	if !allowed {
		if p, err := s.posts.GetByID(ctx, c.PostID); err == nil && p.AuthorID == caller.ID {
			allowed = true
		}
	}
	if !allowed {
		return svcErr.Forbidden("User not authorized")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("comment deleted", "comment_id", commentID, "by", caller.ID)
	return nil
}

func (s *Service) single(ctx context.Context, c *db.Comment, withReplies bool) (*View, error) {
	if withReplies {
		views, err := s.threads(ctx, []db.Comment{*c})
		if err != nil {
			return nil, err
		}
		return &views[0], nil
	}
	authors, err := s.users.GetByIDs(ctx, []string{c.AuthorID})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	v := toView(c, authors)
	return &v, nil
}

// threads builds views for roots with their direct children attached.
func (s *Service) threads(ctx context.Context, roots []db.Comment) ([]View, error) {
	rootIDs := make([]string, 0, len(roots))
	for _, c := range roots {
		rootIDs = append(rootIDs, c.ID)
	}
	children, err := s.comments.ListChildren(ctx, rootIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	authorIDs := make([]string, 0, len(roots)+len(children))
	for _, c := range roots {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	for _, c := range children {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	byParent := make(map[string][]View, len(roots))
	for i := range children {
		pid := *children[i].ParentCommentID
		byParent[pid] = append(byParent[pid], toView(&children[i], authors))
	}

	views := make([]View, 0, len(roots))
	for i := range roots {
		v := toView(&roots[i], authors)
		if replies, ok := byParent[v.ID]; ok {
			v.Replies = replies
		}
		views = append(views, v)
	}
	return views, nil
}

func toView(c *db.Comment, authors map[string]*db.User) View {
	return View{
		ID:            c.ID,
		Author:        authors[c.AuthorID].Summary(),
		Post:          c.PostID,
		Text:          c.Text,
		ParentComment: c.ParentCommentID,
		Replies:       []View{},
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
