package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/db"
)

// CommentRepository provides data access methods for the Comment model.
// Replies are found through the parent_comment_id index.
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new repository bound to the given DB connection.
func NewCommentRepository(database *gorm.DB) *CommentRepository {
	return &CommentRepository{db: database}
}

func (r *CommentRepository) Create(ctx context.Context, comment *db.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*db.Comment, error) {
	var comment db.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTopLevel returns the comments of postID that have no parent, oldest first.
func (r *CommentRepository) ListTopLevel(ctx context.Context, postID string) ([]db.Comment, error) {
	var comments []db.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// ListChildren returns the direct replies of every id in parentIDs, oldest first.
func (r *CommentRepository) ListChildren(ctx context.Context, parentIDs []string) ([]db.Comment, error) {
	var comments []db.Comment
	if len(parentIDs) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).
		Where("parent_comment_id IN ?", parentIDs).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// UpdateText replaces the text of comment.
func (r *CommentRepository) UpdateText(ctx context.Context, comment *db.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Update("text", comment.Text).Error
}

// Delete removes a single comment. Its replies are not removed.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db.Comment{}, "id = ?", id).Error
}

// CountByPost returns how many comment rows reference postID.
func (r *CommentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
