package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/db"
	"github.com/cutmatch/cutmatch-api/internal/utils/pagination"
)

// PostRepository provides data access methods for the Post model.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new repository bound to the given DB connection.
func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{db: database}
}

func (r *PostRepository) Create(ctx context.Context, post *db.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*db.Post, error) {
	var post db.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByAuthors returns posts written by any of authorIDs, newest first.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - limit <= 0 returns every matching post and no token.
//   - Otherwise supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListByAuthors(ctx, []string{me, friend}, nil, 20) // first 20 feed entries
func (r *PostRepository) ListByAuthors(
	ctx context.Context,
	authorIDs []string,
	paginationToken *string,
	limit int,
) ([]db.Post, *string, error) {
	var posts []db.Post
	if len(authorIDs) == 0 {
		return posts, nil, nil
	}

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit + 1)
	}

	// apply cursor
	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&posts).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if limit > 0 && len(posts) > limit {
		last := posts[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		posts = posts[:limit]
	}

	return posts, nextToken, nil
}

// CountByAuthor returns how many posts authorID has written.
// Used in conjunction with Redis cache (DB is fallback).
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// UpdateContent writes text and linked hairstyle of post.
func (r *PostRepository) UpdateContent(ctx context.Context, post *db.Post) error {
	return r.db.WithContext(ctx).
		Model(post).
		Select("text", "linked_hairstyle_id", "updated_at").
		Updates(post).Error
}

// UpdateLikes overwrites the likes column of post.
func (r *PostRepository) UpdateLikes(ctx context.Context, post *db.Post) error {
	return r.db.WithContext(ctx).Model(post).Update("likes", post.Likes).Error
}

// IncrementCommentCount bumps comment_count by one in place.
func (r *PostRepository) IncrementCommentCount(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).
		Model(&db.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
}

// DeleteWithComments removes every comment of the post and then the post.
// Counters elsewhere are not touched.
func (r *PostRepository) DeleteWithComments(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Post{}, "id = ?", postID).Error
	})
}
