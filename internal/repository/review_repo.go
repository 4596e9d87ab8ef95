package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/db"
)

// ErrAlreadyReviewed is returned when the user already reviewed the hairstyle.
var ErrAlreadyReviewed = errors.New("already reviewed")

// ReviewRepository provides data access methods for the Review model.
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new repository bound to the given DB connection.
func NewReviewRepository(database *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: database}
}

// ListByHairstyle returns the reviews of a hairstyle, oldest first.
func (r *ReviewRepository) ListByHairstyle(ctx context.Context, hairstyleID string) ([]db.Review, error) {
	var reviews []db.Review
	err := r.db.WithContext(ctx).
		Where("hairstyle_id = ?", hairstyleID).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error
	return reviews, err
}

// CreateAndAggregate stores review and refreshes the hairstyle aggregates.
//
// Behavior:
//   - Returns gorm.ErrRecordNotFound when the hairstyle does not exist.
//   - Returns ErrAlreadyReviewed when (user, hairstyle) already has a review,
//     either from the pre-check or from the unique index under a race.
//   - Appends the review id to the hairstyle and recomputes num_reviews and
//     average_rating as the unweighted mean of every stored rating.
//   - All writes happen in one transaction.
//
// Example:
//
//	h, err := repo.CreateAndAggregate(ctx, &db.Review{UserID: u, HairstyleID: id, Rating: 4})
func (r *ReviewRepository) CreateAndAggregate(ctx context.Context, review *db.Review) (*db.Hairstyle, error) {
	var hairstyle db.Hairstyle
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&hairstyle, "id = ?", review.HairstyleID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&db.Review{}).
			Where("hairstyle_id = ? AND user_id = ?", review.HairstyleID, review.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyReviewed
		}

		if err := tx.Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyReviewed
			}
			return err
		}

		var ratings []float64
		if err := tx.Model(&db.Review{}).
			Where("hairstyle_id = ?", review.HairstyleID).
			Pluck("rating", &ratings).Error; err != nil {
			return err
		}

		var sum float64
		for _, v := range ratings {
			sum += v
		}
		hairstyle.Reviews = append(hairstyle.Reviews, review.ID)
		hairstyle.NumReviews = len(ratings)
		hairstyle.AverageRating = 0
		if len(ratings) > 0 {
			hairstyle.AverageRating = sum / float64(len(ratings))
		}

		return tx.Model(&hairstyle).
			Select("reviews", "num_reviews", "average_rating", "updated_at").
			Updates(&hairstyle).Error
	})
	if err != nil {
		return nil, err
	}
	return &hairstyle, nil
}
