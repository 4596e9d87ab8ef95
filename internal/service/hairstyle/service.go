package hairstyle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/repository"
)

// Rating bounds accepted on reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// CreateInput is the admin payload for a new hairstyle.
type CreateInput struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	ImageURLs          []string `json:"imageUrls"`
	OverlayImageURL    string   `json:"overlayImageUrl"`
	Tags               []string `json:"tags"`
	SuitableFaceShapes []string `json:"suitableFaceShapes"`
	Gender             string   `json:"gender"`
}

// UpdateInput carries only the fields the caller sent.
type UpdateInput struct {
	Name               *string   `json:"name"`
	Description        *string   `json:"description"`
	ImageURLs          *[]string `json:"imageUrls"`
	OverlayImageURL    *string   `json:"overlayImageUrl"`
	Tags               *[]string `json:"tags"`
	SuitableFaceShapes *[]string `json:"suitableFaceShapes"`
	Gender             *string   `json:"gender"`
}

type ReviewInput struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// ReviewView is a review with its author expanded.
type ReviewView struct {
	ID        string          `json:"_id"`
	Rating    float64         `json:"rating"`
	Comment   string          `json:"comment"`
	User      *db.UserSummary `json:"user"`
	Hairstyle string          `json:"hairstyle"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Service implements the hairstyle catalogue and its reviews.
type Service struct {
	appCtx     *app.AppContext
	hairstyles *repository.HairstyleRepository
	reviews    *repository.ReviewRepository
	users      *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		hairstyles: repository.NewHairstyleRepository(appCtx.DB),
		reviews:    repository.NewReviewRepository(appCtx.DB),
		users:      repository.NewUserRepository(appCtx.DB),
	}
}

func (s *Service) List(ctx context.Context, f repository.HairstyleFilter) ([]db.Hairstyle, error) {
	list, err := s.hairstyles.List(ctx, f)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*db.Hairstyle, error) {
	h, err := s.hairstyles.GetByID(ctx, id)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "Hairstyle not found")
	}
	return h, nil
}

// Create validates and stores a new hairstyle.
//
// Behavior:
//   - name, description, gender and at least one image URL are required.
//   - gender must be one of the catalogue genders.
func (s *Service) Create(ctx context.Context, in CreateInput) (*db.Hairstyle, error) {
	h := &db.Hairstyle{
		Name:               strings.TrimSpace(in.Name),
		Description:        strings.TrimSpace(in.Description),
		ImageURLs:          cleanList(in.ImageURLs),
		OverlayImageURL:    strings.TrimSpace(in.OverlayImageURL),
		Tags:               cleanList(in.Tags),
		SuitableFaceShapes: cleanList(in.SuitableFaceShapes),
		Gender:             strings.TrimSpace(in.Gender),
	}
	if err := validate(h); err != nil {
		return nil, err
	}
	if err := s.hairstyles.Create(ctx, h); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("hairstyle created", "hairstyle_id", h.ID, "name", h.Name)
	return h, nil
}

// Update applies the provided fields and re-validates the result.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*db.Hairstyle, error) {
	h, err := s.hairstyles.GetByID(ctx, id)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "Hairstyle not found")
	}

	if in.Name != nil {
		h.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		h.Description = strings.TrimSpace(*in.Description)
	}
	if in.ImageURLs != nil {
		h.ImageURLs = cleanList(*in.ImageURLs)
	}
	if in.OverlayImageURL != nil {
		h.OverlayImageURL = strings.TrimSpace(*in.OverlayImageURL)
	}
	if in.Tags != nil {
		h.Tags = cleanList(*in.Tags)
	}
	if in.SuitableFaceShapes != nil {
		h.SuitableFaceShapes = cleanList(*in.SuitableFaceShapes)
	}
	if in.Gender != nil {
		h.Gender = strings.TrimSpace(*in.Gender)
	}
	if err := validate(h); err != nil {
		return nil, err
	}

	if err := s.hairstyles.Save(ctx, h); err != nil {
		return nil, svcErr.Map(err)
	}
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.hairstyles.Delete(ctx, id); err != nil {
		return svcErr.MapNotFound(err, "Hairstyle not found")
	}
	s.appCtx.Logger.Info("hairstyle deleted", "hairstyle_id", id)
	return nil
}

// Reviews returns the reviews of a hairstyle with reviewers expanded.
// Unknown hairstyles yield an empty list.
func (s *Service) Reviews(ctx context.Context, hairstyleID string) ([]ReviewView, error) {
	reviews, err := s.reviews.ListByHairstyle(ctx, hairstyleID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	views := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, ReviewView{
			ID:        r.ID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			User:      users[r.UserID].Summary(),
			Hairstyle: r.HairstyleID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return views, nil
}

// AddReview records userID's review of hairstyleID and refreshes the
// hairstyle's numReviews and averageRating.
func (s *Service) AddReview(ctx context.Context, userID, hairstyleID string, in ReviewInput) (*db.Hairstyle, error) {
	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, svcErr.BadRequest("Rating must be between 1 and 5")
	}

	review := &db.Review{
		Rating:      in.Rating,
		Comment:     strings.TrimSpace(in.Comment),
		UserID:      userID,
		HairstyleID: hairstyleID,
	}
	h, err := s.reviews.CreateAndAggregate(ctx, review)
	switch {
	case errors.Is(err, repository.ErrAlreadyReviewed):
		return nil, svcErr.BadRequest("You have already reviewed this hairstyle")
	case err != nil:
		return nil, svcErr.MapNotFound(err, "Hairstyle not found")
	}

	s.appCtx.Logger.Debug("review added",
		"hairstyle_id", hairstyleID, "user_id", userID,
		"num_reviews", h.NumReviews, "average_rating", h.AverageRating)
	return h, nil
}

func validate(h *db.Hairstyle) error {
	switch {
	case h.Name == "":
		return svcErr.BadRequest("Hairstyle name is required")
	case h.Description == "":
		return svcErr.BadRequest("Hairstyle description is required")
	case len(h.ImageURLs) == 0:
		return svcErr.BadRequest("At least one image URL is required")
	case !db.ValidGender(h.Gender):
		return svcErr.BadRequest("Gender must be one of ชาย, หญิง, Unisex")
	}
	return nil
}

func cleanList(in []string) db.StringList {
	out := db.StringList{}
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
