package repository

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/db"
)

// HairstyleFilter narrows List. Zero-valued fields are ignored; set fields
// are combined with AND.
type HairstyleFilter struct {
	// Tags matches hairstyles carrying at least one of the tags.
	Tags []string
	// FaceShapes matches hairstyles suited to at least one of the shapes.
	FaceShapes []string
	Gender     string
	// Search is a case-insensitive substring of the name.
	Search string
}

// HairstyleRepository provides data access methods for the Hairstyle model.
type HairstyleRepository struct {
	db *gorm.DB
}

// NewHairstyleRepository creates a new repository bound to the given DB connection.
func NewHairstyleRepository(database *gorm.DB) *HairstyleRepository {
	return &HairstyleRepository{db: database}
}

func (r *HairstyleRepository) Create(ctx context.Context, h *db.Hairstyle) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *HairstyleRepository) GetByID(ctx context.Context, id string) (*db.Hairstyle, error) {
	var h db.Hairstyle
	if err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// GetByIDs returns the hairstyles among ids keyed by id. Unknown ids are skipped.
func (r *HairstyleRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*db.Hairstyle, error) {
	out := make(map[string]*db.Hairstyle, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []db.Hairstyle
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

// List returns the hairstyles matching f, newest first.
//
// Behavior:
//   - Gender and Search are evaluated in SQL.
//   - Tags and FaceShapes are JSON list columns; membership is checked
//     on the loaded rows so the same query works on MySQL and SQLite.
//
// Example:
//
//	repo.List(ctx, HairstyleFilter{Tags: []string{"short"}, Gender: db.GenderUnisex})
func (r *HairstyleRepository) List(ctx context.Context, f HairstyleFilter) ([]db.Hairstyle, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if f.Gender != "" {
		query = query.Where("gender = ?", f.Gender)
	}
	if f.Search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(f.Search))
	}

	var rows []db.Hairstyle
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, h := range rows {
		if len(f.Tags) > 0 && !containsAny(h.Tags, f.Tags) {
			continue
		}
		if len(f.FaceShapes) > 0 && !containsAny(h.SuitableFaceShapes, f.FaceShapes) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// Save writes every column of h.
func (r *HairstyleRepository) Save(ctx context.Context, h *db.Hairstyle) error {
	return r.db.WithContext(ctx).Save(h).Error
}

// Delete removes a hairstyle. Reviews and favorites referencing it are kept.
func (r *HairstyleRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&db.Hairstyle{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
