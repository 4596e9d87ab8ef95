package repository

import (
	"context"

	"github.com/paulmach/orb"
	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/db"
)

// SalonRepository provides data access methods for the Salon model.
type SalonRepository struct {
	db *gorm.DB
}

// NewSalonRepository creates a new repository bound to the given DB connection.
func NewSalonRepository(database *gorm.DB) *SalonRepository {
	return &SalonRepository{db: database}
}

func (r *SalonRepository) Create(ctx context.Context, s *db.Salon) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SalonRepository) GetByID(ctx context.Context, id string) (*db.Salon, error) {
	var s db.Salon
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns every salon ordered by name.
func (r *SalonRepository) List(ctx context.Context) ([]db.Salon, error) {
	var salons []db.Salon
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&salons).Error
	return salons, err
}

func (r *SalonRepository) Save(ctx context.Context, s *db.Salon) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SalonRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&db.Salon{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WithinBound returns salons whose point lies inside b, optionally
// filtered by a case-insensitive name substring.
//
// Behavior:
//   - Uses idx_salons_lng_lat as a coarse prefilter; callers refine by
//     exact distance.
//   - A bound that wraps the antimeridian drops the longitude predicate.
func (r *SalonRepository) WithinBound(ctx context.Context, b orb.Bound, name string) ([]db.Salon, error) {
	query := r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", max(b.Min.Lat(), -90), min(b.Max.Lat(), 90))

	if b.Min.Lon() >= -180 && b.Max.Lon() <= 180 {
		query = query.Where("longitude BETWEEN ? AND ?", b.Min.Lon(), b.Max.Lon())
	}
	if name != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(name))
	}

	var salons []db.Salon
	err := query.Find(&salons).Error
	return salons, err
}
