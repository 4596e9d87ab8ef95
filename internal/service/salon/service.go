package salon

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/repository"
)

// CreateInput is the admin payload for a new salon.
type CreateInput struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

// UpdateInput carries only the fields the caller sent. The location moves
// only when both coordinates are present.
type UpdateInput struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Phone     *string  `json:"phone"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

// Nearby is a salon with its distance in meters from the search point.
type Nearby struct {
	Salon    db.Salon
	Distance float64
}

func (n Nearby) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(n.Salon)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields["distance"], err = json.Marshal(n.Distance); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// Service implements salon management and proximity search.
type Service struct {
	appCtx   *app.AppContext
	salons   *repository.SalonRepository
	radiusKM float64
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		salons:   repository.NewSalonRepository(appCtx.DB),
		radiusKM: appCtx.Config.Salon.SearchRadiusKM,
	}
}

func (s *Service) List(ctx context.Context) ([]db.Salon, error) {
	salons, err := s.salons.List(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return salons, nil
}

// Nearby returns the salons within the configured radius of center,
// closest first.
//
// Behavior:
//   - A bounding box around center narrows the rows loaded from the DB.
//   - Rows are then kept only if their haversine distance is within the radius.
//   - name, when non-empty, is a case-insensitive substring filter.
//
// Example:
//
//	svc.Nearby(ctx, orb.Point{100.5018, 13.7563}, "")
func (s *Service) Nearby(ctx context.Context, center orb.Point, name string) ([]Nearby, error) {
	if err := checkPoint(center); err != nil {
		return nil, err
	}
	radius := s.radiusKM * 1000

	candidates, err := s.salons.WithinBound(ctx, geo.NewBoundAroundPoint(center, radius), strings.TrimSpace(name))
	if err != nil {
		return nil, svcErr.Map(err)
	}

	out := make([]Nearby, 0, len(candidates))
	for _, salon := range candidates {
		d := geo.DistanceHaversine(center, salon.Point())
		if d <= radius {
			out = append(out, Nearby{Salon: salon, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*db.Salon, error) {
	salon := &db.Salon{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
	}
	switch {
	case salon.Name == "":
		return nil, svcErr.BadRequest("Salon name is required")
	case salon.Address == "":
		return nil, svcErr.BadRequest("Salon address is required")
	case in.Longitude == nil || in.Latitude == nil:
		return nil, svcErr.BadRequest("Longitude and Latitude are required")
	}
	if err := checkPoint(orb.Point{*in.Longitude, *in.Latitude}); err != nil {
		return nil, err
	}
	salon.Longitude, salon.Latitude = *in.Longitude, *in.Latitude

	if err := s.salons.Create(ctx, salon); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("salon created", "salon_id", salon.ID, "name", salon.Name)
	return salon, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*db.Salon, error) {
	salon, err := s.salons.GetByID(ctx, id)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "Salon not found")
	}

	if in.Name != nil {
		if v := strings.TrimSpace(*in.Name); v != "" {
			salon.Name = v
		}
	}
	if in.Address != nil {
		if v := strings.TrimSpace(*in.Address); v != "" {
			salon.Address = v
		}
	}
	if in.Phone != nil {
		salon.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Longitude != nil && in.Latitude != nil {
		if err := checkPoint(orb.Point{*in.Longitude, *in.Latitude}); err != nil {
			return nil, err
		}
		salon.Longitude, salon.Latitude = *in.Longitude, *in.Latitude
	}

	if err := s.salons.Save(ctx, salon); err != nil {
		return nil, svcErr.Map(err)
	}
	return salon, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.salons.Delete(ctx, id); err != nil {
		return svcErr.MapNotFound(err, "Salon not found")
	}
	s.appCtx.Logger.Info("salon deleted", "salon_id", id)
	return nil
}

func checkPoint(p orb.Point) error {
	if p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
		return svcErr.BadRequest("Coordinates out of range")
	}
	return nil
}
