package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/auth"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Hairstyle genders accepted by the catalogue.
const (
	GenderMale   = "ชาย"
	GenderFemale = "หญิง"
	GenderUnisex = "Unisex"
)

// Notification types. Only NotificationFollow is emitted today.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationReply   = "reply"
	NotificationFollow  = "follow"
)

// StringList is a list of ids or URLs persisted as a JSON column.
type StringList = datatypes.JSONSlice[string]

// User is an account. Social lists are embedded JSON columns and are
// maintained by the service layer, not by foreign keys.
//
// Password is write-only: when set, BeforeSave hashes it into PasswordHash
// and clears it, so the plaintext never reaches the database.
type User struct {
	ID              string     `gorm:"primaryKey;size:36" json:"_id"`
	Username        string     `gorm:"size:64;not null;index" json:"username"`
	Email           string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password        string     `gorm:"-" json:"-"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	Role            string     `gorm:"size:16;not null;default:user" json:"role"`
	ProfileImageURL string     `gorm:"size:512" json:"profileImageUrl"`
	Favorites       StringList `json:"favorites"`
	SavedLooks      StringList `json:"savedLooks"`
	Followers       StringList `json:"followers"`
	Following       StringList `json:"following"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.Favorites = nonNil(u.Favorites)
	u.SavedLooks = nonNil(u.SavedLooks)
	u.Followers = nonNil(u.Followers)
	u.Following = nonNil(u.Following)
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password == "" {
		return nil
	}
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Password = ""
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserSummary is the public projection embedded in other resources.
type UserSummary struct {
	ID              string `json:"_id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageUrl"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, ProfileImageURL: u.ProfileImageURL}
}

// Post is a user publication.
//
// Indexes:
//   - idx_posts_author_created(author_id, created_at DESC)
//     Serves the feed and per-author listings.
//
// CommentCount is bumped on top-level comment creation and is never
// decremented, so it can drift above the real number of comments.
type Post struct {
	ID                string     `gorm:"primaryKey;size:36"`
	AuthorID          string     `gorm:"size:36;not null;index:idx_posts_author_created,priority:1"`
	Text              string     `gorm:"type:text"`
	ImageURLs         StringList
	LinkedHairstyleID *string `gorm:"size:36;index"`
	Likes             StringList
	CommentCount      int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index:idx_posts_author_created,priority:2,sort:desc"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.ImageURLs = nonNil(p.ImageURLs)
	p.Likes = nonNil(p.Likes)
	return nil
}

// Comment belongs to a post. Top-level comments have a nil ParentCommentID.
// Children are looked up through idx_comments_parent; no forward list is stored.
type Comment struct {
	ID              string    `gorm:"primaryKey;size:36"`
	AuthorID        string    `gorm:"size:36;not null;index"`
	PostID          string    `gorm:"size:36;not null;index:idx_comments_post_parent,priority:1"`
	Text            string    `gorm:"type:text;not null"`
	ParentCommentID *string   `gorm:"size:36;index:idx_comments_parent;index:idx_comments_post_parent,priority:2"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Hairstyle is a catalogue entry. NumReviews and AverageRating are
// recomputed from the reviews table whenever a review is added.
type Hairstyle struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"_id"`
	Name               string     `gorm:"size:128;not null;index" json:"name"`
	Description        string     `gorm:"type:text;not null" json:"description"`
	ImageURLs          StringList `json:"imageUrls"`
	OverlayImageURL    string     `gorm:"size:512" json:"overlayImageUrl"`
	Tags               StringList `json:"tags"`
	SuitableFaceShapes StringList `json:"suitableFaceShapes"`
	Gender             string     `gorm:"size:16;not null;index" json:"gender"`
	Reviews            StringList `json:"reviews"`
	NumReviews         int        `gorm:"not null;default:0" json:"numReviews"`
	AverageRating      float64    `gorm:"not null;default:0" json:"averageRating"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (h *Hairstyle) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.ImageURLs = nonNil(h.ImageURLs)
	h.Tags = nonNil(h.Tags)
	h.SuitableFaceShapes = nonNil(h.SuitableFaceShapes)
	h.Reviews = nonNil(h.Reviews)
	return nil
}

// ValidGender reports whether g is one of the catalogue genders.
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnisex:
		return true
	}
	return false
}

// Review is a rating of a hairstyle.
//
// Indexes:
//   - idx_review_user_hairstyle(user_id, hairstyle_id) UNIQUE
//     At most one review per user and hairstyle, even under concurrent submits.
type Review struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Rating      float64   `gorm:"not null"`
	Comment     string    `gorm:"type:text"`
	UserID      string    `gorm:"size:36;not null;uniqueIndex:idx_review_user_hairstyle,priority:1"`
	HairstyleID string    `gorm:"size:36;not null;index;uniqueIndex:idx_review_user_hairstyle,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Salon is a physical location. The point is stored as two indexed
// columns and exposed as a GeoJSON Point.
type Salon struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:128;not null;index"`
	Address   string    `gorm:"size:512;not null"`
	Phone     string    `gorm:"size:32"`
	Longitude float64   `gorm:"not null;index:idx_salons_lng_lat,priority:1"`
	Latitude  float64   `gorm:"not null;index:idx_salons_lng_lat,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (s *Salon) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Point returns the salon location as [lng, lat].
func (s *Salon) Point() orb.Point { return orb.Point{s.Longitude, s.Latitude} }

func (s Salon) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string            `json:"_id"`
		Name      string            `json:"name"`
		Address   string            `json:"address"`
		Phone     string            `json:"phone"`
		Location  *geojson.Geometry `json:"location"`
		CreatedAt time.Time         `json:"createdAt"`
		UpdatedAt time.Time         `json:"updatedAt"`
	}{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		Location:  geojson.NewGeometry(s.Point()),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	})
}

// Notification is addressed to RecipientID and caused by SenderID.
type Notification struct {
	ID          string    `gorm:"primaryKey;size:36"`
	RecipientID string    `gorm:"size:36;not null;index:idx_notifications_recipient_read,priority:1"`
	SenderID    string    `gorm:"size:36;not null"`
	Type        string    `gorm:"size:16;not null"`
	PostID      *string   `gorm:"size:36"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_notifications_recipient_read,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil(l StringList) StringList {
	if l == nil {
		return StringList{}
	}
	return l
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{
		&User{}, &Post{}, &Comment{}, &Hairstyle{},
		&Review{}, &Salon{}, &Notification{},
	}
}
