package user

import (
	"context"
	"errors"
	"mime/multipart"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/auth"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/repository"
	"github.com/cutmatch/cutmatch-api/internal/upload"
)

// FollowNotifier is told about new follow relationships.
type FollowNotifier interface {
	NotifyFollow(ctx context.Context, senderID, recipientID string) error
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileInput carries only the fields the caller sent.
type UpdateProfileInput struct {
	Username     *string               `json:"username"`
	Email        *string               `json:"email"`
	Password     *string               `json:"password"`
	ProfileImage *multipart.FileHeader `json:"-"`
}

// AuthPayload is returned by register, login and profile update.
type AuthPayload struct {
	ID              string `json:"_id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ProfileImageURL string `json:"profileImageUrl"`
	Token           string `json:"token"`
}

type ProfileView struct {
	ID              string `json:"_id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// PublicProfile never carries email or role.
type PublicProfile struct {
	ID              string        `json:"_id"`
	Username        string        `json:"username"`
	ProfileImageURL string        `json:"profileImageUrl"`
	Followers       db.StringList `json:"followers"`
	FollowerCount   int           `json:"followerCount"`
	FollowingCount  int           `json:"followingCount"`
	PostCount       int64         `json:"postCount"`
}

// Service implements accounts, profiles and the social graph.
type Service struct {
	appCtx     *app.AppContext
	users      *repository.UserRepository
	posts      *repository.PostRepository
	hairstyles *repository.HairstyleRepository
	notifier   FollowNotifier
}

func NewService(appCtx *app.AppContext, notifier FollowNotifier) *Service {
	return &Service{
		appCtx:     appCtx,
		users:      repository.NewUserRepository(appCtx.DB),
		posts:      repository.NewPostRepository(appCtx.DB),
		hairstyles: repository.NewHairstyleRepository(appCtx.DB),
		notifier:   notifier,
	}
}

// Register creates an account and returns it with a fresh token.
//
// Behavior:
//   - username, email and password are required (400).
//   - An existing email, compared exactly, is rejected with 400.
//   - The password is hashed by the model hook before insert.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthPayload, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, svcErr.BadRequest("Please provide username, email and password")
	}

	taken, err := s.users.EmailTaken(ctx, in.Email, "")
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if taken {
		return nil, svcErr.BadRequest("User already exists")
	}

	u := &db.User{Username: in.Username, Email: in.Email, Password: in.Password}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user registered", "user_id", u.ID)
	return s.authPayload(u)
}

// Login verifies credentials. Unknown email and wrong password fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthPayload, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Unauthorized("Invalid email or password")
	} else if err != nil {
		return nil, svcErr.Map(err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, svcErr.Unauthorized("Invalid email or password")
	}
	return s.authPayload(u)
}

func (s *Service) Profile(u *db.User) ProfileView {
	return ProfileView{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            u.Role,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// UpdateProfile applies the provided fields and returns a new token.
//
// Behavior:
//   - Only non-nil fields overwrite stored values; empty strings are ignored.
//   - An uploaded image replaces profileImageUrl.
//   - A new password is rehashed by the model hook.
//   - Switching to an email used by another account fails with 400.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*AuthPayload, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "User not found")
	}

	if v := trimmed(in.Username); v != "" {
		u.Username = v
	}
	if v := trimmed(in.Email); v != "" && v != u.Email {
		taken, err := s.users.EmailTaken(ctx, v, u.ID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if taken {
			return nil, svcErr.BadRequest("Email is already in use")
		}
		u.Email = v
	}
	if in.Password != nil && *in.Password != "" {
		u.Password = *in.Password
	}
	if in.ProfileImage != nil {
		url, err := upload.SaveFile(ctx, s.appCtx.Uploads, in.ProfileImage, s.appCtx.Config.Upload.MaxBytes)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		u.ProfileImageURL = url
	}

	if err := s.users.Save(ctx, u); err != nil {
		return nil, svcErr.Map(err)
	}
	return s.authPayload(u)
}

// DeleteProfile removes the account only; authored content stays behind.
func (s *Service) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return svcErr.MapNotFound(err, "User not found")
	}
	s.appCtx.Logger.Info("user deleted", "user_id", userID)
	return nil
}

// Favorites returns the favorite hairstyles in the order they were added.
// Ids of deleted hairstyles are skipped.
func (s *Service) Favorites(ctx context.Context, userID string) ([]db.Hairstyle, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "User not found")
	}
	byID, err := s.hairstyles.GetByIDs(ctx, u.Favorites)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	out := make([]db.Hairstyle, 0, len(byID))
	for _, id := range u.Favorites {
		if h, ok := byID[id]; ok {
			out = append(out, *h)
		}
	}
	return out, nil
}

// AddFavorite appends hairstyleID unless it is already a favorite.
func (s *Service) AddFavorite(ctx context.Context, userID, hairstyleID string) error {
	if hairstyleID == "" {
		return svcErr.BadRequest("hairstyleId is required")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return svcErr.MapNotFound(err, "User not found")
	}
	if slices.Contains(u.Favorites, hairstyleID) {
		return nil
	}
	u.Favorites = append(u.Favorites, hairstyleID)
	return svcErr.Map(s.users.Save(ctx, u))
}

// RemoveFavorite drops hairstyleID from the favorites, if present.
func (s *Service) RemoveFavorite(ctx context.Context, userID, hairstyleID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return svcErr.MapNotFound(err, "User not found")
	}
	u.Favorites = without(u.Favorites, hairstyleID)
	return svcErr.Map(s.users.Save(ctx, u))
}

func (s *Service) SavedLooks(ctx context.Context, userID string) (db.StringList, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "User not found")
	}
	return u.SavedLooks, nil
}

// AddSavedLook uploads image and appends its URL.
func (s *Service) AddSavedLook(ctx context.Context, userID string, image *multipart.FileHeader) (db.StringList, error) {
	if image == nil {
		return nil, svcErr.BadRequest("No image file uploaded")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "User not found")
	}
	url, err := upload.SaveFile(ctx, s.appCtx.Uploads, image, s.appCtx.Config.Upload.MaxBytes)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	u.SavedLooks = append(u.SavedLooks, url)
	if err := s.users.Save(ctx, u); err != nil {
		return nil, svcErr.Map(err)
	}
	return u.SavedLooks, nil
}

// RemoveSavedLook removes every entry equal to imageURL.
func (s *Service) RemoveSavedLook(ctx context.Context, userID, imageURL string) (db.StringList, error) {
	if imageURL == "" {
		return nil, svcErr.BadRequest("imageUrl is required")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "User not found")
	}
	u.SavedLooks = without(u.SavedLooks, imageURL)
	if err := s.users.Save(ctx, u); err != nil {
		return nil, svcErr.Map(err)
	}
	return u.SavedLooks, nil
}

// Follow makes followerID follow targetID.
//
// Behavior:
//   - Following yourself → 400; unknown target → 404.
//   - Each side is appended only if missing, then both users are saved.
//   - A follow notification is written for the target.
//   - The two saves are independent writes.
func (s *Service) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return svcErr.BadRequest("You cannot follow yourself")
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return svcErr.MapNotFound(err, "User not found")
	}
	me, err := s.users.GetByID(ctx, followerID)
	if err != nil {
		return svcErr.MapNotFound(err, "User not found")
	}

	if !slices.Contains(me.Following, targetID) {
		me.Following = append(me.Following, targetID)
	}
	if !slices.Contains(target.Followers, followerID) {
		target.Followers = append(target.Followers, followerID)
	}
	if err := s.users.Save(ctx, me); err != nil {
		return svcErr.Map(err)
	}
	if err := s.users.Save(ctx, target); err != nil {
		return svcErr.Map(err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyFollow(ctx, followerID, targetID); err != nil {
			return svcErr.Map(err)
		}
	}
	s.appCtx.Logger.Debug("user followed", "follower", followerID, "target", targetID)
	return nil
}

// Unfollow removes the relationship on both sides; a no-op when absent.
func (s *Service) Unfollow(ctx context.Context, followerID, targetID string) error {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return svcErr.MapNotFound(err, "User not found")
	}
	me, err := s.users.GetByID(ctx, followerID)
	if err != nil {
		return svcErr.MapNotFound(err, "User not found")
	}

	me.Following = without(me.Following, targetID)
	target.Followers = without(target.Followers, followerID)
	if err := s.users.Save(ctx, me); err != nil {
		return svcErr.Map(err)
	}
	return svcErr.Map(s.users.Save(ctx, target))
}

// PublicProfile returns the read-only projection of a user.
func (s *Service) PublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, svcErr.MapNotFound(err, "User not found")
	}
	count, err := s.postCount(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &PublicProfile{
		ID:              u.ID,
		Username:        u.Username,
		ProfileImageURL: u.ProfileImageURL,
		Followers:       u.Followers,
		FollowerCount:   len(u.Followers),
		FollowingCount:  len(u.Following),
		PostCount:       count,
	}, nil
}

// Search matches usernames containing q, ignoring case. An empty q
// returns no users.
func (s *Service) Search(ctx context.Context, q string) ([]db.UserSummary, error) {
	out := []db.UserSummary{}
	q = strings.TrimSpace(q)
	if q == "" {
		return out, nil
	}
	users, err := s.users.SearchByUsername(ctx, q)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	for i := range users {
		out = append(out, *users[i].Summary())
	}
	return out, nil
}

// postCount is cache-first:
//  1. Attempts to read from Redis (posts:count:userID).
//  2. On a miss or Redis error, counts in the DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) postCount(ctx context.Context, userID string) (int64, error) {
	if count, found, err := s.appCtx.RedisCache.GetPostCount(ctx, userID); err == nil && found {
		return count, nil
	} else if err != nil {
		s.appCtx.Logger.Warn("post count cache read failed", "user_id", userID, "err", err)
	}

	count, err := s.posts.CountByAuthor(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.appCtx.RedisCache.UpdatePostCount(ctx, userID, count); err != nil {
		s.appCtx.Logger.Warn("post count cache write failed", "user_id", userID, "err", err)
	}
	return count, nil
}

func (s *Service) authPayload(u *db.User) (*AuthPayload, error) {
	token, err := s.appCtx.Tokens.Issue(u.ID)
	if err != nil {
		return nil, svcErr.Internal(err)
	}
	return &AuthPayload{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            u.Role,
		ProfileImageURL: u.ProfileImageURL,
		Token:           token,
	}, nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// without returns list minus every occurrence of v.
func without(list db.StringList, v string) db.StringList {
	out := make(db.StringList, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
