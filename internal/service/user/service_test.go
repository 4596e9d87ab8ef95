package user_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/repository"
	"github.com/cutmatch/cutmatch-api/internal/service/notification"
	"github.com/cutmatch/cutmatch-api/internal/service/user"
	"github.com/cutmatch/cutmatch-api/internal/testutil"
)

//
// Test helpers
//

// setupService wires a user service backed by in-memory SQLite and
// miniredis, with the real notification service as follow notifier.
func setupService(t *testing.T) (*user.Service, *app.AppContext) {
	t.Helper()
	appCtx := testutil.NewAppContext(t)
	return user.NewService(appCtx, notification.NewService(appCtx)), appCtx
}

func statusOf(err error) int {
	return svcErr.From(err).Status
}

//
// Tests
//

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	first, err := svc.Register(ctx, user.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, db.RoleUser, first.Role)

	userID, err := appCtx.Tokens.Parse(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.ID, userID)

	_, err = svc.Register(ctx, user.RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "other"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Equal(t, "User already exists", svcErr.From(err).Message)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Register(context.Background(), user.RegisterInput{Username: "bob", Email: " "})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Register(ctx, user.RegisterInput{Username: "carol", Email: "carol@example.com", Password: "right"})
	require.NoError(t, err)

	ok, err := svc.Login(ctx, user.LoginInput{Email: "carol@example.com", Password: "right"})
	require.NoError(t, err)
	assert.NotEmpty(t, ok.Token)

	_, wrongPass := svc.Login(ctx, user.LoginInput{Email: "carol@example.com", Password: "wrong"})
	_, unknown := svc.Login(ctx, user.LoginInput{Email: "nobody@example.com", Password: "right"})

	assert.Equal(t, http.StatusUnauthorized, statusOf(wrongPass))
	assert.Equal(t, http.StatusUnauthorized, statusOf(unknown))
	assert.Equal(t, svcErr.From(wrongPass).Message, svcErr.From(unknown).Message)
}

func TestUpdateProfile_ChangesPasswordAndRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	alice := testutil.CreateUser(t, appCtx.DB, "alice", db.RoleUser)
	testutil.CreateUser(t, appCtx.DB, "bob", db.RoleUser)

	newName, newPass := "alice_cuts", "n3w-pass"
	payload, err := svc.UpdateProfile(ctx, alice.ID, user.UpdateProfileInput{Username: &newName, Password: &newPass})
	require.NoError(t, err)
	assert.Equal(t, "alice_cuts", payload.Username)
	assert.NotEmpty(t, payload.Token)

	_, err = svc.Login(ctx, user.LoginInput{Email: "alice@example.com", Password: "n3w-pass"})
	assert.NoError(t, err)

	taken := "bob@example.com"
	_, err = svc.UpdateProfile(ctx, alice.ID, user.UpdateProfileInput{Email: &taken})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestFollow_AntiReflexiveAndSymmetric(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	users := repository.NewUserRepository(appCtx.DB)
	a := testutil.CreateUser(t, appCtx.DB, "a", db.RoleUser)
	b := testutil.CreateUser(t, appCtx.DB, "b", db.RoleUser)

	err := svc.Follow(ctx, a.ID, a.ID)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	err = svc.Follow(ctx, a.ID, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	require.NoError(t, svc.Follow(ctx, a.ID, b.ID))
	// following twice does not duplicate entries
	require.NoError(t, svc.Follow(ctx, a.ID, b.ID))

	gotA, err := users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := users.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StringList{b.ID}, gotA.Following)
	assert.Equal(t, db.StringList{a.ID}, gotB.Followers)

	notes, err := notification.NewService(appCtx).List(ctx, b.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, db.NotificationFollow, notes[0].Type)
	assert.Equal(t, a.ID, notes[0].Sender.ID)

	require.NoError(t, svc.Unfollow(ctx, a.ID, b.ID))
	gotA, _ = users.GetByID(ctx, a.ID)
	gotB, _ = users.GetByID(ctx, b.ID)
	assert.NotContains(t, gotA.Following, b.ID)
	assert.NotContains(t, gotB.Followers, a.ID)
}

func TestPublicProfile_HidesPrivateFieldsAndCachesPostCount(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	u := testutil.CreateUser(t, appCtx.DB, "dana", db.RoleUser)
	require.NoError(t, appCtx.DB.Create(&db.Post{AuthorID: u.ID, Text: "hi"}).Error)

	profile, err := svc.PublicProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dana", profile.Username)
	assert.EqualValues(t, 1, profile.PostCount)

	count, found, err := appCtx.RedisCache.GetPostCount(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 1, count)

	_, err = svc.PublicProfile(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestFavorites_AddIsIdempotentAndSkipsDeleted(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	u := testutil.CreateUser(t, appCtx.DB, "erin", db.RoleUser)

	h1 := &db.Hairstyle{Name: "Bob", Description: "d", ImageURLs: db.StringList{"x"}, Gender: db.GenderFemale}
	h2 := &db.Hairstyle{Name: "Buzz", Description: "d", ImageURLs: db.StringList{"y"}, Gender: db.GenderMale}
	require.NoError(t, appCtx.DB.Create(h1).Error)
	require.NoError(t, appCtx.DB.Create(h2).Error)

	require.NoError(t, svc.AddFavorite(ctx, u.ID, h1.ID))
	require.NoError(t, svc.AddFavorite(ctx, u.ID, h1.ID))
	require.NoError(t, svc.AddFavorite(ctx, u.ID, h2.ID))

	favs, err := svc.Favorites(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, h1.ID, favs[0].ID)

	require.NoError(t, repository.NewHairstyleRepository(appCtx.DB).Delete(ctx, h2.ID))
	favs, err = svc.Favorites(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	require.NoError(t, svc.RemoveFavorite(ctx, u.ID, h1.ID))
	favs, err = svc.Favorites(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)

	assert.Equal(t, http.StatusBadRequest, statusOf(svc.AddFavorite(ctx, u.ID, "")))
}

func TestSavedLooks_RemoveByURL(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	u := testutil.CreateUser(t, appCtx.DB, "fay", db.RoleUser)

	u.SavedLooks = db.StringList{"/uploads/a.jpg", "/uploads/b.jpg", "/uploads/a.jpg"}
	require.NoError(t, appCtx.DB.Save(u).Error)

	looks, err := svc.RemoveSavedLook(ctx, u.ID, "/uploads/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, db.StringList{"/uploads/b.jpg"}, looks)

	_, err = svc.AddSavedLook(ctx, u.ID, nil)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestSearch_EmptyQueryReturnsNothing(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	testutil.CreateUser(t, appCtx.DB, "george", db.RoleUser)

	got, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Search(ctx, "GEO")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "george", got[0].Username)
}
