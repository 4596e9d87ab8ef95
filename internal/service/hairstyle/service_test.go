package hairstyle_test

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
	"github.com/cutmatch/cutmatch-api/internal/service/hairstyle"
	"github.com/cutmatch/cutmatch-api/internal/testutil"
)

func setupService(t *testing.T) (*hairstyle.Service, *app.AppContext) {
	t.Helper()
	appCtx := testutil.NewAppContext(t)
	return hairstyle.NewService(appCtx), appCtx
}

func statusOf(err error) int {
	return svcErr.From(err).Status
}

func validInput(name string) hairstyle.CreateInput {
	return hairstyle.CreateInput{
		Name:        name,
		Description: "desc",
		ImageURLs:   []string{"/img/" + name + ".jpg"},
		Gender:      db.GenderUnisex,
	}
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	cases := map[string]func(in *hairstyle.CreateInput){
		"missing name":        func(in *hairstyle.CreateInput) { in.Name = "" },
		"missing description": func(in *hairstyle.CreateInput) { in.Description = " " },
		"no images":           func(in *hairstyle.CreateInput) { in.ImageURLs = []string{""} },
		"bad gender":          func(in *hairstyle.CreateInput) { in.Gender = "male" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput("x")
			mutate(&in)
			_, err := svc.Create(ctx, in)
			assert.Equal(t, http.StatusBadRequest, statusOf(err))
		})
	}

	h, err := svc.Create(ctx, validInput("Bob"))
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.NotNil(t, h.Tags)
	assert.Zero(t, h.NumReviews)
}

func TestList_FiltersCombine(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	a := validInput("Short Bob")
	a.Tags, a.SuitableFaceShapes, a.Gender = []string{"short"}, []string{"oval"}, db.GenderFemale
	b := validInput("Long Layers")
	b.Tags, b.SuitableFaceShapes, b.Gender = []string{"long"}, []string{"oval", "round"}, db.GenderFemale
	c := validInput("Buzz")
	c.Tags, c.SuitableFaceShapes, c.Gender = []string{"short"}, []string{"square"}, db.GenderMale
	for _, in := range []hairstyle.CreateInput{a, b, c} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, repository.HairstyleFilter{Tags: []string{"short"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(ctx, repository.HairstyleFilter{Tags: []string{"short"}, Gender: db.GenderFemale})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Short Bob", got[0].Name)

	got, err = svc.List(ctx, repository.HairstyleFilter{FaceShapes: []string{"round", "square"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(ctx, repository.HairstyleFilter{Search: "LAYER"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Long Layers", got[0].Name)
}

func TestUpdate_PartialAndRevalidated(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	h, err := svc.Create(ctx, validInput("Bob"))
	require.NoError(t, err)

	desc := "shorter"
	got, err := svc.Update(ctx, h.ID, hairstyle.UpdateInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
	assert.Equal(t, "shorter", got.Description)

	bad := "other"
	_, err = svc.Update(ctx, h.ID, hairstyle.UpdateInput{Gender: &bad})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = svc.Update(ctx, "missing", hairstyle.UpdateInput{Description: &desc})
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	require.NoError(t, svc.Delete(ctx, h.ID))
	assert.Equal(t, http.StatusNotFound, statusOf(svc.Delete(ctx, h.ID)))
}

func TestAddReview_MeanAndDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	h, err := svc.Create(ctx, validInput("Bob"))
	require.NoError(t, err)

	ratings := []float64{5, 4, 2}
	for i, r := range ratings {
		u := testutil.CreateUser(t, appCtx.DB, "reviewer"+string(rune('a'+i)), db.RoleUser)
		_, err := svc.AddReview(ctx, u.ID, h.ID, hairstyle.ReviewInput{Rating: r, Comment: "ok"})
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumReviews)
	assert.Len(t, got.Reviews, 3)
	assert.InDelta(t, 11.0/3.0, got.AverageRating, 1e-9)

	reviews, err := svc.Reviews(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	names := []string{}
	for _, r := range reviews {
		require.NotNil(t, r.User)
		names = append(names, r.User.Username)
	}
	assert.ElementsMatch(t, []string{"reviewera", "reviewerb", "reviewerc"}, names)

	first := reviews[0].User.ID
	_, err = svc.AddReview(ctx, first, h.ID, hairstyle.ReviewInput{Rating: 1})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Equal(t, "You have already reviewed this hairstyle", svcErr.From(err).Message)

	got, err = svc.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumReviews)
}

func TestAddReview_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	u := testutil.CreateUser(t, appCtx.DB, "critic", db.RoleUser)

	h, err := svc.Create(ctx, validInput("Bob"))
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, u.ID, h.ID, hairstyle.ReviewInput{Rating: 0})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = svc.AddReview(ctx, u.ID, h.ID, hairstyle.ReviewInput{Rating: 6})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = svc.AddReview(ctx, u.ID, "missing", hairstyle.ReviewInput{Rating: 3})
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}
