package db_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cutmatch/cutmatch-api/internal/auth"
	"github.com/cutmatch/cutmatch-api/internal/db"
	"github.com/cutmatch/cutmatch-api/internal/testutil"
)

func TestSeedTestData(t *testing.T) {
	gdb := testutil.NewDB(t)
	require.NoError(t, db.SeedTestData(gdb))

	var users []db.User
	require.NoError(t, gdb.Find(&users).Error)
	require.Len(t, users, 11)

	var admin db.User
	require.NoError(t, gdb.First(&admin, "email = ?", db.SeedAdminEmail).Error)
	assert.True(t, admin.IsAdmin())
	assert.True(t, auth.CheckPassword(admin.PasswordHash, db.SeedPassword))

	// follows are stored on both sides
	byID := map[string]db.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, u := range users {
		for _, id := range u.Following {
			assert.Contains(t, byID[id].Followers, u.ID)
		}
	}

	var hairstyles []db.Hairstyle
	require.NoError(t, gdb.Find(&hairstyles).Error)
	assert.NotEmpty(t, hairstyles)
	for _, h := range hairstyles {
		assert.Equal(t, len(h.Reviews), h.NumReviews)
		assert.True(t, db.ValidGender(h.Gender))
	}

	// seeding twice starts over
	require.NoError(t, db.SeedTestData(gdb))
	var count int64
	require.NoError(t, gdb.Model(&db.User{}).Count(&count).Error)
	assert.EqualValues(t, 11, count)
}

func TestSeedMinimalTestData(t *testing.T) {
	gdb := testutil.NewDB(t)
	require.NoError(t, db.SeedMinimalTestData(gdb))

	var alice db.User
	require.NoError(t, gdb.First(&alice, "id = ?", "u-alice").Error)
	assert.Equal(t, db.StringList{"u-bob"}, alice.Following)

	var salons int64
	require.NoError(t, gdb.Model(&db.Salon{}).Count(&salons).Error)
	assert.EqualValues(t, 2, salons)
}

func TestSalon_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(db.Salon{ID: "s1", Name: "Ari", Longitude: 100.5, Latitude: 13.7})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"location":{"type":"Point","coordinates":[100.5,13.7]}`)
	assert.Contains(t, string(raw), `"_id":"s1"`)
}

func TestUser_SummaryNilSafe(t *testing.T) {
	var u *db.User
	assert.Nil(t, u.Summary())
}
