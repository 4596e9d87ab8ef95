package notification_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/service/notification"
	"github.com/cutmatch/cutmatch-api/internal/testutil"
)

func TestNotifications_ListMarkReadDelete(t *testing.T) {
	ctx := context.Background()
	appCtx := testutil.NewAppContext(t)
	svc := notification.NewService(appCtx)

	alice := testutil.CreateUser(t, appCtx.DB, "alice", db.RoleUser)
	bob := testutil.CreateUser(t, appCtx.DB, "bob", db.RoleUser)

	require.NoError(t, svc.NotifyFollow(ctx, bob.ID, alice.ID))

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, db.NotificationFollow, list[0].Type)
	assert.Equal(t, "bob", list[0].Sender.Username)
	assert.False(t, list[0].IsRead)
	assert.Nil(t, list[0].Post)

	empty, err := svc.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, svc.MarkAllRead(ctx, alice.ID))
	list, err = svc.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, list[0].IsRead)

	// only the recipient may delete
	err = svc.Delete(ctx, list[0].ID, bob)
	assert.Equal(t, http.StatusForbidden, svcErr.From(err).Status)

	require.NoError(t, svc.Delete(ctx, list[0].ID, alice))
	err = svc.Delete(ctx, list[0].ID, alice)
	assert.Equal(t, http.StatusNotFound, svcErr.From(err).Status)
}

func TestList_ExpandsPost(t *testing.T) {
	ctx := context.Background()
	appCtx := testutil.NewAppContext(t)
	svc := notification.NewService(appCtx)

	alice := testutil.CreateUser(t, appCtx.DB, "alice", db.RoleUser)
	bob := testutil.CreateUser(t, appCtx.DB, "bob", db.RoleUser)
	p := &db.Post{AuthorID: alice.ID, Text: "my cut"}
	require.NoError(t, appCtx.DB.Create(p).Error)

	n := &db.Notification{RecipientID: alice.ID, SenderID: bob.ID, Type: db.NotificationLike, PostID: &p.ID}
	require.NoError(t, appCtx.DB.Create(n).Error)

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Post)
	assert.Equal(t, "my cut", list[0].Post.Text)
}
