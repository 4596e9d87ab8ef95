package comment_test

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
	"github.com/cutmatch/cutmatch-api/internal/service/comment"
	"github.com/cutmatch/cutmatch-api/internal/testutil"
)

//
// Test helpers
//

type fixture struct {
	svc    *comment.Service
	appCtx *app.AppContext
	author *db.User // post author
	guest  *db.User
	admin  *db.User
	post   *db.Post
}

// setup seeds a post by "author" and two more users.
func setup(t *testing.T) *fixture {
	t.Helper()
	appCtx := testutil.NewAppContext(t)
	f := &fixture{
		svc:    comment.NewService(appCtx),
		appCtx: appCtx,
		author: testutil.CreateUser(t, appCtx.DB, "author", db.RoleUser),
		guest:  testutil.CreateUser(t, appCtx.DB, "guest", db.RoleUser),
		admin:  testutil.CreateUser(t, appCtx.DB, "admin", db.RoleAdmin),
	}
	f.post = &db.Post{AuthorID: f.author.ID, Text: "post"}
	require.NoError(t, appCtx.DB.Create(f.post).Error)
	return f
}

func (f *fixture) commentCount(t *testing.T) int {
	t.Helper()
	p, err := repository.NewPostRepository(f.appCtx.DB).GetByID(context.Background(), f.post.ID)
	require.NoError(t, err)
	return p.CommentCount
}

func statusOf(err error) int {
	return svcErr.From(err).Status
}

//
// Tests
//

func TestCreate_IncrementsCommentCount(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	view, err := f.svc.Create(ctx, f.guest.ID, f.post.ID, "nice cut")
	require.NoError(t, err)
	assert.Equal(t, "nice cut", view.Text)
	assert.Nil(t, view.ParentComment)
	assert.Equal(t, "guest", view.Author.Username)
	assert.Equal(t, 1, f.commentCount(t))

	_, err = f.svc.Create(ctx, f.guest.ID, "missing", "hello")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	_, err = f.svc.Create(ctx, f.guest.ID, f.post.ID, "   ")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestReply_InheritsPostAndShowsInThread(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	top, err := f.svc.Create(ctx, f.guest.ID, f.post.ID, "question?")
	require.NoError(t, err)

	reply, err := f.svc.Reply(ctx, f.author.ID, top.ID, "answer")
	require.NoError(t, err)
	assert.Equal(t, f.post.ID, reply.Post)
	require.NotNil(t, reply.ParentComment)
	assert.Equal(t, top.ID, *reply.ParentComment)

	// replies do not bump the counter
	assert.Equal(t, 1, f.commentCount(t))

	thread, err := f.svc.List(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	assert.Equal(t, "answer", thread[0].Replies[0].Text)
	assert.Equal(t, "author", thread[0].Replies[0].Author.Username)

	_, err = f.svc.Reply(ctx, f.author.ID, "missing", "x")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestUpdate_AuthorOnlyAndExpandsReplies(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	top, err := f.svc.Create(ctx, f.guest.ID, f.post.ID, "first")
	require.NoError(t, err)
	_, err = f.svc.Reply(ctx, f.author.ID, top.ID, "reply")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.author, top.ID, "hijack")
	assert.Equal(t, http.StatusForbidden, statusOf(err))

	// empty text keeps the old one
	view, err := f.svc.Update(ctx, f.guest, top.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "first", view.Text)

	view, err = f.svc.Update(ctx, f.guest, top.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", view.Text)
	assert.Len(t, view.Replies, 1)
}

func TestDelete_PermissionsAndNoDecrement(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	stranger := testutil.CreateUser(t, f.appCtx.DB, "stranger", db.RoleUser)

	c1, err := f.svc.Create(ctx, f.guest.ID, f.post.ID, "one")
	require.NoError(t, err)
	c2, err := f.svc.Create(ctx, f.guest.ID, f.post.ID, "two")
	require.NoError(t, err)
	c3, err := f.svc.Create(ctx, f.guest.ID, f.post.ID, "three")
	require.NoError(t, err)
	assert.Equal(t, 3, f.commentCount(t))

	assert.Equal(t, http.StatusForbidden, statusOf(f.svc.Delete(ctx, stranger, c1.ID)))

	require.NoError(t, f.svc.Delete(ctx, f.guest, c1.ID))  // comment author
	require.NoError(t, f.svc.Delete(ctx, f.author, c2.ID)) // post author
	require.NoError(t, f.svc.Delete(ctx, f.admin, c3.ID))  // admin

	thread, err := f.svc.List(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Empty(t, thread)
	assert.Equal(t, 3, f.commentCount(t))

	assert.Equal(t, http.StatusNotFound, statusOf(f.svc.Delete(ctx, f.admin, c1.ID)))
}

func TestDelete_TopLevelOrphansReplies(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	top, err := f.svc.Create(ctx, f.guest.ID, f.post.ID, "top")
	require.NoError(t, err)
	_, err = f.svc.Reply(ctx, f.author.ID, top.ID, "child")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.guest, top.ID))

	remaining, err := repository.NewCommentRepository(f.appCtx.DB).CountByPost(ctx, f.post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, remaining)

	thread, err := f.svc.List(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Empty(t, thread)
}
