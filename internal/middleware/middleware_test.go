package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/testutil"
)

//
// Test helpers
//

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine mounts the error formatter and panic recovery the way the
// server does, then the given handlers on GET /t.
func newEngine(production bool, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(production), PanicRecovery())
	r.GET("/t", handlers...)
	r.NoRoute(NotFound())
	return r
}

func do(r http.Handler, path, token string) (*httptest.ResponseRecorder, ErrorResponse) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func ok(c *gin.Context) {
	u := CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "hasHash": u.PasswordHash != ""})
}

func protected(t *testing.T) (*app.AppContext, *gin.Engine) {
	t.Helper()
	appCtx := testutil.NewAppContext(t)
	return appCtx, newEngine(false, Protect(appCtx), ok)
}

//
// Tests
//

func TestProtect_MissingToken(t *testing.T) {
	_, r := protected(t)

	w, body := do(r, "/t", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, no token", body.Message)
}

func TestProtect_BadTokenAndUnknownUser(t *testing.T) {
	appCtx, r := protected(t)

	w, body := do(r, "/t", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, token failed", body.Message)

	token, err := appCtx.Tokens.Issue("ghost")
	require.NoError(t, err)
	w, body = do(r, "/t", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, token failed", body.Message)
}

func TestProtect_AttachesUserWithoutHash(t *testing.T) {
	appCtx, r := protected(t)
	u := testutil.CreateUser(t, appCtx.DB, "alice", db.RoleUser)
	token, err := appCtx.Tokens.Issue(u.ID)
	require.NoError(t, err)

	w, _ := do(r, "/t", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+u.ID+`","hasHash":false}`, w.Body.String())
}

func TestAdminOnly(t *testing.T) {
	appCtx := testutil.NewAppContext(t)
	r := newEngine(false, Protect(appCtx), AdminOnly(), ok)

	member := testutil.CreateUser(t, appCtx.DB, "member", db.RoleUser)
	admin := testutil.CreateUser(t, appCtx.DB, "boss", db.RoleAdmin)

	memberToken, err := appCtx.Tokens.Issue(member.ID)
	require.NoError(t, err)
	w, body := do(r, "/t", memberToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized as an admin", body.Message)

	adminToken, err := appCtx.Tokens.Issue(admin.ID)
	require.NoError(t, err)
	w, _ = do(r, "/t", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorHandler_StackOnlyOutsideProduction(t *testing.T) {
	fail := func(c *gin.Context) { c.Error(svcErr.Internal(assert.AnError)) }

	w, body := do(newEngine(false, fail), "/t", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, assert.AnError.Error(), body.Message)
	require.NotNil(t, body.Stack)
	assert.NotEmpty(t, *body.Stack)

	w, body = do(newEngine(true, fail), "/t", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, body.Stack)
	assert.Contains(t, w.Body.String(), `"stack":null`)
}

func TestPanicRecovery(t *testing.T) {
	r := newEngine(true, func(c *gin.Context) { panic("boom") })

	w, body := do(r, "/t", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "panic: boom", body.Message)
}

func TestNotFound(t *testing.T) {
	w, body := do(newEngine(false), "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found - /nope", body.Message)
}

func TestRateLimit_BlocksAfterMaxAndResetsNextWindow(t *testing.T) {
	rc, _ := testutil.NewRedis(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	r := newEngine(false, rateLimit(rc, 2, time.Minute, discard, clock), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w, _ := do(r, "/t", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w, _ = do(r, "/t", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body := do(r, "/t", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, body.Message)

	now = now.Add(time.Minute)
	w, _ = do(r, "/t", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimit_FailsOpenWithoutRedis(t *testing.T) {
	rc, mr := testutil.NewRedis(t)
	mr.Close()

	r := newEngine(false, RateLimit(rc, 1, time.Minute, discard), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	w, _ := do(r, "/t", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestLogger_EchoesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(discard))
	r.GET("/t", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(false))
	r.GET("/t", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
