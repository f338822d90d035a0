package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/acemetillidie0001/obd-premium-apps/db"
	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/test/mock"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitNop()
	os.Exit(m.Run())
}

const testSecret = "test-secret"

var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSessions(t *testing.T) *JWTSessions {
	t.Helper()
	sessions, err := NewJWTSessions(testSecret, "obd-test")
	require.NoError(t, err)
	sessions.now = func() time.Time { return issuedAt }
	return sessions
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) util.ErrorResponse {
	t.Helper()
	var body util.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJWTSessionsRoundTrip(t *testing.T) {
	sessions := newSessions(t)
	token, err := sessions.Issue(&model.Session{
		ID:               "sid-1",
		Principal:        model.Principal{ID: "u1", Email: "u1@example.com", GlobalRole: model.GlobalRoleUser},
		ActiveBusinessID: "b1",
	}, time.Hour)
	require.NoError(t, err)

	session, err := sessions.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", session.ID)
	assert.Equal(t, "u1", session.Principal.ID)
	assert.Equal(t, "u1@example.com", session.Principal.Email)
	assert.Equal(t, "b1", session.ActiveBusinessID)
	assert.True(t, session.ExpiresAt.Equal(issuedAt.Add(time.Hour)))
}

func TestJWTSessionsRejects(t *testing.T) {
	sessions := newSessions(t)
	token, err := sessions.Issue(&model.Session{Principal: model.Principal{ID: "u1"}}, time.Minute)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newSessions(t)
		later.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
		_, err := later.Parse(token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewJWTSessions("other-secret", "obd-test")
		require.NoError(t, err)
		other.now = sessions.now
		_, err = other.Parse(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewJWTSessions(testSecret, "someone-else")
		require.NoError(t, err)
		other.now = sessions.now
		_, err = other.Parse(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := sessions.Parse("not-a-token")
		assert.Error(t, err)
	})
}

func TestNewJWTSessionsRequiresSecret(t *testing.T) {
	_, err := NewJWTSessions("", "obd")
	assert.Error(t, err)
}

func TestSessionAuth(t *testing.T) {
	sessions := newSessions(t)
	token, err := sessions.Issue(&model.Session{ID: "sid", Principal: model.Principal{ID: "u1"}}, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(SessionAuth(sessions))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserIDFromContext(c))
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid token", "Bearer " + token, "u1"},
		{"no header", "", ""},
		{"bad scheme", "Basic abc", ""},
		{"bad token", "Bearer nope", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(util.RequestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestLoggerPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Logger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRateLimiterLocal(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(NewLocalLimiter(2, time.Hour), 2, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeError(t, w)
	assert.False(t, body.OK)
	assert.Equal(t, obd_errors.CodeRateLimited, body.Code)
}

func TestRateLimiterKeysOnUser(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set(util.SessionKey, &model.Session{Principal: model.Principal{ID: id}})
		}
	})
	r.Use(RateLimiter(NewLocalLimiter(1, time.Hour), 1, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusOK, send("u2"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
}

func TestRateLimiterRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, db.UseRedis(client, []byte("0123456789abcdef0123456789abcdef")))
	t.Cleanup(db.CloseRedis)

	limiter := NewLimiter(1, time.Minute)
	require.IsType(t, RedisLimiter{}, limiter)

	r := gin.New()
	r.Use(RateLimiter(limiter, 1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequirePermission(t *testing.T) {
	session := &model.Session{ID: "sid", Principal: model.Principal{ID: "u1"}}
	tc := &model.TenantContext{BusinessID: "b1", Role: model.RoleStaff, UserID: "u1"}

	gate := new(mock.MockPermissionService)
	gate.On("Require", tmock.Anything, session, "b1", model.AppCRM, model.ActionView).Return(tc, nil)
	gate.On("Require", tmock.Anything, session, "b1", model.AppCRM, model.ActionManageSettings).
		Return(nil, obd_errors.RoleNotPermitted(obd_errors.ErrRoleNotPermitted))

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(util.SessionKey, session) })
	r.GET("/view", RequirePermission(gate, model.AppCRM, model.ActionView), func(c *gin.Context) {
		util.RespondOK(c, http.StatusOK, util.GetTenantContext(c))
	})
	r.GET("/settings", RequirePermission(gate, model.AppCRM, model.ActionManageSettings), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.Header.Set("X-Business-Id", "b1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"businessId":"b1","role":"STAFF","userId":"u1"}}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/settings?businessId=b1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, obd_errors.CodeForbidden, decodeError(t, w).Code)

	gate.AssertExpectations(t)
}
