package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", time.Hour, "events")
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour, "")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSignAndParse(t *testing.T) {
	m := newManager(t)

	token, expires, err := m.Sign(12, KindAdmin, []string{model.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.SubID)
	assert.Equal(t, KindAdmin, claims.Kind)
	assert.True(t, claims.HasRole(model.RoleAdmin))
	assert.False(t, claims.HasRole(model.RoleSuperAdmin))
	assert.Equal(t, "admin:12", claims.Subject)
}

func TestParse_Rejects(t *testing.T) {
	m := newManager(t)
	token, _, err := m.Sign(1, KindAttendee, nil)
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret", time.Hour, "events")
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong horse"), ErrInvalidPassword)
	assert.ErrorIs(t, CheckPassword("", "anything"), ErrInvalidPassword)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager(t)

	adminToken, _, err := m.Sign(1, KindAdmin, []string{model.RoleAdmin})
	require.NoError(t, err)
	superToken, _, err := m.Sign(2, KindAdmin, []string{model.RoleAdmin, model.RoleSuperAdmin})
	require.NoError(t, err)
	attendeeToken, _, err := m.Sign(3, KindAttendee, []string{model.RoleAttendee})
	require.NoError(t, err)

	r := gin.New()
	echo := func(c *gin.Context) {
		claims, ok := Subject(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"sub_id": claims.SubID})
	}
	r.GET("/admin", m.RequireAdmin(), echo)
	r.GET("/super", m.RequireSuperAdmin(), echo)
	r.GET("/attendee", m.RequireAttendee(), echo)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/admin", "", http.StatusUnauthorized},
		{"wrong scheme", "/admin", "Token " + adminToken, http.StatusUnauthorized},
		{"garbage token", "/admin", "Bearer abc", http.StatusUnauthorized},
		{"admin ok", "/admin", "Bearer " + adminToken, http.StatusOK},
		{"attendee on admin route", "/admin", "Bearer " + attendeeToken, http.StatusForbidden},
		{"admin on super route", "/super", "Bearer " + adminToken, http.StatusForbidden},
		{"super ok", "/super", "Bearer " + superToken, http.StatusOK},
		{"attendee ok", "/attendee", "Bearer " + attendeeToken, http.StatusOK},
		{"admin on attendee route", "/attendee", "Bearer " + adminToken, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMiddleware_InactiveAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager(t)

	active := map[int64]bool{1: true, 2: false}
	m.SetAdminLookup(func(_ context.Context, id int64) (bool, error) {
		if id == 9 {
			return false, errors.New("db down")
		}
		return active[id], nil
	})

	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/admin", m.RequireAdmin(), ok)
	r.GET("/attendee", m.RequireAttendee(), ok)

	get := func(path string, id int64, kind string) int {
		token, _, err := m.Sign(id, kind, nil)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("/admin", 1, KindAdmin))
	assert.Equal(t, http.StatusUnauthorized, get("/admin", 2, KindAdmin))
	assert.Equal(t, http.StatusUnauthorized, get("/admin", 3, KindAdmin))
	assert.Equal(t, http.StatusInternalServerError, get("/admin", 9, KindAdmin))
	// attendee ids are never looked up as administrators
	assert.Equal(t, http.StatusOK, get("/attendee", 2, KindAttendee))

	active[2] = true
	assert.Equal(t, http.StatusOK, get("/admin", 2, KindAdmin))
}
