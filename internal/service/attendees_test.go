package service

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/auth"
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerCall(t *testing.T, s *service, body map[string]any) call {
	return jsonCall(t, http.MethodPost, "/events/:slug/register", "/events/spring-gala/register", s.Register, body)
}

func TestRegister(t *testing.T) {
	r := newFakeRepo()
	e := gala(r)
	s := newTestService(t, r)

	w, env := registerCall(t, s, map[string]any{
		"name": "Ada Lovelace", "email": "Ada@Example.COM", "password": "correct horse",
	}).do(t)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got dto.RegistrationResponse
	decodeData(t, env, &got)
	assert.True(t, got.VerificationRequired)
	require.NotNil(t, got.Attendee)
	assert.Equal(t, e.ID, got.Attendee.EventID)
	assert.Equal(t, "ada@example.com", got.Attendee.Email)

	stored := r.attendees[got.Attendee.ID]
	assert.Equal(t, "ada@example.com", stored.Email)
	require.NotNil(t, stored.EmailVerificationToken)
	assert.Len(t, *stored.EmailVerificationToken, 36)
	require.NotNil(t, stored.PasswordHash)
	assert.NoError(t, auth.CheckPassword(*stored.PasswordHash, "correct horse"))
	assert.Equal(t, model.Roles{model.RoleAttendee}, stored.Roles)

	require.Len(t, r.notified, 1)
	msg := r.notified[0]
	assert.Equal(t, "test.async", msg.QueueName)
	env2, err := outbox.Decode([]byte(msg.Body))
	require.NoError(t, err)
	assert.Equal(t, outbox.TypeAttendeeVerify, env2.Type)
	var payload outbox.AttendeeVerifyPayload
	require.NoError(t, json.Unmarshal(env2.Payload, &payload))
	assert.Equal(t, stored.ID, payload.AttendeeID)
}

func TestRegister_Failures(t *testing.T) {
	r := newFakeRepo()
	e := gala(r)
	r.attendees[1] = &model.Attendee{ID: 1, EventID: e.ID, Email: "taken@example.com"}
	s := newTestService(t, r)

	w, env := registerCall(t, s, map[string]any{"name": "Dup", "email": "TAKEN@example.com"}).do(t)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.EmailDuplicate, env.Error.Code)

	r.attendees[2] = &model.Attendee{ID: 2, EventID: e.ID, Email: "second@example.com"}
	w, env = registerCall(t, s, map[string]any{"name": "Late", "email": "late@example.com"}).do(t)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.EventFull, env.Error.Code)

	w, env = registerCall(t, s, map[string]any{"name": "No Mail", "email": "not-an-email"}).do(t)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.FieldIncorrect, env.Error.Code)

	assert.Empty(t, r.notified)
}

func TestVerifyEmail(t *testing.T) {
	token := "3f1c9b7e-0000-4000-8000-000000000001"
	r := newFakeRepo()
	r.attendees[1] = &model.Attendee{ID: 1, EventID: 1, Email: "ada@example.com", EmailVerificationToken: &token}
	s := newTestService(t, r)
	verify := func(q string) (int, envelope) {
		w, env := call{
			method: http.MethodGet, pattern: "/attendees/verify", target: "/attendees/verify" + q, handler: s.VerifyEmail,
		}.do(t)
		return w.Code, env
	}

	code, env := verify("")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, dto.TokenInvalid, env.Error.Code)

	code, _ = verify("?token=" + token)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, r.attendees[1].IsVerified())

	code, env = verify("?token=" + token)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, dto.TokenInvalid, env.Error.Code)
}

func TestAttendeeLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	r := newFakeRepo()
	r.attendees[1] = &model.Attendee{ID: 1, EventID: 1, Email: "ada@example.com", PasswordHash: &hash, Roles: model.Roles{model.RoleAttendee}}
	s := newTestService(t, r)
	login := func(password string) (int, envelope) {
		w, env := jsonCall(t, http.MethodPost, "/attendees/login", "/attendees/login", s.AttendeeLogin,
			map[string]any{"email": "ada@example.com", "password": password}).do(t)
		return w.Code, env
	}

	code, _ := login("wrong password")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := login("correct horse")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, dto.Forbidden, env.Error.Code)

	verified := time.Now()
	r.attendees[1].EmailVerifiedAt = &verified
	code, env = login("correct horse")
	require.Equal(t, http.StatusOK, code)

	var tok dto.TokenResponse
	decodeData(t, env, &tok)
	claims, err := s.tokens.Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.SubID)
	assert.Equal(t, auth.KindAttendee, claims.Kind)
}

func TestAdminLogin(t *testing.T) {
	hash, err := auth.HashPassword("admin password")
	require.NoError(t, err)
	r := newFakeRepo()
	r.admins[2] = &model.Administrator{ID: 2, Email: "root@example.com", PasswordHash: hash, IsActive: true, IsSuperAdmin: true}
	r.admins[3] = &model.Administrator{ID: 3, Email: "gone@example.com", PasswordHash: hash, IsActive: false}
	s := newTestService(t, r)
	login := func(email string) (int, envelope) {
		w, env := jsonCall(t, http.MethodPost, "/admin/login", "/admin/login", s.AdminLogin,
			map[string]any{"email": email, "password": "admin password"}).do(t)
		return w.Code, env
	}

	code, env := login("root@example.com")
	require.Equal(t, http.StatusOK, code)
	var tok dto.TokenResponse
	decodeData(t, env, &tok)
	claims, err := s.tokens.Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.KindAdmin, claims.Kind)
	assert.True(t, claims.HasRole(model.RoleAdmin))
	assert.True(t, claims.HasRole(model.RoleSuperAdmin))
	assert.Equal(t, []int64{2}, r.lastLogin)

	code, _ = login("gone@example.com")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = login("nobody@example.com")
	assert.Equal(t, http.StatusUnauthorized, code)
}
