package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/auth"
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	repo.Repository

	nextID int64

	events      map[int64]*model.Event
	children    map[int64][]model.Event
	dependents  map[int64]bool
	eventAdmins map[int64][]int64
	attendees   map[int64]*model.Attendee
	admins      map[int64]*model.Administrator
	messages    map[int64]*model.Message
	featured    map[int64]*model.FeaturedEvent
	imports     map[int64]*model.EventImport

	assigned  [][2]int64
	notified  []*model.AsyncMessage
	views     []int64
	lastLogin []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:      100,
		events:      map[int64]*model.Event{},
		children:    map[int64][]model.Event{},
		dependents:  map[int64]bool{},
		eventAdmins: map[int64][]int64{},
		attendees:   map[int64]*model.Attendee{},
		admins:      map[int64]*model.Administrator{},
		messages:    map[int64]*model.Message{},
		featured:    map[int64]*model.FeaturedEvent{},
		imports:     map[int64]*model.EventImport{},
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) notify(n repo.OutboxFunc, id int64) error {
	if n == nil {
		return nil
	}
	m, err := n(id)
	if err != nil {
		return err
	}
	if m != nil {
		f.notified = append(f.notified, m)
	}
	return nil
}

// events

func (f *fakeRepo) GetEventByID(_ context.Context, id int64) (*model.Event, error) {
	if e, ok := f.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, repo.ErrEventNotFound
}

func (f *fakeRepo) GetEventBySlug(_ context.Context, slug string) (*model.Event, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repo.ErrEventNotFound
}

func (f *fakeRepo) ListEvents(_ context.Context, activeOnly bool) ([]model.Event, error) {
	var out []model.Event
	for _, e := range f.events {
		if !activeOnly || e.IsActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeRepo) SlugTaken(_ context.Context, slug string) (bool, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateEvent(_ context.Context, e *model.Event) (int64, error) {
	if taken, _ := f.SlugTaken(context.Background(), e.Slug); taken {
		return 0, repo.ErrDuplicateSlug
	}
	e.ID = f.id()
	cp := *e
	f.events[e.ID] = &cp
	return e.ID, nil
}

func (f *fakeRepo) UpdateEvent(_ context.Context, e *model.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return repo.ErrEventNotFound
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteEvent(_ context.Context, id int64, force bool) error {
	if _, ok := f.events[id]; !ok {
		return repo.ErrEventNotFound
	}
	if f.dependents[id] && !force {
		return repo.ErrEventHasDependents
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepo) ListChildEvents(_ context.Context, parentID int64) ([]model.Event, error) {
	return f.children[parentID], nil
}

func (f *fakeRepo) CreateOccurrences(_ context.Context, events []model.Event) ([]int64, error) {
	ids := make([]int64, 0, len(events))
	for i := range events {
		events[i].ID = f.id()
		f.children[*events[i].ParentEventID] = append(f.children[*events[i].ParentEventID], events[i])
		ids = append(ids, events[i].ID)
	}
	return ids, nil
}

func (f *fakeRepo) AssignAdministrator(_ context.Context, eventID, administratorID int64) error {
	f.assigned = append(f.assigned, [2]int64{eventID, administratorID})
	f.eventAdmins[eventID] = append(f.eventAdmins[eventID], administratorID)
	return nil
}

func (f *fakeRepo) IsEventAdministrator(_ context.Context, eventID, administratorID int64) (bool, error) {
	for _, id := range f.eventAdmins[eventID] {
		if id == administratorID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CountAttendees(_ context.Context, eventID int64) (int, error) {
	n := 0
	for _, a := range f.attendees {
		if a.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListAgendaItems(context.Context, int64, bool) ([]model.AgendaItem, error) {
	return nil, nil
}

func (f *fakeRepo) ListEventPresenters(context.Context, int64, bool) ([]model.EventPresenter, error) {
	return nil, nil
}

// attendees

func (f *fakeRepo) RegisterAttendee(ctx context.Context, a *model.Attendee, notify repo.OutboxFunc) (int64, error) {
	e, ok := f.events[a.EventID]
	if !ok || !e.IsActive {
		return 0, repo.ErrEventNotFound
	}
	for _, other := range f.attendees {
		if strings.EqualFold(other.Email, a.Email) {
			return 0, repo.ErrDuplicateEmail
		}
	}
	if e.MaxAttendees != nil {
		if n, _ := f.CountAttendees(ctx, a.EventID); n >= *e.MaxAttendees {
			return 0, repo.ErrEventFull
		}
	}
	a.ID = f.id()
	cp := *a
	f.attendees[a.ID] = &cp
	return a.ID, f.notify(notify, a.ID)
}

func (f *fakeRepo) GetAttendeeByID(_ context.Context, id int64) (*model.Attendee, error) {
	if a, ok := f.attendees[id]; ok {
		return a, nil
	}
	return nil, repo.ErrAttendeeNotFound
}

func (f *fakeRepo) GetAttendeeByEmail(_ context.Context, email string) (*model.Attendee, error) {
	for _, a := range f.attendees {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, repo.ErrAttendeeNotFound
}

func (f *fakeRepo) VerifyAttendeeEmail(_ context.Context, token string) (*model.Attendee, error) {
	for _, a := range f.attendees {
		if a.EmailVerificationToken != nil && *a.EmailVerificationToken == token {
			now := testNow
			a.EmailVerifiedAt = &now
			a.EmailVerificationToken = nil
			return a, nil
		}
	}
	return nil, repo.ErrAttendeeNotFound
}

// administrators

func (f *fakeRepo) GetAdministratorByEmail(_ context.Context, email string) (*model.Administrator, error) {
	for _, a := range f.admins {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, repo.ErrAdministratorNotFound
}

func (f *fakeRepo) TouchLastLogin(_ context.Context, id int64) error {
	f.lastLogin = append(f.lastLogin, id)
	return nil
}

// messages

func (f *fakeRepo) GetMessageByID(_ context.Context, id int64) (*model.Message, error) {
	if m, ok := f.messages[id]; ok {
		return m, nil
	}
	return nil, repo.ErrMessageNotFound
}

func (f *fakeRepo) CreateMessage(_ context.Context, m *model.Message, notify repo.OutboxFunc) (int64, error) {
	m.ID = f.id()
	cp := *m
	f.messages[m.ID] = &cp
	return m.ID, f.notify(notify, m.ID)
}

// featured

func (f *fakeRepo) CreateFeatured(_ context.Context, fe *model.FeaturedEvent) (int64, error) {
	fe.ID = f.id()
	cp := *fe
	f.featured[fe.ID] = &cp
	return fe.ID, nil
}

func (f *fakeRepo) UpdateFeatured(_ context.Context, fe *model.FeaturedEvent) error {
	if _, ok := f.featured[fe.ID]; !ok {
		return repo.ErrFeaturedNotFound
	}
	cp := *fe
	f.featured[fe.ID] = &cp
	return nil
}

func (f *fakeRepo) GetFeaturedByID(_ context.Context, id int64) (*model.FeaturedEvent, error) {
	if fe, ok := f.featured[id]; ok {
		cp := *fe
		return &cp, nil
	}
	return nil, repo.ErrFeaturedNotFound
}

func (f *fakeRepo) ListActiveFeatured(_ context.Context, now time.Time, displayType string) ([]model.FeaturedEvent, error) {
	var out []model.FeaturedEvent
	for _, fe := range f.featured {
		if fe.InWindow(now) && (displayType == "" || fe.DisplayType == displayType) {
			out = append(out, *fe)
		}
	}
	return out, nil
}

func (f *fakeRepo) RecordFeaturedViews(_ context.Context, ids []int64) error {
	f.views = append(f.views, ids...)
	return nil
}

func (f *fakeRepo) RecordFeaturedClick(_ context.Context, id int64) (*model.FeaturedEvent, error) {
	fe, ok := f.featured[id]
	if !ok {
		return nil, repo.ErrFeaturedNotFound
	}
	fe.ClickCount++
	cp := *fe
	return &cp, nil
}

// imports

func (f *fakeRepo) CreateImport(_ context.Context, imp *model.EventImport, notify repo.OutboxFunc) (int64, error) {
	imp.ID = f.id()
	cp := *imp
	f.imports[imp.ID] = &cp
	return imp.ID, f.notify(notify, imp.ID)
}

func (f *fakeRepo) GetImportByID(_ context.Context, id int64) (*model.EventImport, error) {
	if imp, ok := f.imports[id]; ok {
		return imp, nil
	}
	return nil, repo.ErrImportNotFound
}

// helpers

func newTestService(t *testing.T, r repo.Repository) *service {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour, "test")
	require.NoError(t, err)
	log := zerolog.Nop()
	s := NewService(r, &log, tokens, Config{OutboxQueue: "test.async", StorageDir: t.TempDir()}).(*service)
	s.now = func() time.Time { return testNow }
	return s
}

type envelope struct {
	Status string          `json:"status"`
	Error  *dto.Error      `json:"error"`
	Data   json.RawMessage `json:"data"`
}

type call struct {
	method  string
	pattern string
	target  string
	handler gin.HandlerFunc
	claims  *auth.Claims
	body    []byte
	ctype   string
}

func (c call) do(t *testing.T) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(c.method, c.pattern, func(ctx *gin.Context) {
		if c.claims != nil {
			auth.WithSubject(ctx, c.claims)
		}
		ctx.Next()
	}, c.handler)

	req := httptest.NewRequest(c.method, c.target, bytes.NewReader(c.body))
	if c.ctype != "" {
		req.Header.Set("Content-Type", c.ctype)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func jsonCall(t *testing.T, method, pattern, target string, h gin.HandlerFunc, body any) call {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return call{method: method, pattern: pattern, target: target, handler: h, body: raw, ctype: "application/json"}
}

func formCall(method, pattern, target string, h gin.HandlerFunc, values url.Values) call {
	return call{
		method: method, pattern: pattern, target: target, handler: h,
		body: []byte(values.Encode()), ctype: "application/x-www-form-urlencoded",
	}
}

func adminClaims(id int64) *auth.Claims {
	return &auth.Claims{SubID: id, Kind: auth.KindAdmin, Roles: []string{model.RoleAdmin}}
}

func attendeeClaims(id int64) *auth.Claims {
	return &auth.Claims{SubID: id, Kind: auth.KindAttendee, Roles: []string{model.RoleAttendee}}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestRespondRepoError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{repo.ErrEventNotFound, http.StatusNotFound, dto.EventNotFound},
		{repo.ErrEventFull, http.StatusBadRequest, dto.EventFull},
		{repo.ErrEventHasDependents, http.StatusConflict, dto.EventHasDependents},
		{repo.ErrDuplicateSlug, http.StatusConflict, dto.SlugDuplicate},
		{repo.ErrDuplicateEmail, http.StatusConflict, dto.EmailDuplicate},
		{repo.ErrAlreadyCheckedIn, http.StatusConflict, dto.AlreadyCheckedIn},
		{repo.ErrImportNotFound, http.StatusNotFound, dto.ImportNotFound},
		{repo.ErrReferenceNotFound, http.StatusBadRequest, dto.FieldIncorrect},
		{assert.AnError, http.StatusInternalServerError, dto.ServiceUnavailable},
	}

	s := newTestService(t, newFakeRepo())
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w, env := call{
				method: http.MethodGet, pattern: "/x", target: "/x",
				handler: func(c *gin.Context) { s.respondRepoError(c, tt.err, "test") },
			}.do(t)
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestParamID(t *testing.T) {
	s := newTestService(t, newFakeRepo())
	w, env := call{
		method: http.MethodGet, pattern: "/events/:id", target: "/events/abc",
		handler: s.AdminGetEvent,
	}.do(t)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.FieldIncorrect, env.Error.Code)
}

func TestRenderMarkdown(t *testing.T) {
	html, err := renderMarkdown("# Agenda\n\n**Doors** open at 6pm <script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Agenda</h1>")
	assert.Contains(t, html, "<strong>Doors</strong>")
	assert.NotContains(t, html, "<script>")

	html, err = renderMarkdown("")
	require.NoError(t, err)
	assert.Empty(t, html)
}
