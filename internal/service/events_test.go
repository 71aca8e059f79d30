package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(r *fakeRepo, e model.Event) *model.Event {
	if e.ID == 0 {
		e.ID = r.id()
	}
	r.events[e.ID] = &e
	return &e
}

func gala(r *fakeRepo) *model.Event {
	seats := 2
	return seedEvent(r, model.Event{
		Title:        "Spring Gala",
		Description:  "Dinner and **dancing**",
		Slug:         "spring-gala",
		StartDate:    time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC),
		IsActive:     true,
		MaxAttendees: &seats,
	})
}

func TestGetEvent(t *testing.T) {
	r := newFakeRepo()
	e := gala(r)
	r.attendees[1] = &model.Attendee{ID: 1, EventID: e.ID, Email: "a@example.com"}
	s := newTestService(t, r)

	w, env := call{
		method: http.MethodGet, pattern: "/events/:slug", target: "/events/spring-gala", handler: s.GetEvent,
	}.do(t)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got dto.EventDetailResponse
	decodeData(t, env, &got)
	assert.Equal(t, e.ID, got.ID)
	assert.Contains(t, got.DescriptionHTML, "<strong>dancing</strong>")
	assert.Equal(t, 1, got.AttendeeCount)
	require.NotNil(t, got.AvailableSeats)
	assert.Equal(t, 1, *got.AvailableSeats)
	assert.NotNil(t, got.Agenda)
	assert.NotNil(t, got.Occurrences)
}

func TestGetEvent_InactiveIsNotFound(t *testing.T) {
	r := newFakeRepo()
	e := gala(r)
	r.events[e.ID].IsActive = false
	s := newTestService(t, r)

	w, env := call{
		method: http.MethodGet, pattern: "/events/:slug", target: "/events/spring-gala", handler: s.GetEvent,
	}.do(t)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.EventNotFound, env.Error.Code)
}

func TestCreateEvent_GeneratesUniqueSlug(t *testing.T) {
	r := newFakeRepo()
	gala(r)
	s := newTestService(t, r)

	c := jsonCall(t, http.MethodPost, "/admin/events", "/admin/events", s.CreateEvent, map[string]any{
		"title":      "Spring Gala!",
		"start_date": "2027-04-01T18:00:00Z",
		"end_date":   "2027-04-01T23:00:00Z",
	})
	c.claims = adminClaims(7)
	w, env := c.do(t)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got dto.EventResponse
	decodeData(t, env, &got)
	assert.Equal(t, "spring-gala-2", got.Slug)
	assert.True(t, got.IsActive)
	assert.NotZero(t, got.ID)
	assert.Equal(t, [][2]int64{{got.ID, 7}}, r.assigned)
}

func TestCreateEvent_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"end before start", map[string]any{
			"title": "Late", "start_date": "2027-04-02T18:00:00Z", "end_date": "2027-04-01T18:00:00Z",
		}},
		{"bad slug", map[string]any{
			"title": "Slug", "slug": "Not A Slug", "start_date": "2027-04-01T18:00:00Z", "end_date": "2027-04-01T19:00:00Z",
		}},
		{"unbounded recurrence", map[string]any{
			"title": "Weekly", "start_date": "2027-04-01T18:00:00Z", "end_date": "2027-04-01T19:00:00Z",
			"recurrence_pattern": "weekly",
		}},
		{"unknown pattern", map[string]any{
			"title": "Hourly", "start_date": "2027-04-01T18:00:00Z", "end_date": "2027-04-01T19:00:00Z",
			"recurrence_pattern": "hourly", "recurrence_occurrences": 3,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRepo()
			s := newTestService(t, r)
			c := jsonCall(t, http.MethodPost, "/admin/events", "/admin/events", s.CreateEvent, tt.body)
			c.claims = adminClaims(1)
			w, env := c.do(t)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, dto.FieldIncorrect, env.Error.Code)
			assert.Empty(t, r.events)
		})
	}
}

func TestUpdateEvent_KeepsSlugWhenOmitted(t *testing.T) {
	r := newFakeRepo()
	e := gala(r)
	s := newTestService(t, r)

	c := jsonCall(t, http.MethodPut, "/admin/events/:id", "/admin/events/"+itoa(e.ID), s.UpdateEvent, map[string]any{
		"title":      "Spring Gala 2026",
		"start_date": "2026-06-01T18:00:00Z",
		"end_date":   "2026-06-01T23:30:00Z",
	})
	w, _ := c.do(t)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "spring-gala", r.events[e.ID].Slug)
	assert.Equal(t, "Spring Gala 2026", r.events[e.ID].Title)
}

func TestDeleteEvent(t *testing.T) {
	r := newFakeRepo()
	e := gala(r)
	r.dependents[e.ID] = true
	s := newTestService(t, r)

	w, env := call{
		method: http.MethodDelete, pattern: "/admin/events/:id", target: "/admin/events/" + itoa(e.ID), handler: s.DeleteEvent,
	}.do(t)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.EventHasDependents, env.Error.Code)
	assert.Contains(t, r.events, e.ID)

	w, _ = call{
		method: http.MethodDelete, pattern: "/admin/events/:id", target: "/admin/events/" + itoa(e.ID) + "?force=true", handler: s.DeleteEvent,
	}.do(t)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, r.events, e.ID)
}

func TestGenerateOccurrences(t *testing.T) {
	r := newFakeRepo()
	weekly, three := model.RecurrenceWeekly, 3
	parent := seedEvent(r, model.Event{
		Title:                 "Book Club",
		Slug:                  "book-club",
		StartDate:             time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC),
		EndDate:               time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC),
		IsActive:              true,
		RecurrencePattern:     &weekly,
		RecurrenceOccurrences: &three,
	})
	s := newTestService(t, r)
	gen := call{
		method: http.MethodPost, pattern: "/admin/events/:id/occurrences",
		target: "/admin/events/" + itoa(parent.ID) + "/occurrences", handler: s.GenerateOccurrences,
	}

	w, env := gen.do(t)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got dto.OccurrencesResponse
	decodeData(t, env, &got)
	require.Len(t, got.Created, 2)
	assert.Equal(t, "book-club-20260309", got.Created[0].Slug)
	assert.Equal(t, "book-club-20260316", got.Created[1].Slug)
	assert.Equal(t, 2*time.Hour, got.Created[1].EndDate.Sub(got.Created[1].StartDate))
	require.NotNil(t, got.Created[0].ParentEventID)
	assert.Equal(t, parent.ID, *got.Created[0].ParentEventID)

	w, env = gen.do(t)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.Duplicate, env.Error.Code)
}

func TestGenerateOccurrences_NotRecurring(t *testing.T) {
	r := newFakeRepo()
	e := gala(r)
	s := newTestService(t, r)

	w, env := call{
		method: http.MethodPost, pattern: "/admin/events/:id/occurrences",
		target: "/admin/events/" + itoa(e.ID) + "/occurrences", handler: s.GenerateOccurrences,
	}.do(t)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.FieldIncorrect, env.Error.Code)
}
