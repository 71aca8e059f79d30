//go:build integration

package repo

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/jsonform"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

const migrationsDir = "../../migrations/postgres"

// newIntegrationRepo connects to TEST_DATABASE_DSN and recreates the schema.
func newIntegrationRepo(t *testing.T) Repository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}
	db, err := dbpg.New(dsn, nil, &dbpg.Options{MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetime: time.Minute})
	require.NoError(t, err)

	log := zerolog.Nop()
	r, err := NewRepository(db, &log)
	require.NoError(t, err)
	require.NoError(t, r.MigrateDown(migrationsDir))
	require.NoError(t, r.MigrateUp(migrationsDir))
	t.Cleanup(func() { _ = r.MigrateDown(migrationsDir) })
	return r
}

func newEvent(slug string) *model.Event {
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	return &model.Event{
		Title:     "Event " + slug,
		Slug:      slug,
		StartDate: start,
		EndDate:   start.Add(2 * time.Hour),
		IsActive:  true,
	}
}

func TestIntegration_EventSlugIsUnique(t *testing.T) {
	r := newIntegrationRepo(t)
	ctx := context.Background()

	_, err := r.CreateEvent(ctx, newEvent("harvest"))
	require.NoError(t, err)
	_, err = r.CreateEvent(ctx, newEvent("harvest"))
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	taken, err := r.SlugTaken(ctx, "HARVEST")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestIntegration_RegisterAttendeeRespectsCapacity(t *testing.T) {
	r := newIntegrationRepo(t)
	ctx := context.Background()

	seats := 1
	e := newEvent("tiny")
	e.MaxAttendees = &seats
	_, err := r.CreateEvent(ctx, e)
	require.NoError(t, err)

	_, err = r.RegisterAttendee(ctx, &model.Attendee{EventID: e.ID, Name: "Ada", Email: "ada@example.com", Roles: model.Roles{model.RoleAttendee}}, nil)
	require.NoError(t, err)
	_, err = r.RegisterAttendee(ctx, &model.Attendee{EventID: e.ID, Name: "Bob", Email: "bob@example.com", Roles: model.Roles{model.RoleAttendee}}, nil)
	assert.ErrorIs(t, err, ErrEventFull)

	_, err = r.RegisterAttendee(ctx, &model.Attendee{EventID: e.ID + 1000, Name: "Eve", Email: "eve@example.com"}, nil)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestIntegration_AttendeeForeignKey(t *testing.T) {
	r := newIntegrationRepo(t)

	// CreateAttendee inserts without locking the event, so only the constraint can refuse it.
	_, err := r.CreateAttendee(context.Background(), &model.Attendee{EventID: 424242, Name: "Ghost", Email: "ghost@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Contains(t, err.Error(), "424242")
}

func TestIntegration_DeleteEvent(t *testing.T) {
	r := newIntegrationRepo(t)
	ctx := context.Background()

	parent := newEvent("series")
	_, err := r.CreateEvent(ctx, parent)
	require.NoError(t, err)
	child := newEvent("series-20260908")
	child.ParentEventID = &parent.ID
	_, err = r.CreateOccurrences(ctx, []model.Event{*child})
	require.NoError(t, err)
	_, err = r.RegisterAttendee(ctx, &model.Attendee{EventID: parent.ID, Name: "Ada", Email: "ada@example.com"}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, r.DeleteEvent(ctx, parent.ID, false), ErrEventHasDependents)
	require.NoError(t, r.DeleteEvent(ctx, parent.ID, true))

	_, err = r.GetEventByID(ctx, parent.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	orphan, err := r.GetEventBySlug(ctx, "series-20260908")
	require.NoError(t, err)
	assert.Nil(t, orphan.ParentEventID)
}

func TestIntegration_FeaturedDisplaySettings(t *testing.T) {
	r := newIntegrationRepo(t)
	ctx := context.Background()

	admin := &model.Administrator{Name: "Root", Email: "root@example.com", PasswordHash: "x", IsActive: true, Roles: model.Roles{model.RoleAdmin}}
	_, err := r.CreateAdministrator(ctx, admin)
	require.NoError(t, err)

	f := &model.FeaturedEvent{
		CreatedByID:     admin.ID,
		Title:           "Banner",
		IsActive:        true,
		DisplayType:     model.DisplayBanner,
		DisplaySettings: jsonform.Document{"theme": "dark", "columns": 3},
	}
	_, err = r.CreateFeatured(ctx, f)
	require.NoError(t, err)

	got, err := r.GetFeaturedByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, jsonform.Document{"theme": "dark", "columns": json.Number("3")}, got.DisplaySettings)
	assert.Equal(t, "{\n    \"columns\": 3,\n    \"theme\": \"dark\"\n}", jsonform.Encode(got.DisplaySettings))

	got.DisplaySettings = nil
	require.NoError(t, r.UpdateFeatured(ctx, got))
	got, err = r.GetFeaturedByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DisplaySettings)

	clicked, err := r.RecordFeaturedClick(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, clicked.ClickCount)
}
