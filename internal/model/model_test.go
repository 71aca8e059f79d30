package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolesScan(t *testing.T) {
	var r Roles
	require.NoError(t, r.Scan([]byte(`["ROLE_ADMIN","ROLE_SUPER_ADMIN"]`)))
	assert.True(t, r.Has(RoleSuperAdmin))

	require.NoError(t, r.Scan(`"ROLE_ATTENDEE"`))
	assert.Equal(t, Roles{RoleAttendee}, r)

	require.NoError(t, r.Scan(nil))
	assert.Empty(t, r)

	assert.Error(t, r.Scan("{}"))
	assert.Error(t, r.Scan(12))
}

func TestRolesValue(t *testing.T) {
	v, err := Roles(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = Roles{RoleAdmin}.With(RoleAdmin).With(RoleSuperAdmin).Value()
	require.NoError(t, err)
	assert.Equal(t, `["ROLE_ADMIN","ROLE_SUPER_ADMIN"]`, v)
}

func TestFeaturedEventInWindow(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	f := FeaturedEvent{IsActive: true}
	assert.True(t, f.InWindow(now))

	f.StartDate = &after
	assert.False(t, f.InWindow(now))

	f.StartDate = &before
	f.EndDate = &after
	assert.True(t, f.InWindow(now))

	f.EndDate = &before
	assert.False(t, f.InWindow(now))

	f = FeaturedEvent{IsActive: false}
	assert.False(t, f.InWindow(now))
}

func TestEventIsRecurring(t *testing.T) {
	e := Event{}
	assert.False(t, e.IsRecurring())

	weekly := RecurrenceWeekly
	e.RecurrencePattern = &weekly
	assert.True(t, e.IsRecurring())
}
