package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/farellandr/tixflow/internal/models"
	"github.com/farellandr/tixflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchEvents(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, 5)
	repo := NewEventRepository(db)

	other := models.Event{
		Title:       "Rock Fest",
		Description: "Loud guitars",
		StartTime:   time.Date(2027, 2, 10, 12, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2027, 2, 11, 23, 0, 0, 0, time.UTC),
		Location:    "Bandung Arena",
		City:        "Bandung",
		UserID:      f.Organizer.ID,
	}
	require.NoError(t, repo.Create(context.Background(), &other))

	events, total, err := repo.Search(context.Background(), EventFilter{Keyword: "jazz"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, f.Event.ID, events[0].ID)
	assert.Len(t, events[0].TicketTypes, 1)

	events, _, err = repo.Search(context.Background(), EventFilter{Location: "bandung"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, other.ID, events[0].ID)

	day := time.Date(2027, 2, 11, 0, 0, 0, 0, time.UTC)
	events, _, err = repo.Search(context.Background(), EventFilter{StartDate: &day})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, other.ID, events[0].ID)

	events, total, err = repo.Search(context.Background(), EventFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 1)
}

func TestFindEventWithOrganizer(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, 5)

	event, err := NewEventRepository(db).FindByID(context.Background(), f.Event.ID)
	require.NoError(t, err)
	require.NotNil(t, event.User)
	assert.Equal(t, f.Organizer.ID, event.User.ID)
}
