// Package testutil provides an on-disk sqlite database and fixtures shared
// by repository, service and handler tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/farellandr/tixflow/config"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated sqlite database that lives for the duration of t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tixflow.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Fixture is a minimal catalogue: one organizer, one buyer, one event with a
// single ticket type.
type Fixture struct {
	Organizer  models.User
	Buyer      models.User
	Event      models.Event
	TicketType models.TicketType
}

// Seed inserts a Fixture whose ticket type has the given remaining count.
func Seed(t *testing.T, db *gorm.DB, remaining int) Fixture {
	t.Helper()

	var organizerRole, attendeeRole models.Role
	require.NoError(t, db.Where("name = ?", models.RoleOrganizer).First(&organizerRole).Error)
	require.NoError(t, db.Where("name = ?", models.RoleAttendee).First(&attendeeRole).Error)

	f := Fixture{
		Organizer: models.User{
			Email:     "organizer-" + uuid.NewString() + "@example.com",
			Password:  "x",
			FirstName: "Olive",
			RoleID:    organizerRole.ID,
		},
		Buyer: models.User{
			Email:     "buyer-" + uuid.NewString() + "@example.com",
			Password:  "x",
			FirstName: "Bima",
			LastName:  "Putra",
			RoleID:    attendeeRole.ID,
		},
	}
	require.NoError(t, db.Omit("Role").Create(&f.Organizer).Error)
	require.NoError(t, db.Omit("Role").Create(&f.Buyer).Error)

	start := time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC)
	f.Event = models.Event{
		Title:       "Jazz Night",
		Description: "An evening of jazz",
		StartTime:   start,
		EndTime:     start.Add(3 * time.Hour),
		Location:    "Jakarta Convention Center",
		City:        "Jakarta",
		UserID:      f.Organizer.ID,
	}
	require.NoError(t, db.Create(&f.Event).Error)

	f.TicketType = AddTicketType(t, db, f.Event.ID, "Regular", 150000, remaining)
	return f
}

func AddTicketType(t *testing.T, db *gorm.DB, eventID uuid.UUID, name string, price int64, remaining int) models.TicketType {
	t.Helper()

	ticket := models.TicketType{EventID: eventID, Type: name, Price: price, Remaining: remaining}
	require.NoError(t, db.Create(&ticket).Error)
	return ticket
}

// Remaining reads the current remaining count of a ticket type.
func Remaining(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var ticket models.TicketType
	require.NoError(t, db.Where("id = ?", id).First(&ticket).Error)
	return ticket.Remaining
}
