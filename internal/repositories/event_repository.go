package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/farellandr/tixflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventFilter narrows event listings. Zero values are ignored.
type EventFilter struct {
	Location  string
	Keyword   string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return translate(r.db.WithContext(ctx).Create(event).Error, "event")
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("TicketTypes").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, translate(err, "event")
	}
	return &event, nil
}

func (r *EventRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&events).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Event, len(events))
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

// Search lists events matching the filter, newest first. An event matches the
// date range when either its start or its end falls inside it.
func (r *EventRepository) Search(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})

	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if filter.StartDate != nil {
		end := filter.StartDate.AddDate(0, 0, 1)
		if filter.EndDate != nil {
			end = *filter.EndDate
		}
		query = query.Where("((start_time >= ? AND start_time <= ?) OR (end_time >= ? AND end_time <= ?))",
			*filter.StartDate, end, *filter.StartDate, end)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var events []models.Event
	err := query.
		Preload("TicketTypes").
		Offset((page - 1) * limit).
		Limit(limit).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
