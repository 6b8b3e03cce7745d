package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/events"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/repomanager"
)

const DefaultEventColor = "blue"

var eventColors = map[string]bool{
	"red": true, "green": true, "blue": true,
	"yellow": true, "purple": true, "orange": true,
}

// listing bounds used when no month is requested
var (
	calendarMin = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	calendarMax = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// UpdateCalendarEvent holds the fields to change; nil leaves a field as is.
type UpdateCalendarEvent struct {
	Title       *string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Color       *string
}

// NewCalendarEvent is the input of CalendarService.CreateEvent.
type NewCalendarEvent struct {
	Title       string
	Description *string
	StartsAt    time.Time
	EndsAt      *time.Time
	Color       string
}

type CalendarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         Broadcaster
	logger      logging.Logger
}

func NewCalendarService(db *sql.DB, m repomanager.RepositoryManager, hub Broadcaster, logger logging.Logger) *CalendarService {
	return &CalendarService{
		db:          db,
		repomanager: m,
		hub:         hub,
		logger:      logger.With("module", "calendar"),
	}
}

func validateEvent(title string, description *string, startsAt time.Time, endsAt *time.Time, color string) error {
	if err := checkLength("title", title, 1, 200); err != nil {
		return err
	}
	if description != nil {
		if err := checkLength("description", *description, 0, 1000); err != nil {
			return err
		}
	}
	if !eventColors[color] {
		return fmt.Errorf("%w: unknown color %q", common.ErrorValidation, color)
	}
	if startsAt.IsZero() {
		return fmt.Errorf("%w: starts_at is required", common.ErrorValidation)
	}
	if endsAt != nil && endsAt.Before(startsAt) {
		return fmt.Errorf("%w: ends_at is before starts_at", common.ErrorValidation)
	}
	return nil
}

// MonthRange returns [first day of month, first day of next month) in UTC.
func MonthRange(year, month int) (time.Time, time.Time, error) {
	if year < 1 || year > 9998 || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad year/month", common.ErrorValidation)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

// ListEvents returns the family's events ordered by start. With year and
// month both zero every event is returned; otherwise only those starting in
// that month.
func (s *CalendarService) ListEvents(ctx context.Context, userID, familyID string, year, month int) ([]models.CalendarEvent, error) {
	from, to := calendarMin, calendarMax
	if year != 0 || month != 0 {
		var err error
		if from, to, err = MonthRange(year, month); err != nil {
			return nil, err
		}
	}
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Calendar(s.db).ListRange(ctx, familyID, from, to)
}

// CreateEvent stores an event and announces it on the family room.
func (s *CalendarService) CreateEvent(ctx context.Context, userID, familyID string, in NewCalendarEvent) (*models.CalendarEvent, error) {
	title := strings.TrimSpace(in.Title)
	color := in.Color
	if color == "" {
		color = DefaultEventColor
	}
	if err := validateEvent(title, in.Description, in.StartsAt, in.EndsAt, color); err != nil {
		return nil, err
	}
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}

	creator := userID
	ev, err := s.repomanager.Calendar(s.db).Create(ctx, &models.CalendarEvent{
		FamilyID:    familyID,
		CreatedBy:   &creator,
		Title:       title,
		Description: in.Description,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		Color:       color,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating calendar event: %w", err)
	}

	s.hub.BroadcastToFamily(ctx, familyID, events.CalendarEventCreated{
		EventID:     ev.ID,
		Title:       ev.Title,
		StartsAt:    ev.StartsAt,
		CreatorName: userName(ctx, s.repomanager.Users(s.db), userID),
	})
	return ev, nil
}

// eventInFamily hides events of other families behind common.ErrorNotFound.
func (s *CalendarService) eventInFamily(ctx context.Context, familyID, eventID string) (*models.CalendarEvent, error) {
	ev, err := s.repomanager.Calendar(s.db).GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading calendar event: %w", err)
	}
	if ev.FamilyID != familyID {
		return nil, common.ErrorNotFound
	}
	return ev, nil
}

// UpdateEvent applies in to an event. Only its creator may edit it.
func (s *CalendarService) UpdateEvent(ctx context.Context, userID, familyID, eventID string, in UpdateCalendarEvent) (*models.CalendarEvent, error) {
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	ev, err := s.eventInFamily(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}
	if ev.CreatedBy == nil || *ev.CreatedBy != userID {
		return nil, common.ErrorForbidden
	}

	if in.Title != nil {
		ev.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		ev.Description = in.Description
	}
	if in.StartsAt != nil {
		ev.StartsAt = *in.StartsAt
	}
	if in.EndsAt != nil {
		ev.EndsAt = in.EndsAt
	}
	if in.Color != nil {
		ev.Color = *in.Color
	}
	if err := validateEvent(ev.Title, ev.Description, ev.StartsAt, ev.EndsAt, ev.Color); err != nil {
		return nil, err
	}

	updated, err := s.repomanager.Calendar(s.db).Update(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("error updating calendar event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes an event. Its creator and the family owner may do so.
func (s *CalendarService) DeleteEvent(ctx context.Context, userID, familyID, eventID string) error {
	m, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID)
	if err != nil {
		return err
	}
	ev, err := s.eventInFamily(ctx, familyID, eventID)
	if err != nil {
		return err
	}
	isCreator := ev.CreatedBy != nil && *ev.CreatedBy == userID
	if !isCreator && m.Role != models.RoleOwner {
		return common.ErrorForbidden
	}
	if err := s.repomanager.Calendar(s.db).Delete(ctx, eventID); err != nil {
		return fmt.Errorf("error deleting calendar event: %w", err)
	}
	return nil
}
