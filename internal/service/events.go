package service

import (
	"context"
	"fmt"
	"time"

	apperrors "ovation/internal/errors"
	"ovation/internal/models"
	"ovation/internal/repository"
)

type EventService struct {
	events *repository.EventRepository
}

func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events}
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	start, err := time.Parse(time.RFC3339, req.DatetimeStart)
	if err != nil {
		return nil, fmt.Errorf("invalid datetime_start: %w", err)
	}

	if req.EventType == models.EventTypeTicketed && len(req.TicketClasses) == 0 {
		return nil, fmt.Errorf("ticketed events need at least one ticket class")
	}

	event := &models.Event{
		Title:         req.Title,
		Description:   req.Description,
		EventType:     req.EventType,
		DatetimeStart: start,
		Published:     true,
	}

	for _, tc := range req.TicketClasses {
		event.TicketClasses = append(event.TicketClasses, models.TicketClass{
			Name:     tc.Name,
			Price:    tc.Price,
			Quantity: tc.Quantity,
		})
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

func (s *EventService) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, page, pageSize int) ([]models.Event, error) {
	events, err := s.events.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Update applies post-publish edits. Only the allow-listed fields (title,
// description) are accepted; ticket class changes never go through here.
func (s *EventService) Update(ctx context.Context, id int64, req *models.UpdateEventRequest) error {
	if req.Title == nil && req.Description == nil {
		return fmt.Errorf("no updatable fields in request")
	}
	return s.events.UpdateDetails(ctx, id, req.Title, req.Description)
}
