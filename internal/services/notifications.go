package services

import (
	"context"
	"errors"
	"strings"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Notifier persists one notification addressed to one user.
type Notifier interface {
	Notify(ctx context.Context, recipientID, content, sourceAppointmentID string) (*models.Notification, error)
}

// UnreadCounter caches per-user unread counts. Version changes on every
// Invalidate, and SetIfVersion refuses a fill read under an older version.
type UnreadCounter interface {
	Get(ctx context.Context, userID string) (count int64, ok bool, err error)
	Version(ctx context.Context, userID string) (int64, error)
	SetIfVersion(ctx context.Context, userID string, count, version int64) (stored bool, err error)
	Invalidate(ctx context.Context, userID string) error
}

// NotificationPublisher pushes freshly stored notifications to connected clients.
type NotificationPublisher interface {
	PublishNotification(userID string, n *models.Notification)
}

// NotificationPage is one page of a user's inbox.
type NotificationPage struct {
	Data        []models.Notification `json:"data"`
	TotalCount  int64                 `json:"totalCount"`
	CurrentPage int                   `json:"currentPage"`
	TotalPages  int                   `json:"totalPages"`
}

// NotificationService writes notifications and serves the per-user inbox.
type NotificationService struct {
	repo      repository.NotificationRepository
	counter   UnreadCounter
	publisher NotificationPublisher
	log       zerolog.Logger
}

// NewNotificationService wires the inbox. counter and publisher may be nil.
func NewNotificationService(repo repository.NotificationRepository, counter UnreadCounter, publisher NotificationPublisher, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		counter:   counter,
		publisher: publisher,
		log:       log.With().Str("component", "notifications").Logger(),
	}
}

// Notify stores a notification. Cache invalidation and push are best effort.
func (s *NotificationService) Notify(ctx context.Context, recipientID, content, sourceAppointmentID string) (*models.Notification, error) {
	if recipientID == "" {
		return nil, ValidationError("notification recipient is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, ValidationError("notification content is required")
	}

	n := &models.Notification{RecipientID: recipientID, Content: content}
	if sourceAppointmentID != "" {
		src := sourceAppointmentID
		n.SourceAppointmentID = &src
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.invalidate(ctx, recipientID)
	if s.publisher != nil {
		s.publisher.PublishNotification(recipientID, n)
	}
	return n, nil
}

// List returns page `page` (zero-based) of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, page, limit int) (*NotificationPage, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := s.repo.ListByRecipient(ctx, userID, limit, page*limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &NotificationPage{
		Data:        items,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// Unread returns every unread notification of the user, newest first.
func (s *NotificationService) Unread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

// UnreadCount serves from the cache when possible and fills it on a miss.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	fill := false
	var version int64
	if s.counter != nil {
		n, ok, err := s.counter.Get(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("unread counter read failed")
		} else if ok {
			return n, nil
		}
		// The version is taken before counting so a notification stored
		// in between invalidates this fill.
		if version, err = s.counter.Version(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("unread counter version read failed")
		} else {
			fill = true
		}
	}

	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if fill {
		stored, err := s.counter.SetIfVersion(ctx, userID, n, version)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("unread counter write failed")
		} else if !stored {
			s.log.Debug().Str("user_id", userID).Msg("unread count changed during fill, not cached")
		}
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	ok, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	ok, err := s.repo.Delete(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID string) error {
	if _, err := s.repo.DeleteAll(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *NotificationService) invalidate(ctx context.Context, userID string) {
	if s.counter == nil {
		return
	}
	if err := s.counter.Invalidate(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("unread counter invalidation failed")
	}
}
