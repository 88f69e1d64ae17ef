package notification

import (
	"context"
	"time"
)

// AdminDirectory lists the recipients of admin notifications.
type AdminDirectory interface {
	AdminIDs(ctx context.Context) ([]string, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	repo    *Repository
	admins  AdminDirectory
	hub     *Hub
	now     func() time.Time
	loggerf func(format string, args ...interface{})
}

// NewService wires storage and the optional realtime hub.
func NewService(repo *Repository, admins AdminDirectory, hub *Hub, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, admins: admins, hub: hub, now: time.Now, loggerf: loggerf}
}

func (s *Service) Create(ctx context.Context, userID string, t Type, title, message string, data map[string]any) (*Notification, error) {
	n := &Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.push(n)
	return n, nil
}

// NotifyAdmins creates one notification per admin account. Having no admin
// is not an error.
func (s *Service) NotifyAdmins(ctx context.Context, notifType, title, message string, data map[string]any) error {
	if s.admins == nil {
		return nil
	}
	ids, err := s.admins.AdminIDs(ctx)
	if err != nil {
		return err
	}
	list := make([]*Notification, 0, len(ids))
	for _, id := range ids {
		list = append(list, &Notification{
			UserID:  id,
			Type:    Type(notifType),
			Title:   title,
			Message: message,
			Data:    data,
		})
	}
	if err := s.repo.CreateMany(ctx, list); err != nil {
		return err
	}
	for _, n := range list {
		s.push(n)
	}
	s.loggerf("level=info msg=\"admins notified\" type=%s recipients=%d", notifType, len(list))
	return nil
}

// List returns the newest notifications of userID with the unread count.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Notification, int64, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkAsRead(ctx, id, userID, s.now()); err != nil {
		return err
	}
	s.pushUnread(ctx, userID)
	return nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID, s.now())
	if err != nil {
		return 0, err
	}
	s.pushUnread(ctx, userID)
	return n, nil
}

// Cleanup deletes read notifications older than retention.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := s.repo.DeleteReadBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	s.loggerf("level=info msg=\"notification cleanup\" deleted=%d", deleted)
	return deleted, nil
}

func (s *Service) push(n *Notification) {
	if s.hub == nil {
		return
	}
	s.hub.SendToUser(n.UserID, &WSEvent{Type: EventNotification, Payload: n})
}

func (s *Service) pushUnread(ctx context.Context, userID string) {
	if s.hub == nil || s.hub.Connected(userID) == 0 {
		return
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return
	}
	s.hub.SendToUser(userID, &WSEvent{Type: EventUnreadCount, Payload: map[string]int64{"unread_count": unread}})
}
