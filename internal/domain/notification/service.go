package notification

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLen     = 150
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pusher delivers a live event to a connected user. It reports false when
// the user has no open connection.
type Pusher interface {
	SendToUser(userID int64, event any) bool
}

type PushEvent struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification"`
}

type Service struct {
	repo   *Repository
	pusher Pusher
	now    func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetPusher enables live delivery of new notifications.
func (s *Service) SetPusher(p Pusher) {
	s.pusher = p
}

func (s *Service) Notify(ctx context.Context, in Input) (*Notification, error) {
	n, err := build(in, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	s.push(n)
	return n, nil
}

// NotifyMany sends the same notification to every distinct recipient except
// the actor.
func (s *Service) NotifyMany(ctx context.Context, userIDs []int64, in Input) ([]*Notification, error) {
	seen := make(map[int64]bool, len(userIDs))
	list := make([]*Notification, 0, len(userIDs))
	for _, id := range userIDs {
		if id <= 0 || seen[id] || (in.ActorID != nil && *in.ActorID == id) {
			continue
		}
		seen[id] = true
		n, err := build(in, id)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}

	if err := s.repo.CreateBatch(ctx, list); err != nil {
		return nil, fmt.Errorf("create notifications: %w", err)
	}
	for _, n := range list {
		s.push(n)
	}
	return list, nil
}

func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) (*ListResult, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	if page < 1 {
		page = 1
	}

	items, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total, Unread: unread}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID, s.now())
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

// PurgeRead deletes read notifications older than keep.
func (s *Service) PurgeRead(ctx context.Context, keep time.Duration) (int64, error) {
	start := time.Now()
	deleted, err := s.repo.DeleteReadBefore(ctx, s.now().Add(-keep))
	if err != nil {
		log.Printf("notification_purge_failed keep=%s err=%v", keep, err)
		return 0, err
	}
	log.Printf("notification_purge deleted=%d keep=%s took=%s", deleted, keep, time.Since(start))
	return deleted, nil
}

func (s *Service) push(n *Notification) {
	if s.pusher == nil {
		return
	}
	s.pusher.SendToUser(n.UserID, PushEvent{Type: "notification", Notification: n})
}

func build(in Input, userID int64) (*Notification, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: missing recipient", ErrInvalidNotification)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidNotification)
	}
	if !in.Target.Valid() {
		return nil, fmt.Errorf("%w: bad target %s/%d", ErrInvalidNotification, in.Target.Kind, in.Target.ID)
	}
	typ := in.Type
	if typ == "" {
		typ = TypeGeneral
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidNotification, typ)
	}

	n := &Notification{
		UserID:  userID,
		ActorID: in.ActorID,
		Type:    typ,
		Title:   truncate(title, maxTitleLen),
		Message: in.Message,
		Link:    in.Link,
	}
	if !in.Target.IsZero() {
		t := in.Target
		n.Target = &t
	}
	return n, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
