package messaging

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"oloustream/internal/domain/notification"
)

const (
	maxContentRunes = 4000
	previewRunes    = 120
	historyLimit    = 100
)

type Service struct {
	repo     *Repository
	relay    Relay
	notifier Notifier
	staff    StaffDirectory
	now      func() time.Time
}

func NewService(db *gorm.DB, relay Relay, notifier Notifier, staff StaffDirectory) *Service {
	if relay == nil {
		relay = NewLocalRelay()
	}
	return &Service{
		repo:     NewRepository(db),
		relay:    relay,
		notifier: notifier,
		staff:    staff,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type Thread struct {
	Conversation *Conversation `json:"conversation"`
	Messages     []Message     `json:"messages"`
}

// Mine returns the caller's conversation and marks staff messages as read.
func (s *Service) Mine(ctx context.Context, userID int64) (*Thread, error) {
	conv, err := s.repo.ConversationFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.thread(ctx, conv, userID)
}

// Thread is the staff view of a conversation.
func (s *Service) Thread(ctx context.Context, conversationID, staffID int64) (*Thread, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return s.thread(ctx, conv, staffID)
}

func (s *Service) thread(ctx context.Context, conv *Conversation, readerID int64) (*Thread, error) {
	msgs, err := s.repo.Messages(ctx, conv.ID, historyLimit)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.MarkRead(ctx, conv.ID, readerID); err != nil {
		return nil, err
	}
	return &Thread{Conversation: conv, Messages: msgs}, nil
}

func (s *Service) ListConversations(ctx context.Context, page, pageSize int) ([]Conversation, int64, error) {
	return s.repo.ListConversations(ctx, pageSize, (page-1)*pageSize)
}

// SendAsUser posts a client message into the client's own conversation.
func (s *Service) SendAsUser(ctx context.Context, userID int64, content string) (*Message, error) {
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}
	conv, err := s.repo.ConversationFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, conv, userID, content)
}

// Reply posts a staff message. The first staff member to reply becomes the
// assigned admin of the conversation.
func (s *Service) Reply(ctx context.Context, conversationID, staffID int64, content string) (*Message, error) {
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.AdminID == nil && staffID != conv.UserID {
		if err := s.repo.Assign(ctx, conv.ID, staffID); err != nil {
			return nil, err
		}
		conv.AdminID = &staffID
	}
	return s.post(ctx, conv, staffID, content)
}

// MarkRead flags the other side's messages as read and tells them so.
func (s *Service) MarkRead(ctx context.Context, conversationID, readerID int64, staff bool) error {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !staff && conv.UserID != readerID {
		return ErrForbidden
	}
	n, err := s.repo.MarkRead(ctx, conv.ID, readerID)
	if err != nil || n == 0 {
		return err
	}
	recipients, err := s.recipients(ctx, conv, readerID)
	if err != nil {
		return err
	}
	s.publish(ctx, Event{
		ID:             uuid.NewString(),
		Type:           EventRead,
		ConversationID: conv.ID,
		UserID:         readerID,
		Recipients:     recipients,
	})
	return nil
}

// post persists first, then relays and notifies. Relay and notification
// failures are logged and never undo the stored message.
func (s *Service) post(ctx context.Context, conv *Conversation, senderID int64, content string) (*Message, error) {
	msg := &Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
		SentAt:         s.now(),
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	log.Printf("chat_message id=%d conversation_id=%d sender_id=%d", msg.ID, conv.ID, senderID)

	recipients, err := s.recipients(ctx, conv, senderID)
	if err != nil {
		log.Printf("chat_recipients_failed conversation_id=%d err=%v", conv.ID, err)
		return msg, nil
	}

	s.publish(ctx, Event{
		ID:             uuid.NewString(),
		Type:           EventNewMessage,
		ConversationID: conv.ID,
		Message:        msg,
		Recipients:     append([]int64{senderID}, recipients...),
	})

	if len(recipients) > 0 && s.notifier != nil {
		actor := senderID
		_, err := s.notifier.NotifyMany(ctx, recipients, notification.Input{
			ActorID: &actor,
			Type:    notification.TypeMessageReceived,
			Title:   "New message",
			Message: Preview(content),
			Target:  notification.ConversationTarget(conv.ID),
		})
		if err != nil {
			log.Printf("chat_notify_failed conversation_id=%d err=%v", conv.ID, err)
		}
	}
	return msg, nil
}

func (s *Service) recipients(ctx context.Context, conv *Conversation, senderID int64) ([]int64, error) {
	if ids := conv.RecipientsOf(senderID); ids != nil {
		return ids, nil
	}
	if s.staff == nil {
		return nil, nil
	}
	ids, err := s.staff.StaffIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := ids[:0:0]
	for _, id := range ids {
		if id != senderID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, e Event) {
	if err := s.relay.Publish(ctx, e); err != nil {
		log.Printf("chat_relay_publish_failed conversation_id=%d type=%s err=%v", e.ConversationID, e.Type, err)
	}
}

func cleanContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxContentRunes {
		return "", ErrMessageTooLong
	}
	return content, nil
}

// Preview shortens content for notifications.
func Preview(content string) string {
	r := []rune(content)
	if len(r) <= previewRunes {
		return content
	}
	return string(r[:previewRunes]) + "…"
}
