package messaging

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ConversationFor returns the conversation of userID, creating it on first use.
func (r *Repository) ConversationFor(ctx context.Context, userID int64) (*Conversation, error) {
	conv := Conversation{UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&conv).Error
	if err != nil {
		return nil, err
	}
	var out Conversation
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var conv Conversation
	err := r.db.WithContext(ctx).First(&conv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Assign sets the admin of a conversation unless one is already set.
func (r *Repository) Assign(ctx context.Context, id, adminID int64) error {
	return r.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ? AND admin_id IS NULL", id).
		Update("admin_id", adminID).Error
}

// ListConversations orders by latest activity and fills UnreadCount with
// client messages staff has not read yet.
func (r *Repository) ListConversations(ctx context.Context, limit, offset int) ([]Conversation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Conversation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Conversation
	err := r.db.WithContext(ctx).
		Order("last_message_at IS NULL, last_message_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	if len(list) == 0 {
		return list, total, nil
	}

	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	var counts []struct {
		ConversationID int64
		N              int64
	}
	err = r.db.WithContext(ctx).Model(&Message{}).
		Select("messages.conversation_id, COUNT(*) AS n").
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("messages.conversation_id IN ? AND messages.sender_id = conversations.user_id AND messages.is_read = ?", ids, false).
		Group("messages.conversation_id").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[int64]int64, len(counts))
	for _, c := range counts {
		byID[c.ConversationID] = c.N
	}
	for i := range list {
		list[i].UnreadCount = byID[list[i].ID]
	}
	return list, total, nil
}

// AddMessage stores msg and bumps the conversation activity in one transaction.
func (r *Repository) AddMessage(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&Conversation{}).Where("id = ?", msg.ConversationID).
			Updates(map[string]any{"last_message_at": msg.SentAt, "updated_at": msg.SentAt}).Error
	})
}

// Messages returns the newest limit messages in chronological order.
func (r *Repository) Messages(ctx context.Context, conversationID int64, limit int) ([]Message, error) {
	var list []Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

// MarkRead flags every message not sent by readerID as read.
func (r *Repository) MarkRead(ctx context.Context, conversationID, readerID int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *Repository) CountUnread(ctx context.Context, conversationID, readerID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Count(&n).Error
	return n, err
}
