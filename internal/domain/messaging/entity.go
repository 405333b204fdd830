package messaging

import "time"

// Conversation is the single support thread between a client and the staff.
// AdminID is set by the first staff member who replies.
type Conversation struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	UserID        int64      `json:"user_id" gorm:"uniqueIndex;not null"`
	AdminID       *int64     `json:"admin_id,omitempty" gorm:"index"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" gorm:"index"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	UnreadCount int64 `json:"unread_count" gorm:"-"`
}

func (Conversation) TableName() string { return "conversations" }

// RecipientsOf returns who should receive a message sent by senderID. A
// client message goes to the assigned admin, or nil meaning all staff.
func (c *Conversation) RecipientsOf(senderID int64) []int64 {
	if senderID == c.UserID {
		if c.AdminID != nil {
			return []int64{*c.AdminID}
		}
		return nil
	}
	return []int64{c.UserID}
}

type Message struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	ConversationID int64     `json:"conversation_id" gorm:"index;not null"`
	SenderID       int64     `json:"sender_id" gorm:"not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	IsRead         bool      `json:"is_read" gorm:"not null;default:false"`
	SentAt         time.Time `json:"sent_at" gorm:"index;not null"`
}

func (Message) TableName() string { return "messages" }

func Models() []any {
	return []any{&Conversation{}, &Message{}}
}
