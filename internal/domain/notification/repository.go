package notification

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type notificationModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null;index:idx_notifications_user_read"`
	ActorID    *int64     `gorm:"column:actor_id"`
	Type       string     `gorm:"column:type;type:varchar(40);not null;default:GENERAL"`
	Title      string     `gorm:"column:title;type:varchar(150);not null"`
	Message    string     `gorm:"column:message;type:text"`
	TargetKind *string    `gorm:"column:target_kind;type:varchar(40);index:idx_notifications_target"`
	TargetID   *int64     `gorm:"column:target_id;index:idx_notifications_target"`
	Link       string     `gorm:"column:link;type:varchar(255)"`
	IsRead     bool       `gorm:"column:is_read;not null;default:false;index:idx_notifications_user_read"`
	ReadAt     *time.Time `gorm:"column:read_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime;index"`
}

func (notificationModel) TableName() string {
	return "notifications"
}

// Models returns the gorm models owned by this package.
func Models() []any {
	return []any{&notificationModel{}}
}

func toModel(n *Notification) *notificationModel {
	m := &notificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		ActorID:   n.ActorID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if n.Target != nil && !n.Target.IsZero() {
		kind := string(n.Target.Kind)
		id := n.Target.ID
		m.TargetKind = &kind
		m.TargetID = &id
	}
	return m
}

func (m *notificationModel) toDomain() Notification {
	n := Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		ActorID:   m.ActorID,
		Type:      Type(m.Type),
		Title:     m.Title,
		Message:   m.Message,
		Link:      m.Link,
		IsRead:    m.IsRead,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
	if m.TargetKind != nil && m.TargetID != nil {
		n.Target = &Target{Kind: TargetKind(*m.TargetKind), ID: *m.TargetID}
	}
	return n
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	m := toModel(n)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	n.ID = m.ID
	n.CreatedAt = m.CreatedAt
	return nil
}

func (r *Repository) CreateBatch(ctx context.Context, list []*Notification) error {
	if len(list) == 0 {
		return nil
	}
	models := make([]*notificationModel, 0, len(list))
	for _, n := range list {
		models = append(models, toModel(n))
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		list[i].ID = m.ID
		list[i].CreatedAt = m.CreatedAt
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&notificationModel{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []notificationModel
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]Notification, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *Repository) MarkRead(ctx context.Context, id, userID int64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": gorm.Expr("COALESCE(read_at, ?)", at)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

// DeleteReadBefore removes read notifications created before the cutoff.
func (r *Repository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&notificationModel{})
	return res.RowsAffected, res.Error
}
