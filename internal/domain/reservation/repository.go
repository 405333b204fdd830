package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oloustream/internal/database"
	"oloustream/internal/domain/catalog"
)

const maxNoteLen = 500

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// HasStudioConflict reports whether a PENDING or CONFIRMED reservation of the
// studio other than excludeID intersects [start, end).
func (r *Repository) HasStudioConflict(ctx context.Context, studioID int64, start, end time.Time, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("studio_id = ?", studioID).
		Where("status IN ?", blockingStatuses).
		Where("start_at < ? AND end_at > ?", end, start)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check studio conflict: %w", err)
	}
	return count > 0, nil
}

// LockStudio takes a row lock on the studio for the rest of the transaction.
func (r *Repository) LockStudio(ctx context.Context, studioID int64) (*catalog.Studio, error) {
	var s catalog.Studio
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, studioID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrStudioNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) GetEquipment(ctx context.Context, ids []int64) ([]catalog.Equipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []catalog.Equipment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Find(&list).Error
	return list, err
}

func (r *Repository) GetService(ctx context.Context, id int64) (*catalog.Service, error) {
	var s catalog.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, res *Reservation) error {
	err := r.db.WithContext(ctx).
		Omit("Studio", "Service", "History", "Equipment.*").
		Create(res).Error
	return mapWriteError(err)
}

// Save updates the scalar columns of res.
func (r *Repository) Save(ctx context.Context, res *Reservation) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(res).Error
	return mapWriteError(err)
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if database.IsExclusionViolation(err, database.ReservationOverlapConstraint) {
		return ErrSlotTaken
	}
	return err
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	var res Reservation
	err := r.db.WithContext(ctx).
		Preload("Studio").
		Preload("Service").
		Preload("Equipment").
		First(&res, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetForUpdate loads the reservation row under lock, without associations.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Reservation, error) {
	var res Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// LogStatusChange appends one history row. It does nothing when the status
// did not change unless force is set, and reports whether a row was written.
func (r *Repository) LogStatusChange(ctx context.Context, reservationID int64, oldStatus, newStatus Status, actorID *int64, note string, force bool) (bool, error) {
	if oldStatus == newStatus && !force {
		return false, nil
	}
	h := &StatusHistory{
		ReservationID: reservationID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		ChangedByID:   actorID,
		ChangedAt:     time.Now().UTC(),
		Note:          truncateNote(note),
	}
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return false, fmt.Errorf("log status change: %w", err)
	}
	return true, nil
}

func truncateNote(note string) string {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) <= maxNoteLen {
		return note
	}
	return string([]rune(note)[:maxNoteLen])
}

func (r *Repository) History(ctx context.Context, reservationID int64) ([]StatusHistory, error) {
	var list []StatusHistory
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("changed_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Reservation, int64, error) {
	q := r.db.WithContext(ctx).Model(&Reservation{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Reservation
	err := q.Preload("Studio").Preload("Service").Preload("Equipment").
		Order("start_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, total, err
}

// AdminFilters narrows the staff reservation list. Zero values are ignored.
type AdminFilters struct {
	Query     string
	Status    Status
	StudioID  int64
	ServiceID int64
	DateFrom  *time.Time
	DateTo    *time.Time
}

func (r *Repository) filtered(ctx context.Context, f AdminFilters) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&Reservation{})
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(contact_name) LIKE ? OR LOWER(contact_email) LIKE ? OR LOWER(contact_company) LIKE ? OR LOWER(project_summary) LIKE ?",
			like, like, like, like)
	}
	if f.StudioID > 0 {
		q = q.Where("studio_id = ?", f.StudioID)
	}
	if f.ServiceID > 0 {
		q = q.Where("service_id = ?", f.ServiceID)
	}
	if f.DateFrom != nil {
		q = q.Where("start_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("start_at < ?", *f.DateTo)
	}
	return q
}

func (r *Repository) ListForAdmin(ctx context.Context, f AdminFilters, limit, offset int) ([]Reservation, int64, error) {
	q := r.filtered(ctx, f)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Reservation
	err := q.Preload("Studio").Preload("Service").Preload("Equipment").
		Order("start_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, total, err
}

type statusCount struct {
	Status Status
	Count  int64
}

// Stats counts reservations per status plus upcoming and past live ones,
// ignoring the status filter so the counters describe the whole selection.
func (r *Repository) Stats(ctx context.Context, f AdminFilters, now time.Time) (*Stats, error) {
	var rows []statusCount
	if err := r.filtered(ctx, f).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	st := &Stats{ByStatus: make(map[Status]int64, len(rows))}
	for _, row := range rows {
		st.ByStatus[row.Status] = row.Count
		st.Total += row.Count
	}

	if err := r.filtered(ctx, f).
		Where("status IN ? AND start_at >= ?", blockingStatuses, now).
		Count(&st.Upcoming).Error; err != nil {
		return nil, err
	}
	if err := r.filtered(ctx, f).
		Where("end_at < ?", now).
		Count(&st.Past).Error; err != nil {
		return nil, err
	}
	return st, nil
}

type Stats struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"by_status"`
	Upcoming int64            `json:"upcoming"`
	Past     int64            `json:"past"`
}
