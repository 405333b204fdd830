package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/notification"
)

// Origin tells which form a reservation came from; it is recorded in the
// first history row.
type Origin string

const (
	OriginGeneric   Origin = "generic"
	OriginStudio    Origin = "studio"
	OriginEquipment Origin = "equipment"
)

type Service struct {
	db       *gorm.DB
	repo     *Repository
	notifier Notifier
	staff    StaffDirectory
	now      func() time.Time
}

func NewService(db *gorm.DB, notifier Notifier, staff StaffDirectory) *Service {
	return &Service{
		db:       db,
		repo:     NewRepository(db),
		notifier: notifier,
		staff:    staff,
		now:      time.Now,
	}
}

type Contact struct {
	Name    string `json:"contact_name" binding:"required,max=150"`
	Company string `json:"contact_company" binding:"max=150"`
	Phone   string `json:"contact_phone" binding:"max=30"`
	Email   string `json:"contact_email" binding:"required,email,max=255"`
	City    string `json:"contact_city" binding:"max=100"`
	Country string `json:"contact_country" binding:"max=100"`
}

type CreateRequest struct {
	Contact
	StudioID       *int64    `json:"studio_id"`
	ServiceID      *int64    `json:"service_id"`
	EquipmentIDs   []int64   `json:"equipment_ids"`
	StartAt        time.Time `json:"start_at" binding:"required"`
	EndAt          time.Time `json:"end_at" binding:"required"`
	ProjectSummary string    `json:"project_summary"`
	Message        string    `json:"message"`
}

// Create books the requested resources. Studio slots are checked and
// inserted inside one transaction holding the studio row lock.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest, origin Origin) (*Reservation, error) {
	start, end := req.StartAt.UTC(), req.EndAt.UTC()
	if err := ValidateWindow(start, end, s.now().UTC()); err != nil {
		return nil, err
	}
	if req.StudioID == nil && req.ServiceID == nil && len(req.EquipmentIDs) == 0 {
		return nil, ErrNothingReserved
	}

	res := &Reservation{
		UserID:         userID,
		StudioID:       req.StudioID,
		ServiceID:      req.ServiceID,
		StartAt:        start,
		EndAt:          end,
		Status:         StatusPending,
		ContactName:    strings.TrimSpace(req.Name),
		ContactCompany: req.Company,
		ContactPhone:   req.Phone,
		ContactEmail:   strings.ToLower(strings.TrimSpace(req.Email)),
		ContactCity:    req.City,
		ContactCountry: req.Country,
		ProjectSummary: req.ProjectSummary,
		Message:        req.Message,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if req.ServiceID != nil {
			svc, err := repo.GetService(ctx, *req.ServiceID)
			if err != nil {
				return err
			}
			if !svc.IsActive {
				return ErrServiceUnavailable
			}
		}

		equipment, err := s.rentableEquipment(ctx, repo, req.EquipmentIDs)
		if err != nil {
			return err
		}
		res.Equipment = equipment

		if req.StudioID != nil {
			if err := s.claimStudio(ctx, repo, *req.StudioID, start, end, 0); err != nil {
				return err
			}
		}

		if err := repo.Create(ctx, res); err != nil {
			return err
		}
		_, err = repo.LogStatusChange(ctx, res.ID, StatusPending, StatusPending, &userID,
			fmt.Sprintf("created from %s form", origin), true)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("reservation_created id=%d user_id=%d studio_id=%s origin=%s start=%s end=%s",
		res.ID, userID, idString(res.StudioID), origin, start.Format(time.RFC3339), end.Format(time.RFC3339))
	s.notifyStaff(ctx, res, userID)
	return res, nil
}

func (s *Service) CreateForStudio(ctx context.Context, userID, studioID int64, req CreateRequest) (*Reservation, error) {
	req.StudioID = &studioID
	return s.Create(ctx, userID, req, OriginStudio)
}

func (s *Service) CreateForEquipment(ctx context.Context, userID, equipmentID int64, req CreateRequest) (*Reservation, error) {
	req.EquipmentIDs = appendUnique(req.EquipmentIDs, equipmentID)
	return s.Create(ctx, userID, req, OriginEquipment)
}

func (s *Service) claimStudio(ctx context.Context, repo *Repository, studioID int64, start, end time.Time, excludeID int64) error {
	studio, err := repo.LockStudio(ctx, studioID)
	if err != nil {
		return err
	}
	if !studio.Bookable() {
		return ErrStudioUnavailable
	}
	taken, err := repo.HasStudioConflict(ctx, studioID, start, end, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}
	return nil
}

func (s *Service) rentableEquipment(ctx context.Context, repo *Repository, ids []int64) ([]catalog.Equipment, error) {
	ids = appendUnique(nil, ids...)
	if len(ids) == 0 {
		return nil, nil
	}
	list, err := repo.GetEquipment(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(list) != len(ids) {
		return nil, catalog.ErrEquipmentNotFound
	}
	for i := range list {
		if !list[i].Rentable() {
			return nil, fmt.Errorf("%w: %s", ErrEquipmentUnavailable, list[i].Name)
		}
	}
	return list, nil
}

type AdminUpdateRequest struct {
	Status       *Status    `json:"status"`
	AdminComment *string    `json:"admin_comment"`
	AssignedToID *int64     `json:"assigned_to_id"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	Note         string     `json:"note" binding:"max=500"`
}

// UpdateByAdmin applies a staff edit. Any status transition is accepted; a
// changed status is logged and the client notified.
func (s *Service) UpdateByAdmin(ctx context.Context, id, actorID int64, req AdminUpdateRequest) (*Reservation, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	var oldStatus Status
	var res *Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		res, err = repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		oldStatus = res.Status

		if req.StartAt != nil || req.EndAt != nil {
			start, end := res.StartAt, res.EndAt
			if req.StartAt != nil {
				start = req.StartAt.UTC()
			}
			if req.EndAt != nil {
				end = req.EndAt.UTC()
			}
			if err := ValidateWindow(start, end, s.now().UTC()); err != nil {
				return err
			}
			res.StartAt, res.EndAt = start, end
		}
		if req.Status != nil {
			res.Status = *req.Status
		}
		if req.AdminComment != nil {
			res.AdminComment = *req.AdminComment
		}
		if req.AssignedToID != nil {
			if *req.AssignedToID > 0 {
				res.AssignedToID = req.AssignedToID
			} else {
				res.AssignedToID = nil
			}
		}

		windowChanged := req.StartAt != nil || req.EndAt != nil
		reactivated := !oldStatus.Blocking() && res.Status.Blocking()
		if res.StudioID != nil && res.Status.Blocking() && (windowChanged || reactivated) {
			if err := s.claimStudio(ctx, repo, *res.StudioID, res.StartAt, res.EndAt, res.ID); err != nil {
				return err
			}
		}

		if err := repo.Save(ctx, res); err != nil {
			return err
		}
		_, err = repo.LogStatusChange(ctx, res.ID, oldStatus, res.Status, &actorID, req.Note, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	if oldStatus != res.Status {
		log.Printf("reservation_status_changed id=%d from=%s to=%s actor_id=%d", res.ID, oldStatus, res.Status, actorID)
		s.notifyClient(ctx, res, actorID)
	}
	return s.repo.GetByID(ctx, id)
}

// QuickCancel cancels a reservation unless it already is cancelled.
func (s *Service) QuickCancel(ctx context.Context, id, actorID int64, note string) (*Reservation, error) {
	var changed bool
	var res *Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		res, err = repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res.Status == StatusCancelled {
			return nil
		}
		old := res.Status
		res.Status = StatusCancelled
		if err := repo.Save(ctx, res); err != nil {
			return err
		}
		if note == "" {
			note = "quick cancel"
		}
		changed, err = repo.LogStatusChange(ctx, res.ID, old, StatusCancelled, &actorID, note, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		log.Printf("reservation_cancelled id=%d actor_id=%d", res.ID, actorID)
		s.notifyClient(ctx, res, actorID)
	}
	return s.repo.GetByID(ctx, id)
}

type Detail struct {
	Reservation *Reservation    `json:"reservation"`
	History     []StatusHistory `json:"history"`
	// Next holds the statuses the back office offers from the current one.
	Next []Status `json:"suggested_statuses,omitempty"`
}

func (s *Service) Detail(ctx context.Context, id int64) (*Detail, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Reservation: res, History: history, Next: AllowedTransitions[res.Status]}, nil
}

// DetailForUser returns the reservation only to its owner.
func (s *Service) DetailForUser(ctx context.Context, id, userID int64) (*Detail, error) {
	d, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Reservation.UserID != userID {
		return nil, ErrForbidden
	}
	d.Next = nil
	return d, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64, page, pageSize int) ([]Reservation, int64, error) {
	return s.repo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
}

type AdminList struct {
	Items []Reservation `json:"items"`
	Total int64         `json:"total"`
	Stats *Stats        `json:"stats"`
}

func (s *Service) ListForAdmin(ctx context.Context, f AdminFilters, page, pageSize int) (*AdminList, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	items, total, err := s.repo.ListForAdmin(ctx, f, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.Stats(ctx, f, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &AdminList{Items: items, Total: total, Stats: stats}, nil
}

func (s *Service) notifyStaff(ctx context.Context, res *Reservation, actorID int64) {
	if s.notifier == nil || s.staff == nil {
		return
	}
	ids, err := s.staff.StaffIDs(ctx)
	if err != nil {
		log.Printf("reservation_notify_failed id=%d err=%v", res.ID, err)
		return
	}
	_, err = s.notifier.NotifyMany(ctx, ids, notification.Input{
		ActorID: &actorID,
		Type:    notification.TypeReservationCreated,
		Title:   "New reservation request",
		Message: fmt.Sprintf("%s requested %s to %s", res.ContactName,
			res.StartAt.Format("02/01/2006 15:04"), res.EndAt.Format("02/01/2006 15:04")),
		Target: notification.ReservationTarget(res.ID),
		Link:   fmt.Sprintf("/admin/reservations/%d", res.ID),
	})
	if err != nil {
		log.Printf("reservation_notify_failed id=%d err=%v", res.ID, err)
	}
}

func (s *Service) notifyClient(ctx context.Context, res *Reservation, actorID int64) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.Notify(ctx, notification.Input{
		UserID:  res.UserID,
		ActorID: &actorID,
		Type:    notification.TypeReservationStatusChanged,
		Title:   "Reservation updated",
		Message: fmt.Sprintf("Your reservation #%d is now %s", res.ID, res.Status),
		Target:  notification.ReservationTarget(res.ID),
		Link:    fmt.Sprintf("/reservations/%d", res.ID),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("reservation_notify_failed id=%d user_id=%d err=%v", res.ID, res.UserID, err)
	}
}

func appendUnique(dst []int64, ids ...int64) []int64 {
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		dup := false
		for _, have := range dst {
			if have == id {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, id)
		}
	}
	return dst
}

func idString(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}
