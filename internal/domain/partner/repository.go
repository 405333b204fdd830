package partner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oloustream/internal/database"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

/* ---------- regions ---------- */

func (r *Repository) ListRegions(ctx context.Context, activeOnly bool) ([]Region, error) {
	q := r.db.WithContext(ctx).Model(&Region{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var list []Region
	err := q.Order("is_priority DESC, name ASC").Find(&list).Error
	return list, err
}

func (r *Repository) GetRegion(ctx context.Context, id int64) (*Region, error) {
	var reg Region
	if err := r.db.WithContext(ctx).First(&reg, id).Error; err != nil {
		return nil, notFound(err, ErrRegionNotFound)
	}
	return &reg, nil
}

func (r *Repository) CreateRegion(ctx context.Context, reg *Region) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

/* ---------- applications ---------- */

func (r *Repository) CreateApplication(ctx context.Context, a *Application) error {
	return r.db.WithContext(ctx).Omit("Region").Create(a).Error
}

func (r *Repository) GetApplication(ctx context.Context, id int64, lock bool) (*Application, error) {
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	} else {
		q = q.Preload("Region")
	}
	var a Application
	if err := q.First(&a, id).Error; err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	return &a, nil
}

func (r *Repository) SaveApplication(ctx context.Context, a *Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *Repository) ListApplications(ctx context.Context, status ApplicationStatus, limit, offset int) ([]Application, int64, error) {
	q := r.db.WithContext(ctx).Model(&Application{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Application
	err := q.Preload("Region").Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

/* ---------- partners ---------- */

func (r *Repository) CreatePartner(ctx context.Context, p *Partner) error {
	if err := r.db.WithContext(ctx).Omit("Application").Create(p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Repository) GetPartner(ctx context.Context, id int64) (*Partner, error) {
	var p Partner
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, ErrPartnerNotFound)
	}
	return &p, nil
}

func (r *Repository) GetPartnerForUpdate(ctx context.Context, id int64) (*Partner, error) {
	var p Partner
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if err != nil {
		return nil, notFound(err, ErrPartnerNotFound)
	}
	return &p, nil
}

func (r *Repository) GetPartnerByUser(ctx context.Context, userID int64) (*Partner, error) {
	var p Partner
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, notFound(err, ErrNotPartner)
	}
	return &p, nil
}

func (r *Repository) GetPartnerByApplication(ctx context.Context, applicationID int64) (*Partner, error) {
	var p Partner
	if err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&p).Error; err != nil {
		return nil, notFound(err, ErrPartnerNotFound)
	}
	return &p, nil
}

// NextCode returns BF-<CITY>-<NNN> with NNN one past the highest code
// already issued for the prefix.
func (r *Repository) NextCode(ctx context.Context, city string) (string, error) {
	prefix := "BF-" + city + "-"
	var codes []string
	if err := r.db.WithContext(ctx).Model(&Partner{}).
		Where("partner_code LIKE ?", prefix+"%").
		Pluck("partner_code", &codes).Error; err != nil {
		return "", err
	}
	next := 1
	for _, c := range codes {
		n, err := strconv.Atoi(strings.TrimPrefix(c, prefix))
		if err == nil && n >= next {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, next), nil
}

// AddContractTotals applies a validated contract to the partner counters
// with a single UPDATE so concurrent validations cannot overwrite each
// other.
func (r *Repository) AddContractTotals(ctx context.Context, partnerID, amount, commission int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&Partner{}).
		Where("id = ?", partnerID).
		UpdateColumns(map[string]any{
			"total_contracts":         gorm.Expr("total_contracts + ?", 1),
			"total_revenue":           gorm.Expr("total_revenue + ?", amount),
			"total_commission_earned": gorm.Expr("total_commission_earned + ?", commission),
			"last_contract_at":        at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

func (r *Repository) AddCommissionPaid(ctx context.Context, partnerID, amount int64) error {
	res := r.db.WithContext(ctx).Model(&Partner{}).
		Where("id = ?", partnerID).
		UpdateColumn("total_commission_paid", gorm.Expr("total_commission_paid + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

func (r *Repository) TopPartners(ctx context.Context, limit int) ([]Partner, error) {
	var list []Partner
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("total_revenue DESC, id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

/* ---------- contracts ---------- */

func (r *Repository) CreateContract(ctx context.Context, c *Contract) error {
	return r.db.WithContext(ctx).Omit("Partner").Create(c).Error
}

func (r *Repository) GetContractForUpdate(ctx context.Context, id int64) (*Contract, error) {
	var c Contract
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	if err != nil {
		return nil, notFound(err, ErrContractNotFound)
	}
	return &c, nil
}

func (r *Repository) SaveContract(ctx context.Context, c *Contract) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *Repository) ListContracts(ctx context.Context, partnerID int64, status ContractStatus, limit, offset int) ([]Contract, int64, error) {
	q := r.db.WithContext(ctx).Model(&Contract{})
	if partnerID > 0 {
		q = q.Where("partner_id = ?", partnerID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Contract
	err := q.Preload("Partner").Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *Repository) ContractsByIDs(ctx context.Context, ids []int64) ([]Contract, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []Contract
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

type Performance struct {
	TotalContracts   int64 `json:"total_contracts"`
	TotalAmount      int64 `json:"total_amount"`
	TotalCommission  int64 `json:"total_commission"`
	AvgContractValue int64 `json:"avg_contract_value"`
	Completed        int64 `json:"completed"`
	Pending          int64 `json:"pending"`
}

func (r *Repository) Performance(ctx context.Context, partnerID int64) (*Performance, error) {
	var p Performance
	err := r.db.WithContext(ctx).Model(&Contract{}).
		Select(`COUNT(*) AS total_contracts,
			COALESCE(SUM(contract_amount), 0) AS total_amount,
			COALESCE(SUM(commission_amount), 0) AS total_commission,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending`,
			ContractCompleted, ContractPending).
		Where("partner_id = ?", partnerID).
		Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.TotalContracts > 0 {
		p.AvgContractValue = p.TotalAmount / p.TotalContracts
	}
	return &p, nil
}

/* ---------- commission payments ---------- */

func (r *Repository) CreatePayment(ctx context.Context, p *CommissionPayment) error {
	return r.db.WithContext(ctx).Omit("Contracts.*").Create(p).Error
}

func (r *Repository) ListPayments(ctx context.Context, partnerID int64) ([]CommissionPayment, error) {
	var list []CommissionPayment
	err := r.db.WithContext(ctx).
		Preload("Contracts").
		Where("partner_id = ?", partnerID).
		Order("paid_at DESC, id DESC").
		Find(&list).Error
	return list, err
}
