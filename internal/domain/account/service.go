package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"oloustream/internal/pkg/validator"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
	minPasswordLen         = 8
)

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}

type Service struct {
	repo *Repository
	jwt  tokenIssuer
	now  func() time.Time
}

func NewService(repo *Repository, jwt tokenIssuer) *Service {
	return &Service{repo: repo, jwt: jwt, now: time.Now}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" validate:"required,email"`
	Password  string `json:"password" binding:"required" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Phone     string `json:"phone" validate:"max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
}

// NewUser describes a back-office created account.
type NewUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      Role
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, errs)
	}
	return s.CreateUser(ctx, NewUser{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      RoleClient,
	})
}

// CreateUser hashes the password and stores a new account.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	return createUser(ctx, s.repo, in)
}

// CreateUserWith behaves like CreateUser on the given repository, which may
// be bound to a caller's transaction.
func CreateUserWith(ctx context.Context, repo *Repository, in NewUser) (*User, error) {
	return createUser(ctx, repo, in)
}

func createUser(ctx context.Context, repo *Repository, in NewUser) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if len(in.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if in.Role == "" {
		in.Role = RoleClient
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username, err := uniqueUsername(ctx, repo, email)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         in.Role,
		IsEmployee:   in.Role != RoleClient,
		IsActive:     true,
	}
	if err := repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if u.LockedUntil != nil && u.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	if err := CheckPassword(req.Password, u.PasswordHash); err != nil {
		if ferr := s.repo.RecordLoginFailure(ctx, u.ID, maxFailedLoginAttempts, now.Add(lockoutDuration)); ferr != nil {
			log.Printf("login_failure_record_failed user_id=%d err=%v", u.ID, ferr)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.RecordLoginSuccess(ctx, u.ID, now); err != nil {
		log.Printf("login_success_record_failed user_id=%d err=%v", u.ID, err)
	}

	token, err := s.jwt.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &LoginResult{User: u, AccessToken: token}, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) StaffIDs(ctx context.Context) ([]int64, error) {
	return s.repo.StaffIDs(ctx)
}

type EmployeeRequest struct {
	Role            Role         `json:"role" binding:"required"`
	Position        string       `json:"position" binding:"max=150"`
	Gender          Gender       `json:"gender" binding:"omitempty,oneof=M F"`
	BirthDate       *time.Time   `json:"birth_date"`
	Address         string       `json:"address" binding:"max=255"`
	City            string       `json:"city" binding:"max=100"`
	Salary          int64        `json:"salary" binding:"gte=0"`
	ContractType    ContractType `json:"contract_type" binding:"omitempty,oneof=CDI CDD STAGE FREELANCE"`
	HireDate        *time.Time   `json:"hire_date"`
	ContractEndDate *time.Time   `json:"contract_end_date"`
	ManagerID       *int64       `json:"manager_id"`
}

// UpsertEmployee flags the user as an employee with the given role and
// stores the HR profile.
func (s *Service) UpsertEmployee(ctx context.Context, userID int64, req EmployeeRequest) (*EmployeeProfile, error) {
	if !req.Role.Valid() || req.Role == RoleClient {
		return nil, ErrInvalidRole
	}
	if req.ManagerID != nil && *req.ManagerID == userID {
		return nil, fmt.Errorf("%w: employee cannot manage themselves", ErrInvalidRole)
	}
	p := &EmployeeProfile{
		UserID:          userID,
		Position:        req.Position,
		Gender:          req.Gender,
		BirthDate:       req.BirthDate,
		Address:         req.Address,
		City:            req.City,
		Salary:          req.Salary,
		ContractType:    req.ContractType,
		HireDate:        req.HireDate,
		ContractEndDate: req.ContractEndDate,
		ManagerID:       req.ManagerID,
		UpdatedAt:       s.now(),
	}
	err := s.repo.Transaction(ctx, func(repo *Repository) error {
		if err := repo.UpdateRole(ctx, userID, req.Role, true); err != nil {
			return err
		}
		return repo.UpsertProfile(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) ListEmployees(ctx context.Context, page, pageSize int) ([]EmployeeProfile, int64, error) {
	return s.repo.ListEmployees(ctx, pageSize, (page-1)*pageSize)
}

func uniqueUsername(ctx context.Context, repo *Repository, email string) (string, error) {
	base := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		base = email[:at]
	}
	candidate := base
	for i := 1; ; i++ {
		exists, err := repo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
