package account

import "time"

type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleManager    Role = "MANAGER"
	RoleTechnician Role = "TECHNICIAN"
	RoleModerator  Role = "MODERATOR"
	RoleClient     Role = "CLIENT"
)

// StaffRoles may access the back office.
var StaffRoles = []string{string(RoleSuperAdmin), string(RoleManager), string(RoleModerator)}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleManager, RoleTechnician, RoleModerator, RoleClient:
		return true
	}
	return false
}

func (r Role) IsStaff() bool {
	return r == RoleSuperAdmin || r == RoleManager || r == RoleModerator
}

type User struct {
	ID                  int64      `json:"id" gorm:"primaryKey"`
	Email               string     `json:"email" gorm:"type:varchar(254);uniqueIndex;not null"`
	Username            string     `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash        string     `json:"-" gorm:"column:password_hash;not null"`
	FirstName           string     `json:"first_name" gorm:"type:varchar(150)"`
	LastName            string     `json:"last_name" gorm:"type:varchar(150)"`
	Phone               string     `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Role                Role       `json:"role" gorm:"type:varchar(20);not null;default:CLIENT;index"`
	IsEmployee          bool       `json:"is_employee" gorm:"not null;default:false"`
	IsActive            bool       `json:"is_active" gorm:"not null;default:true"`
	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

type ContractType string

const (
	ContractCDI        ContractType = "CDI"
	ContractCDD        ContractType = "CDD"
	ContractInternship ContractType = "STAGE"
	ContractFreelance  ContractType = "FREELANCE"
)

// EmployeeProfile holds HR data for users flagged as employees.
type EmployeeProfile struct {
	ID              int64        `json:"id" gorm:"primaryKey"`
	UserID          int64        `json:"user_id" gorm:"uniqueIndex;not null"`
	Position        string       `json:"position" gorm:"type:varchar(150)"`
	Gender          Gender       `json:"gender,omitempty" gorm:"type:varchar(1)"`
	BirthDate       *time.Time   `json:"birth_date,omitempty"`
	Address         string       `json:"address,omitempty" gorm:"type:varchar(255)"`
	City            string       `json:"city,omitempty" gorm:"type:varchar(100)"`
	Salary          int64        `json:"salary" gorm:"not null;default:0"`
	ContractType    ContractType `json:"contract_type,omitempty" gorm:"type:varchar(20)"`
	HireDate        *time.Time   `json:"hire_date,omitempty"`
	ContractEndDate *time.Time   `json:"contract_end_date,omitempty"`
	ManagerID       *int64       `json:"manager_id,omitempty" gorm:"index"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Models returns the gorm models owned by this package.
func Models() []any {
	return []any{&User{}, &EmployeeProfile{}}
}
