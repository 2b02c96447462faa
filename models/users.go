package models

import "time"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleOwner      Role = "OWNER"
	RoleManager    Role = "MANAGER"
	RoleCustomer   Role = "CUSTOMER"
	RoleSupervisor Role = "SUPERVISOR"
	RoleSecretary  Role = "SECRETARY"
	RoleTechnician Role = "TECHNICIAN"
	RoleStaff      Role = "STAFF"
)

var Roles = []Role{
	RoleAdmin, RoleOwner, RoleManager, RoleCustomer,
	RoleSupervisor, RoleSecretary, RoleTechnician, RoleStaff,
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// IsManagement reports whether the role may use the admin pages.
func (r Role) IsManagement() bool {
	return r == RoleAdmin || r == RoleOwner || r == RoleManager
}

// IsEmployee reports whether accounts with this role get an Employee record.
func (r Role) IsEmployee() bool {
	return r != RoleCustomer && r.Valid()
}

// User is the login identity. Nothing outside the identity layer references it directly.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"type:varchar(30)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(30)" json:"last_name"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Account wraps a User with a role. The role is meant to stay fixed once set.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
	Role      Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Phone     string    `gorm:"type:varchar(15)" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
