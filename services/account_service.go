package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SignupInput struct {
	Username         string               `json:"username" binding:"required,max=150"`
	Email            string               `json:"email" binding:"required,email"`
	Password         string               `json:"password" binding:"required,min=8"`
	FirstName        string               `json:"first_name" binding:"max=30"`
	LastName         string               `json:"last_name" binding:"max=30"`
	Phone            string               `json:"phone" binding:"required,max=15"`
	Address          string               `json:"address"`
	PreferredContact models.ContactMethod `json:"preferred_contact"`
}

type CreateAccountInput struct {
	SignupInput
	Role            models.Role `json:"role" binding:"required"`
	FacilityID      *uint       `json:"facility_id"`
	SupervisorID    *uint       `json:"supervisor_id"`
	Salary          float64     `json:"salary"`
	HireDate        string      `json:"hire_date"`
	Specializations string      `json:"specializations"`
}

type AccountFilter struct {
	Role   models.Role
	Search string
}

type AccountService struct {
	DB *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db}
}

// Signup registers a customer: User, Account and Customer are created together.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*models.Account, error) {
	var account models.Account
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := createIdentity(tx, in, models.RoleCustomer)
		if err != nil {
			return err
		}
		contact := in.PreferredContact
		if contact == "" {
			contact = models.ContactEmail
		}
		if contact != models.ContactEmail && contact != models.ContactPhone {
			return invalid("preferred contact must be EMAIL or PHONE")
		}
		if err := tx.Create(&models.Customer{AccountID: created.ID, PreferredContact: contact}).Error; err != nil {
			return err
		}
		account = *created
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Customer %s signed up (account %d)", account.User.Username, account.ID)
	return &account, nil
}

// CreateAccount is the admin path: any role, and staff roles get an Employee row.
func (s *AccountService) CreateAccount(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	if !in.Role.Valid() {
		return nil, invalid("unknown role %q", in.Role)
	}
	if in.Role == models.RoleCustomer {
		return s.Signup(ctx, in.SignupInput)
	}

	hireDate := time.Now().UTC()
	if in.HireDate != "" {
		parsed, err := time.Parse("2006-01-02", in.HireDate)
		if err != nil {
			return nil, invalid("hire_date must be YYYY-MM-DD")
		}
		hireDate = parsed
	}
	if in.Salary < 0 {
		return nil, invalid("salary cannot be negative")
	}

	var account models.Account
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.SupervisorID != nil {
			var supervisor models.Employee
			if err := tx.Preload("Account").First(&supervisor, *in.SupervisorID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid("supervisor %d does not exist", *in.SupervisorID)
				}
				return err
			}
			if supervisor.Account.Role != models.RoleSupervisor {
				return invalid("employee %d is not a supervisor", *in.SupervisorID)
			}
		}
		if in.FacilityID != nil {
			var count int64
			if err := tx.Model(&models.Facility{}).Where("id = ?", *in.FacilityID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return invalid("facility %d does not exist", *in.FacilityID)
			}
		}

		created, err := createIdentity(tx, in.SignupInput, in.Role)
		if err != nil {
			return err
		}
		employee := models.Employee{
			AccountID:       created.ID,
			SupervisorID:    in.SupervisorID,
			FacilityID:      in.FacilityID,
			HireDate:        datatypes.Date(hireDate),
			Salary:          in.Salary,
			IsActive:        true,
			Specializations: in.Specializations,
		}
		if err := tx.Create(&employee).Error; err != nil {
			return err
		}
		account = *created
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Account %d created with role %s", account.ID, account.Role)
	return &account, nil
}

func createIdentity(tx *gorm.DB, in SignupInput, role models.Role) (*models.Account, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" {
		return nil, invalid("username and email are required")
	}
	if len(in.Password) < 8 {
		return nil, invalid("password must be at least 8 characters")
	}

	var taken int64
	if err := tx.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, fmt.Errorf("%w: username or email is already registered", ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:  username,
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hashed),
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, conflict(err, "username or email is already registered")
	}

	account := models.Account{
		UserID:  user.ID,
		User:    user,
		Role:    role,
		Phone:   in.Phone,
		Address: in.Address,
	}
	if err := tx.Omit("User").Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Authenticate accepts a username or an email address as login.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*models.Account, error) {
	login = strings.TrimSpace(login)
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	var account models.Account
	if err := s.DB.WithContext(ctx).Preload("User").Where("user_id = ?", user.ID).First(&account).Error; err != nil {
		return nil, notFound(err, "account")
	}
	return &account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, filter AccountFilter) ([]models.Account, error) {
	query := s.DB.WithContext(ctx).Model(&models.Account{}).
		Joins("JOIN users ON users.id = accounts.user_id").
		Preload("User")
	if filter.Role != "" {
		query = query.Where("accounts.role = ?", filter.Role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ? OR accounts.phone LIKE ?",
			like, like, like,
		)
	}

	var accounts []models.Account
	if err := query.Order("accounts.id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func customerByAccount(tx *gorm.DB, accountID uint) (*models.Customer, error) {
	var customer models.Customer
	if err := tx.Where("account_id = ?", accountID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account %d is not a customer", ErrForbidden, accountID)
		}
		return nil, err
	}
	return &customer, nil
}

func employeeByAccount(tx *gorm.DB, accountID uint) (*models.Employee, error) {
	var employee models.Employee
	if err := tx.Preload("Account").Where("account_id = ?", accountID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account %d is not an employee", ErrForbidden, accountID)
		}
		return nil, err
	}
	return &employee, nil
}

// activeTechnician loads an employee and checks it can take appointments.
func activeTechnician(tx *gorm.DB, employeeID uint) (*models.Employee, error) {
	var employee models.Employee
	if err := tx.Preload("Account").First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("technician %d does not exist", employeeID)
		}
		return nil, err
	}
	if employee.Account.Role != models.RoleTechnician || !employee.IsActive {
		return nil, invalid("employee %d is not an active technician", employeeID)
	}
	return &employee, nil
}
