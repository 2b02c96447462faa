package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/testutils"
)

func signupInput(username string) SignupInput {
	return SignupInput{
		Username:  username,
		Email:     username + "@Example.com",
		Password:  "supersecret",
		FirstName: "Rina",
		LastName:  "Wijaya",
		Phone:     "08123456789",
	}
}

func TestSignupAndAuthenticate(t *testing.T) {
	db := testutils.NewTestDB(t)
	ctx := context.Background()
	accounts := NewAccountService(db)

	account, err := accounts.Signup(ctx, signupInput("rina"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, account.Role)
	assert.Equal(t, "rina@example.com", account.User.Email)

	var customer models.Customer
	require.NoError(t, db.Where("account_id = ?", account.ID).First(&customer).Error)
	assert.Equal(t, models.ContactEmail, customer.PreferredContact)

	_, err = accounts.Signup(ctx, signupInput("rina"))
	assert.ErrorIs(t, err, ErrConflict)

	byName, err := accounts.Authenticate(ctx, "rina", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byName.ID)

	byEmail, err := accounts.Authenticate(ctx, "RINA@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	_, err = accounts.Authenticate(ctx, "rina", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = accounts.Authenticate(ctx, "nobody", "supersecret")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignupValidation(t *testing.T) {
	db := testutils.NewTestDB(t)
	accounts := NewAccountService(db)

	short := signupInput("short")
	short.Password = "123"
	_, err := accounts.Signup(context.Background(), short)
	assert.ErrorIs(t, err, ErrValidation)

	fax := signupInput("fax")
	fax.PreferredContact = "FAX"
	_, err = accounts.Signup(context.Background(), fax)
	assert.ErrorIs(t, err, ErrValidation)

	// the failed signup rolled back its user row
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestCreateStaffAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accounts := NewAccountService(f.db)
	supervisor := testutils.CreateAccount(t, f.db, models.RoleSupervisor, "susi")

	in := CreateAccountInput{
		SignupInput:     signupInput("teknisi"),
		Role:            models.RoleTechnician,
		FacilityID:      &f.facility.ID,
		SupervisorID:    &supervisor.EmployeeID,
		HireDate:        "2024-01-15",
		Specializations: "brakes, suspension",
	}
	account, err := accounts.CreateAccount(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, account.Role)

	var employee models.Employee
	require.NoError(t, f.db.Where("account_id = ?", account.ID).First(&employee).Error)
	assert.True(t, employee.IsActive)
	assert.Equal(t, supervisor.EmployeeID, *employee.SupervisorID)

	t.Run("supervisor must be a supervisor", func(t *testing.T) {
		bad := in
		bad.SignupInput = signupInput("teknisi2")
		bad.SupervisorID = &f.technician.EmployeeID
		_, err := accounts.CreateAccount(ctx, bad)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown role", func(t *testing.T) {
		bad := in
		bad.SignupInput = signupInput("pilot")
		bad.Role = "PILOT"
		_, err := accounts.CreateAccount(ctx, bad)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("customer role takes the signup path", func(t *testing.T) {
		cust := CreateAccountInput{SignupInput: signupInput("pelanggan"), Role: models.RoleCustomer}
		account, err := accounts.CreateAccount(ctx, cust)
		require.NoError(t, err)
		var count int64
		require.NoError(t, f.db.Model(&models.Customer{}).Where("account_id = ?", account.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	technicians, err := accounts.ListAccounts(ctx, AccountFilter{Role: models.RoleTechnician})
	require.NoError(t, err)
	assert.Len(t, technicians, 2)

	found, err := accounts.ListAccounts(ctx, AccountFilter{Search: "TEKNISI"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, account.ID, found[0].ID)
}
