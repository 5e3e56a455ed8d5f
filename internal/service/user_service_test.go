package service

import (
	"context"
	"testing"

	"reimburse/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*fixture, UserService) {
	t.Helper()
	f := newFixture(t)
	companies := newFakeCompanyRepo()
	require.NoError(t, companies.Create(context.Background(), f.company))
	svc := NewUserService(f.users, companies, f.audit, fakeTxManager{})
	return f, svc
}

func TestCreateUser(t *testing.T) {
	f, svc := newUserFixture(t)
	ctx := context.Background()

	resp, err := svc.CreateUser(ctx, f.admin.ID, CreateUserRequest{
		Name:      "New Hire",
		Email:     "hire@acme.test",
		Password:  "secret123",
		Role:      "Employee",
		ManagerID: f.manager.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Employee", resp.Role)
	require.NotNil(t, resp.ManagerID)
	assert.Equal(t, f.manager.ID.String(), *resp.ManagerID)
	assert.Equal(t, f.company.ID.String(), resp.CompanyID)

	created, err := f.users.GetByEmail(ctx, "hire@acme.test")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", created.Password) // stored hashed
}

func TestCreateUserValidation(t *testing.T) {
	f, svc := newUserFixture(t)
	ctx := context.Background()

	base := CreateUserRequest{
		Name:     "New Hire",
		Email:    "hire@acme.test",
		Password: "secret123",
	}

	t.Run("admin role is not assignable", func(t *testing.T) {
		req := base
		req.Role = "Admin"
		_, err := svc.CreateUser(ctx, f.admin.ID, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown role", func(t *testing.T) {
		req := base
		req.Role = "Intern"
		_, err := svc.CreateUser(ctx, f.admin.ID, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("duplicate email", func(t *testing.T) {
		req := base
		req.Role = "Employee"
		req.Email = f.employee.Email
		_, err := svc.CreateUser(ctx, f.admin.ID, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("manager from another company", func(t *testing.T) {
		outsider := &model.User{
			CompanyID: uuid.New(),
			Name:      "outsider",
			Email:     "outsider@else.test",
			Role:      model.RoleManager,
		}
		require.NoError(t, f.users.Create(ctx, outsider))

		req := base
		req.Role = "Employee"
		req.ManagerID = outsider.ID.String()
		_, err := svc.CreateUser(ctx, f.admin.ID, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("malformed manager id", func(t *testing.T) {
		req := base
		req.Role = "Employee"
		req.ManagerID = "not-a-uuid"
		_, err := svc.CreateUser(ctx, f.admin.ID, req)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestAuthStatus(t *testing.T) {
	f, svc := newUserFixture(t)
	ctx := context.Background()

	status, err := svc.AuthStatus(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, f.employee.ID.String(), status.UserID)
	assert.Equal(t, "employee", status.Name)
	assert.Equal(t, "Employee", status.Role)
	assert.Equal(t, "USD", status.CompanyCurrency)

	_, err = svc.AuthStatus(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
