package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const employeeID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"

type fakeEmployeeRepository struct {
	employee.EmployeeRepository
	employees []employee.Employee
	failWith  error
}

func (f *fakeEmployeeRepository) find(match func(employee.Employee) bool) (employee.Employee, error) {
	if f.failWith != nil {
		return employee.Employee{}, f.failWith
	}
	for _, e := range f.employees {
		if match(e) {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return f.find(func(e employee.Employee) bool { return e.Email == email })
}

func (f *fakeEmployeeRepository) GetByEmployeeCode(ctx context.Context, code string) (employee.Employee, error) {
	return f.find(func(e employee.Employee) bool { return e.EmployeeCode == code })
}

type fakeEmployeeService struct {
	employee.EmployeeService
}

func (f *fakeEmployeeService) GetProfile(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{ID: id, Name: "Asha Rao", Role: "employee"}, nil
}

func newTestService(t *testing.T) (auth.AuthService, *fakeEmployeeRepository, *jwt.JWTService) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeEmployeeRepository{employees: []employee.Employee{{
		ID:           employeeID,
		Name:         "Asha Rao",
		Email:        "asha@example.com",
		EmployeeCode: "EMP-001",
		PasswordHash: string(hash),
		Role:         employee.RoleEmployee,
	}}}
	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, jwtService, &fakeEmployeeService{}), repo, jwtService
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("by email", func(t *testing.T) {
		svc, _, jwtService := newTestService(t)

		resp, err := svc.Login(ctx, auth.LoginRequest{Email: "Asha@Example.com", Password: "s3cretpass"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, employeeID, resp.Employee.ID)

		token, err := jwtService.JWTAuth().Decode(resp.AccessToken)
		require.NoError(t, err)
		claims, err := token.AsMap(ctx)
		require.NoError(t, err)
		assert.Equal(t, employeeID, claims["employee_id"])
		assert.Equal(t, "employee", claims["role"])
	})

	t.Run("by employee code", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		resp, err := svc.Login(ctx, auth.LoginRequest{EmployeeCode: "EMP-001", Password: "s3cretpass"})
		require.NoError(t, err)
		assert.Equal(t, employeeID, resp.Employee.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Login(ctx, auth.LoginRequest{Email: "asha@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown account looks like a bad password", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Login(ctx, auth.LoginRequest{EmployeeCode: "EMP-404", Password: "s3cretpass"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("storage failure is not a credential error", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.failWith = errors.New("connection reset")

		_, err := svc.Login(ctx, auth.LoginRequest{Email: "asha@example.com", Password: "s3cretpass"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("missing identifier", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Login(ctx, auth.LoginRequest{Password: "s3cretpass"})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "email")
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, jwtService := newTestService(t)

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "asha@example.com", Password: "s3cretpass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken))
	assert.True(t, jwtService.IsTokenRevoked(resp.AccessToken))

	assert.ErrorIs(t, svc.Logout(ctx, ""), auth.ErrInvalidToken)
	assert.ErrorIs(t, svc.Logout(ctx, "garbage"), auth.ErrInvalidToken)
}
