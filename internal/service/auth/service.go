package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employee.EmployeeRepository
	jwt.Service
	employeeService employee.EmployeeService
}

func NewAuthService(employeeRepository employee.EmployeeRepository, jwtService jwt.Service, employeeService employee.EmployeeService) auth.AuthService {
	return &AuthServiceImpl{
		EmployeeRepository: employeeRepository,
		Service:            jwtService,
		employeeService:    employeeService,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	// Email wins when both identifiers are sent
	var (
		employeeData employee.Employee
		err          error
	)
	if email := strings.TrimSpace(loginReq.Email); email != "" {
		employeeData, err = a.EmployeeRepository.GetByEmail(ctx, strings.ToLower(email))
	} else {
		employeeData, err = a.EmployeeRepository.GetByEmployeeCode(ctx, strings.TrimSpace(loginReq.EmployeeCode))
	}
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employeeData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	var tokenResponse auth.TokenResponse
	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(employeeData.ID, employeeData.Email, employeeData.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	tokenResponse.Employee, err = a.employeeService.GetProfile(ctx, employeeData.ID)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return tokenResponse, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return auth.ErrInvalidToken
	}
	if err := a.Service.RevokeToken(token); err != nil {
		return auth.ErrInvalidToken
	}
	return nil
}
