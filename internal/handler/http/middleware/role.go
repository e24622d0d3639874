package middleware

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
)

// EmployeeIDFromContext returns the employee the verified token was issued to.
func EmployeeIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", auth.ErrInvalidToken
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", auth.ErrInvalidToken
	}
	return employeeID, nil
}

func RoleFromContext(ctx context.Context) (employee.Role, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", auth.ErrInvalidToken
	}

	role, ok := claims["role"].(string)
	if !ok {
		return "", auth.ErrInvalidToken
	}
	return employee.Role(role), nil
}
