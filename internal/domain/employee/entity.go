package employee

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

type Employee struct {
	ID                string
	Name              string
	Email             string
	EmployeeCode      string
	PasswordHash      string
	Role              Role
	FaceDescriptor    []float64
	ProfilePictureURL *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (e Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// FaceTemplate is the part of an employee the face matcher needs.
type FaceTemplate struct {
	EmployeeID   string
	Name         string
	EmployeeCode string
	Descriptor   []float64
}
