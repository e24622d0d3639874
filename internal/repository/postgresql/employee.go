package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, name, email, employee_code, password_hash, role,
	face_descriptor, profile_picture_url, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		emp  employee.Employee
		role string
	)
	err := row.Scan(
		&emp.ID, &emp.Name, &emp.Email, &emp.EmployeeCode, &emp.PasswordHash, &role,
		&emp.FaceDescriptor, &emp.ProfilePictureURL, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	emp.Role = employee.Role(role)
	return emp, nil
}

// mapEmployeeError translates driver errors into domain errors.
func mapEmployeeError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return employee.ErrEmployeeNotFound
	}
	if constraint, ok := isUniqueViolation(err); ok {
		switch constraint {
		case "employees_email_key":
			return employee.ErrEmailExists
		case "employees_employee_code_key":
			return employee.ErrEmployeeCodeExists
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	if newEmployee.ID == "" {
		id, err := newID()
		if err != nil {
			return employee.Employee{}, err
		}
		newEmployee.ID = id
	}
	if newEmployee.Role == "" {
		newEmployee.Role = employee.RoleEmployee
	}

	query := `
		INSERT INTO employees (
			id, name, email, employee_code, password_hash, role,
			face_descriptor, profile_picture_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.Name, newEmployee.Email, newEmployee.EmployeeCode,
		newEmployee.PasswordHash, string(newEmployee.Role),
		newEmployee.FaceDescriptor, newEmployee.ProfilePictureURL,
	).Scan(&newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err, "create employee")
	}

	return newEmployee, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	emp, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err, "get employee by id")
	}
	return emp, nil
}

// GetByEmail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	emp, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err, "get employee by email")
	}
	return emp, nil
}

// GetByEmployeeCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmployeeCode(ctx context.Context, code string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	emp, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_code = $1`, code))
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err, "get employee by code")
	}
	return emp, nil
}

// UpdateProfile implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateProfile(ctx context.Context, id string, name string, email string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + employeeColumns
	emp, err := scanEmployee(q.QueryRow(ctx, query, id, name, email))
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err, "update employee profile")
	}
	return emp, nil
}

// UpdateCredentials implements employee.EmployeeRepository.
// Nil arguments keep the stored value.
func (e *employeeRepositoryImpl) UpdateCredentials(ctx context.Context, id string, employeeCode *string, passwordHash *string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET employee_code = COALESCE($2, employee_code),
			password_hash = COALESCE($3, password_hash),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + employeeColumns
	emp, err := scanEmployee(q.QueryRow(ctx, query, id, employeeCode, passwordHash))
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err, "update employee credentials")
	}
	return emp, nil
}

// UpdateFaceDescriptor implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateFaceDescriptor(ctx context.Context, id string, descriptor []float64) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET face_descriptor = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + employeeColumns
	emp, err := scanEmployee(q.QueryRow(ctx, query, id, descriptor))
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err, "update face descriptor")
	}
	return emp, nil
}

// UpdateProfilePicture implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateProfilePicture(ctx context.Context, id string, url string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees
		SET profile_picture_url = $2, updated_at = NOW()
		WHERE id = $1
	`, id, url)
	if err != nil {
		return mapEmployeeError(err, "update profile picture")
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// ListFaceTemplates implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListFaceTemplates(ctx context.Context) ([]employee.FaceTemplate, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, employee_code, face_descriptor
		FROM employees
		WHERE face_descriptor IS NOT NULL AND cardinality(face_descriptor) > 0
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query face templates: %w", err)
	}
	defer rows.Close()

	var templates []employee.FaceTemplate
	for rows.Next() {
		var t employee.FaceTemplate
		if err := rows.Scan(&t.EmployeeID, &t.Name, &t.EmployeeCode, &t.Descriptor); err != nil {
			return nil, fmt.Errorf("failed to scan face template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate face templates: %w", err)
	}

	return templates, nil
}
