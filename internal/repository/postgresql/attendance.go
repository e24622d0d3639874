package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceSelect = `
	SELECT
		a.id, a.employee_id, to_char(a.date, 'YYYY-MM-DD'),
		a.clock_in_time, a.clock_out_time,
		a.clock_in_proof_url, a.clock_out_proof_url,
		a.status, a.work_mode, a.latitude, a.longitude,
		a.late_minutes, a.total_work_hours,
		a.regularization_status, a.regularization_reason,
		a.regularization_new_clock_in, a.regularization_new_clock_out,
		a.version, a.created_at, a.updated_at,
		e.name, e.employee_code, e.email
	FROM attendances a
	LEFT JOIN employees e ON e.id = a.employee_id`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att                          attendance.Attendance
		status, workMode, regStatus string
	)
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date,
		&att.ClockInTime, &att.ClockOutTime,
		&att.ClockInProofURL, &att.ClockOutProofURL,
		&status, &workMode, &att.Latitude, &att.Longitude,
		&att.LateMinutes, &att.TotalWorkHours,
		&regStatus, &att.Regularization.Reason,
		&att.Regularization.NewClockIn, &att.Regularization.NewClockOut,
		&att.Version, &att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.EmployeeCode, &att.EmployeeEmail,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	att.Status = attendance.Status(status)
	att.WorkMode = attendance.WorkMode(workMode)
	att.Regularization.Status = attendance.RegularizationStatus(regStatus)
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+`
		WHERE a.employee_id = $1 AND a.date = $2`, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, employee_id, date, clock_in_time, clock_out_time,
			clock_in_proof_url, clock_out_proof_url, status, work_mode,
			latitude, longitude, late_minutes, total_work_hours,
			regularization_status, regularization_reason,
			regularization_new_clock_in, regularization_new_clock_out
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING version, created_at, updated_at
	`

	reg := newAttendance.Regularization
	if reg.Status == "" {
		reg.Status = attendance.RegularizationNone
	}

	err := q.QueryRow(ctx, query,
		newAttendance.ID, newAttendance.EmployeeID, newAttendance.Date,
		newAttendance.ClockInTime, newAttendance.ClockOutTime,
		newAttendance.ClockInProofURL, newAttendance.ClockOutProofURL,
		string(newAttendance.Status), string(newAttendance.WorkMode),
		newAttendance.Latitude, newAttendance.Longitude,
		newAttendance.LateMinutes, newAttendance.TotalWorkHours,
		string(reg.Status), reg.Reason, reg.NewClockIn, reg.NewClockOut,
	).Scan(&newAttendance.Version, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok && constraint == "attendances_employee_date_key" {
			return attendance.Attendance{}, attendance.ErrDuplicateClockIn
		}
		if pgErrorCode(err) == pgerrcode.ForeignKeyViolation {
			return attendance.Attendance{}, employee.ErrEmployeeNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	newAttendance.Regularization = reg

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+`
		WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return attendance.Attendance{}, attendance.ErrRecordNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	return att, nil
}

// Modify implements attendance.AttendanceRepository.
// The row is locked with SELECT ... FOR UPDATE for the duration of fn.
func (a *attendanceRepository) Modify(ctx context.Context, id string, fn func(*attendance.Attendance) error) (attendance.Attendance, error) {
	var result attendance.Attendance

	err := WithTransaction(ctx, a.db, func(ctx context.Context, tx pgx.Tx) error {
		att, err := scanAttendance(tx.QueryRow(ctx, attendanceSelect+`
			WHERE a.id = $1
			FOR UPDATE OF a`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
				return attendance.ErrRecordNotFound
			}
			return fmt.Errorf("failed to lock attendance: %w", err)
		}

		if err := fn(&att); err != nil {
			return err
		}

		query := `
			UPDATE attendances SET
				clock_in_time = $2,
				clock_out_time = $3,
				clock_in_proof_url = $4,
				clock_out_proof_url = $5,
				status = $6,
				work_mode = $7,
				latitude = $8,
				longitude = $9,
				late_minutes = $10,
				total_work_hours = $11,
				regularization_status = $12,
				regularization_reason = $13,
				regularization_new_clock_in = $14,
				regularization_new_clock_out = $15,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $1
			RETURNING version, updated_at
		`
		err = tx.QueryRow(ctx, query,
			att.ID,
			att.ClockInTime, att.ClockOutTime,
			att.ClockInProofURL, att.ClockOutProofURL,
			string(att.Status), string(att.WorkMode),
			att.Latitude, att.Longitude,
			att.LateMinutes, att.TotalWorkHours,
			string(att.Regularization.Status), att.Regularization.Reason,
			att.Regularization.NewClockIn, att.Regularization.NewClockOut,
		).Scan(&att.Version, &att.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}

		result = att
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	return result, nil
}

// UpsertRegularization implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpsertRegularization(ctx context.Context, employeeID string, date string, regularization attendance.Regularization) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	id, err := newID()
	if err != nil {
		return attendance.Attendance{}, err
	}

	query := `
		INSERT INTO attendances (
			id, employee_id, date, status, work_mode,
			regularization_status, regularization_reason,
			regularization_new_clock_in, regularization_new_clock_out
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			regularization_status = EXCLUDED.regularization_status,
			regularization_reason = EXCLUDED.regularization_reason,
			regularization_new_clock_in = EXCLUDED.regularization_new_clock_in,
			regularization_new_clock_out = EXCLUDED.regularization_new_clock_out,
			version = attendances.version + 1,
			updated_at = NOW()
		RETURNING id
	`

	var recordID string
	err = q.QueryRow(ctx, query,
		id, employeeID, date,
		string(attendance.StatusAbsent), string(attendance.WorkModeOffice),
		string(regularization.Status), regularization.Reason,
		regularization.NewClockIn, regularization.NewClockOut,
	).Scan(&recordID)
	if err != nil {
		if pgErrorCode(err) == pgerrcode.ForeignKeyViolation || isInvalidID(err) {
			return attendance.Attendance{}, employee.ErrEmployeeNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to upsert regularization: %w", err)
	}

	return a.GetByID(ctx, recordID)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	// Employee ID filter
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id::text = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Employee name filter (search)
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		baseWhere += fmt.Sprintf(" AND e.name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIdx++
	}

	// Date filter
	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND a.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	// Status filters
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.RegularizationStatus != nil && *filter.RegularizationStatus != "" {
		baseWhere += fmt.Sprintf(" AND a.regularization_status = $%d", argIdx)
		args = append(args, *filter.RegularizationStatus)
		argIdx++
	}

	// Count total (need to join employees for name filter)
	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	// Build ORDER BY
	orderByField := "a.date"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.name"
	case "clock_in_time":
		orderByField = "a.clock_in_time"
	case "clock_out_time":
		orderByField = "a.clock_out_time"
	case "status":
		orderByField = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY %s %s NULLS LAST, a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, attendanceSelect, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	attendances := make([]attendance.Attendance, 0, limit)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return attendances, total, nil
}

// CountByStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountByStatus(ctx context.Context, date string) (map[attendance.Status]int64, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `
		SELECT status, COUNT(*)
		FROM attendances
		WHERE date = $1
		GROUP BY status
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendances by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[attendance.Status]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[attendance.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{
		db: db,
	}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}
