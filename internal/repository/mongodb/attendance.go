package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// modifyAttempts bounds the optimistic retry loop in Modify.
const modifyAttempts = 3

type attendanceRepository struct {
	attendances *mongo.Collection
	employees   *mongo.Collection
}

func NewAttendanceRepository(db *database.MongoDB) attendance.AttendanceRepository {
	return &attendanceRepository{
		attendances: db.Database.Collection(database.AttendancesCollection),
		employees:   db.Database.Collection(database.EmployeesCollection),
	}
}

// employeeLookup joins the owning employee onto each attendance document.
var employeeLookup = mongo.Pipeline{
	{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: database.EmployeesCollection},
		{Key: "localField", Value: "employee_id"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "employee"},
	}}},
	{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$employee"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}},
}

func (a *attendanceRepository) findOne(ctx context.Context, match bson.D) (*attendance.Attendance, error) {
	pipeline := append(mongo.Pipeline{{{Key: "$match", Value: match}}}, employeeLookup...)
	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: 1}})

	cursor, err := a.attendances.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, cursor.Err()
	}
	var row attendanceRow
	if err := cursor.Decode(&row); err != nil {
		return nil, err
	}
	att := row.toEntity()
	return &att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	att, err := a.findOne(ctx, bson.D{{Key: "employee_id", Value: employeeID}, {Key: "date", Value: date}})
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	exists, err := a.employees.CountDocuments(ctx, bson.D{{Key: "_id", Value: newAttendance.EmployeeID}})
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to check employee: %w", err)
	}
	if exists == 0 {
		return attendance.Attendance{}, employee.ErrEmployeeNotFound
	}

	now := time.Now().UTC()
	newAttendance.Version = 1
	newAttendance.CreatedAt = now
	newAttendance.UpdatedAt = now
	if newAttendance.Regularization.Status == "" {
		newAttendance.Regularization.Status = attendance.RegularizationNone
	}

	if _, err := a.attendances.InsertOne(ctx, toAttendanceDocument(newAttendance)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateClockIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	att, err := a.findOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	if att == nil {
		return attendance.Attendance{}, attendance.ErrRecordNotFound
	}
	return *att, nil
}

// Modify implements attendance.AttendanceRepository.
// Writes are guarded by the version field; a lost race reloads and retries.
func (a *attendanceRepository) Modify(ctx context.Context, id string, fn func(*attendance.Attendance) error) (attendance.Attendance, error) {
	for attempt := 0; attempt < modifyAttempts; attempt++ {
		current, err := a.GetByID(ctx, id)
		if err != nil {
			return attendance.Attendance{}, err
		}

		next := current
		if err := fn(&next); err != nil {
			return attendance.Attendance{}, err
		}
		next.Version = current.Version + 1
		next.UpdatedAt = time.Now().UTC()

		result, err := a.attendances.ReplaceOne(ctx,
			bson.D{{Key: "_id", Value: id}, {Key: "version", Value: current.Version}},
			toAttendanceDocument(next),
		)
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
		}
		if result.MatchedCount == 1 {
			return next, nil
		}
	}

	return attendance.Attendance{}, attendance.ErrConcurrentUpdate
}

// UpsertRegularization implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpsertRegularization(ctx context.Context, employeeID string, date string, regularization attendance.Regularization) (attendance.Attendance, error) {
	exists, err := a.employees.CountDocuments(ctx, bson.D{{Key: "_id", Value: employeeID}})
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to check employee: %w", err)
	}
	if exists == 0 {
		return attendance.Attendance{}, employee.ErrEmployeeNotFound
	}

	id, err := newID()
	if err != nil {
		return attendance.Attendance{}, err
	}
	now := time.Now().UTC()

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "regularization", Value: toRegularizationDocument(regularization)},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: string(attendance.StatusAbsent)},
			{Key: "work_mode", Value: string(attendance.WorkModeOffice)},
			{Key: "late_minutes", Value: 0},
			{Key: "created_at", Value: now},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	filter := bson.D{{Key: "employee_id", Value: employeeID}, {Key: "date", Value: date}}

	var doc attendanceDocument
	err = a.attendances.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Two upserts raced on the unique key; the loser now finds the winner's document.
		err = a.attendances.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert regularization: %w", err)
	}

	return a.GetByID(ctx, doc.ID)
}

var listSortFields = map[string]string{
	"date":           "date",
	"employee_name":  "employee.name",
	"clock_in_time":  "clock_in_time",
	"clock_out_time": "clock_out_time",
	"status":         "status",
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	match := bson.D{}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		match = append(match, bson.E{Key: "employee_id", Value: *filter.EmployeeID})
	}
	if filter.Date != nil && *filter.Date != "" {
		match = append(match, bson.E{Key: "date", Value: *filter.Date})
	}
	dateRange := bson.D{}
	if filter.StartDate != nil && *filter.StartDate != "" {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: *filter.StartDate})
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: *filter.EndDate})
	}
	if len(dateRange) > 0 {
		match = append(match, bson.E{Key: "date", Value: dateRange})
	}
	if filter.Status != nil && *filter.Status != "" {
		match = append(match, bson.E{Key: "status", Value: *filter.Status})
	}
	if filter.RegularizationStatus != nil && *filter.RegularizationStatus != "" {
		match = append(match, bson.E{Key: "regularization.status", Value: *filter.RegularizationStatus})
	}

	pipeline := append(mongo.Pipeline{{{Key: "$match", Value: match}}}, employeeLookup...)

	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "employee.name", Value: bson.D{
				{Key: "$regex", Value: regexp.QuoteMeta(*filter.EmployeeName)},
				{Key: "$options", Value: "i"},
			}},
		}}})
	}

	sortField, ok := listSortFields[filter.SortBy]
	if !ok {
		sortField = "date"
	}
	direction := -1
	if filter.SortOrder == "asc" {
		direction = 1
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: sortField, Value: direction},
			{Key: "created_at", Value: -1},
		}}},
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "items", Value: bson.A{
				bson.D{{Key: "$skip", Value: int64((page - 1) * limit)}},
				bson.D{{Key: "$limit", Value: int64(limit)}},
			}},
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$count", Value: "n"}},
			}},
		}}},
	)

	cursor, err := a.attendances.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []struct {
		Items []attendanceRow `bson:"items"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, 0, fmt.Errorf("failed to decode attendances: %w", err)
	}

	attendances := make([]attendance.Attendance, 0, limit)
	var total int64
	if len(facets) > 0 {
		for _, row := range facets[0].Items {
			attendances = append(attendances, row.toEntity())
		}
		if len(facets[0].Total) > 0 {
			total = facets[0].Total[0].N
		}
	}

	return attendances, total, nil
}

// CountByStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountByStatus(ctx context.Context, date string) (map[attendance.Status]int64, error) {
	cursor, err := a.attendances.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "date", Value: date}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count attendances by status: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}

	counts := make(map[attendance.Status]int64, len(groups))
	for _, g := range groups {
		counts[attendance.Status(g.Status)] = g.Count
	}
	return counts, nil
}

// isNoDocuments reports a missing document from a single-result operation.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
