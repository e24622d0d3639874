package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type employeeRepository struct {
	employees *mongo.Collection
}

func NewEmployeeRepository(db *database.MongoDB) employee.EmployeeRepository {
	return &employeeRepository{
		employees: db.Database.Collection(database.EmployeesCollection),
	}
}

// mapEmployeeError translates driver errors into domain errors.
func mapEmployeeError(err error, op string) error {
	if isNoDocuments(err) {
		return employee.ErrEmployeeNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		// Index names come from EnsureIndexes.
		switch msg := err.Error(); {
		case strings.Contains(msg, "email_1"):
			return employee.ErrEmailExists
		case strings.Contains(msg, "employee_code_1"):
			return employee.ErrEmployeeCodeExists
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
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
	now := time.Now().UTC()
	newEmployee.CreatedAt = now
	newEmployee.UpdatedAt = now

	if _, err := e.employees.InsertOne(ctx, toEmployeeDocument(newEmployee)); err != nil {
		return employee.Employee{}, mapEmployeeError(err, "create employee")
	}
	return newEmployee, nil
}

func (e *employeeRepository) findOne(ctx context.Context, filter bson.D, op string) (employee.Employee, error) {
	var doc employeeDocument
	if err := e.employees.FindOne(ctx, filter).Decode(&doc); err != nil {
		return employee.Employee{}, mapEmployeeError(err, op)
	}
	return doc.toEntity(), nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return e.findOne(ctx, bson.D{{Key: "_id", Value: id}}, "get employee by id")
}

// GetByEmail implements employee.EmployeeRepository.
func (e *employeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return e.findOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}}, "get employee by email")
}

// GetByEmployeeCode implements employee.EmployeeRepository.
func (e *employeeRepository) GetByEmployeeCode(ctx context.Context, code string) (employee.Employee, error) {
	return e.findOne(ctx, bson.D{{Key: "employee_code", Value: code}}, "get employee by code")
}

func (e *employeeRepository) update(ctx context.Context, id string, set bson.D, op string) (employee.Employee, error) {
	set = append(set, bson.E{Key: "updated_at", Value: time.Now().UTC()})

	var doc employeeDocument
	err := e.employees.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return employee.Employee{}, mapEmployeeError(err, op)
	}
	return doc.toEntity(), nil
}

// UpdateProfile implements employee.EmployeeRepository.
func (e *employeeRepository) UpdateProfile(ctx context.Context, id string, name string, email string) (employee.Employee, error) {
	return e.update(ctx, id, bson.D{
		{Key: "name", Value: name},
		{Key: "email", Value: email},
	}, "update employee profile")
}

// UpdateCredentials implements employee.EmployeeRepository.
func (e *employeeRepository) UpdateCredentials(ctx context.Context, id string, employeeCode *string, passwordHash *string) (employee.Employee, error) {
	set := bson.D{}
	if employeeCode != nil {
		set = append(set, bson.E{Key: "employee_code", Value: *employeeCode})
	}
	if passwordHash != nil {
		set = append(set, bson.E{Key: "password_hash", Value: *passwordHash})
	}
	return e.update(ctx, id, set, "update employee credentials")
}

// UpdateFaceDescriptor implements employee.EmployeeRepository.
func (e *employeeRepository) UpdateFaceDescriptor(ctx context.Context, id string, descriptor []float64) (employee.Employee, error) {
	return e.update(ctx, id, bson.D{{Key: "face_descriptor", Value: descriptor}}, "update face descriptor")
}

// UpdateProfilePicture implements employee.EmployeeRepository.
func (e *employeeRepository) UpdateProfilePicture(ctx context.Context, id string, url string) error {
	_, err := e.update(ctx, id, bson.D{{Key: "profile_picture_url", Value: url}}, "update profile picture")
	return err
}

// ListFaceTemplates implements employee.EmployeeRepository.
func (e *employeeRepository) ListFaceTemplates(ctx context.Context) ([]employee.FaceTemplate, error) {
	cursor, err := e.employees.Find(ctx,
		bson.D{{Key: "face_descriptor.0", Value: bson.D{{Key: "$exists", Value: true}}}},
		options.Find().
			SetProjection(bson.D{
				{Key: "name", Value: 1},
				{Key: "employee_code", Value: 1},
				{Key: "face_descriptor", Value: 1},
			}).
			SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query face templates: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []employeeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode face templates: %w", err)
	}

	templates := make([]employee.FaceTemplate, 0, len(docs))
	for _, d := range docs {
		templates = append(templates, employee.FaceTemplate{
			EmployeeID:   d.ID,
			Name:         d.Name,
			EmployeeCode: d.EmployeeCode,
			Descriptor:   d.FaceDescriptor,
		})
	}
	return templates, nil
}
