package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/face"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	fileService  file.FileService
	faceService  face.FaceService
	logger       *slog.Logger
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	fileService file.FileService,
	faceService face.FaceService,
	logger *slog.Logger,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		fileService:  fileService,
		faceService:  faceService,
		logger:       logger,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Register(ctx context.Context, req employee.RegisterRequest) (employee.EmployeeResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to generate employee id: %w", err)
	}

	role := req.Role
	if role == "" {
		role = employee.RoleEmployee
	}

	newEmployee := employee.Employee{
		ID:             id.String(),
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		EmployeeCode:   strings.TrimSpace(req.EmployeeCode),
		PasswordHash:   passwordHash,
		Role:           role,
		FaceDescriptor: req.FaceDescriptor,
	}

	if req.ProfilePicture != nil && *req.ProfilePicture != "" {
		key, err := s.fileService.UploadProfilePicture(ctx, newEmployee.ID, *req.ProfilePicture)
		if err != nil {
			return employee.EmployeeResponse{}, err
		}
		newEmployee.ProfilePictureURL = &key
	}

	created, err := s.employeeRepo.Create(ctx, newEmployee)
	if err != nil {
		if newEmployee.ProfilePictureURL != nil {
			s.removeFile(ctx, newEmployee.ID, *newEmployee.ProfilePictureURL)
		}
		if errors.Is(err, employee.ErrEmailExists) || errors.Is(err, employee.ErrEmployeeCodeExists) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	if len(created.FaceDescriptor) > 0 {
		s.faceService.Invalidate()
	}

	s.logger.Info("employee registered", slog.String("employee_id", created.ID), slog.String("role", string(created.Role)))
	return s.mapEmployeeToResponse(ctx, created), nil
}

// GetProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetProfile(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, wrapRepoError("get employee", err)
	}
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// UpdateProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateProfile(ctx context.Context, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(req.ID) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.UpdateProfile(ctx, req.ID, strings.TrimSpace(req.Name), req.Email)
	if err != nil {
		return employee.EmployeeResponse{}, wrapRepoError("update profile", err)
	}

	// The face gallery carries names.
	if len(emp.FaceDescriptor) > 0 {
		s.faceService.Invalidate()
	}
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// UpdateCredentials implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateCredentials(ctx context.Context, req employee.UpdateCredentialsRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(req.ID) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	var code, passwordHash *string
	if req.EmployeeCode != nil {
		trimmed := strings.TrimSpace(*req.EmployeeCode)
		code = &trimmed
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = &hash
	}

	emp, err := s.employeeRepo.UpdateCredentials(ctx, req.ID, code, passwordHash)
	if err != nil {
		return employee.EmployeeResponse{}, wrapRepoError("update credentials", err)
	}

	if code != nil && len(emp.FaceDescriptor) > 0 {
		s.faceService.Invalidate()
	}
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// UpdateBiometrics implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateBiometrics(ctx context.Context, req employee.UpdateBiometricsRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(req.ID) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.UpdateFaceDescriptor(ctx, req.ID, req.FaceDescriptor)
	if err != nil {
		return employee.EmployeeResponse{}, wrapRepoError("update face descriptor", err)
	}

	s.faceService.Invalidate()
	return s.mapEmployeeToResponse(ctx, emp), nil
}

// UpdateProfilePicture implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateProfilePicture(ctx context.Context, req employee.UpdateProfilePictureRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(req.ID) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	current, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, wrapRepoError("get employee", err)
	}

	key, err := s.fileService.UploadProfilePicture(ctx, req.ID, req.ProfilePicture)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.employeeRepo.UpdateProfilePicture(ctx, req.ID, key); err != nil {
		s.removeFile(ctx, req.ID, key)
		return employee.EmployeeResponse{}, wrapRepoError("update profile picture", err)
	}

	if current.ProfilePictureURL != nil && *current.ProfilePictureURL != "" {
		s.removeFile(ctx, req.ID, *current.ProfilePictureURL)
	}

	current.ProfilePictureURL = &key
	return s.mapEmployeeToResponse(ctx, current), nil
}

func (s *EmployeeServiceImpl) removeFile(ctx context.Context, employeeID string, key string) {
	if err := s.fileService.DeleteFile(ctx, key); err != nil {
		s.logger.Warn("failed to remove profile picture", slog.String("employee_id", employeeID), slog.String("key", key), slog.Any("error", err))
	}
}

// EnsureAdmin implements employee.EmployeeService.
func (s *EmployeeServiceImpl) EnsureAdmin(ctx context.Context, req employee.RegisterRequest) error {
	_, err := s.employeeRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	req.Role = employee.RoleAdmin
	created, err := s.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	s.logger.Info("bootstrap admin created", slog.String("employee_id", created.ID), slog.String("email", created.Email))
	return nil
}

func wrapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrEmailExists),
		errors.Is(err, employee.ErrEmployeeCodeExists):
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// mapEmployeeToResponse converts an Employee entity to EmployeeResponse
func (s *EmployeeServiceImpl) mapEmployeeToResponse(ctx context.Context, emp employee.Employee) employee.EmployeeResponse {
	var pictureURL *string
	if emp.ProfilePictureURL != nil && *emp.ProfilePictureURL != "" {
		url, err := s.fileService.GetFileURL(ctx, *emp.ProfilePictureURL)
		if err != nil {
			s.logger.Warn("failed to resolve profile picture url", slog.String("employee_id", emp.ID), slog.Any("error", err))
		} else {
			pictureURL = &url
		}
	}

	return employee.EmployeeResponse{
		ID:                emp.ID,
		Name:              emp.Name,
		Email:             emp.Email,
		EmployeeCode:      emp.EmployeeCode,
		Role:              string(emp.Role),
		HasFaceDescriptor: len(emp.FaceDescriptor) > 0,
		ProfilePictureURL: pictureURL,
		CreatedAt:         emp.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         emp.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
