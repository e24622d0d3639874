package employee

import "context"

type EmployeeService interface {
	Register(ctx context.Context, req RegisterRequest) (EmployeeResponse, error)
	GetProfile(ctx context.Context, id string) (EmployeeResponse, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (EmployeeResponse, error)
	UpdateCredentials(ctx context.Context, req UpdateCredentialsRequest) (EmployeeResponse, error)
	UpdateBiometrics(ctx context.Context, req UpdateBiometricsRequest) (EmployeeResponse, error)
	UpdateProfilePicture(ctx context.Context, req UpdateProfilePictureRequest) (EmployeeResponse, error)
	// EnsureAdmin creates the bootstrap admin account if its email is not registered yet
	EnsureAdmin(ctx context.Context, req RegisterRequest) error
}
