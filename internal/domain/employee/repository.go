package employee

import "context"

type EmployeeRepository interface {
	// Create returns ErrEmailExists or ErrEmployeeCodeExists on a unique clash
	Create(ctx context.Context, employee Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	GetByEmployeeCode(ctx context.Context, code string) (Employee, error)
	UpdateProfile(ctx context.Context, id string, name string, email string) (Employee, error)
	UpdateCredentials(ctx context.Context, id string, employeeCode *string, passwordHash *string) (Employee, error)
	UpdateFaceDescriptor(ctx context.Context, id string, descriptor []float64) (Employee, error)
	UpdateProfilePicture(ctx context.Context, id string, url string) error
	// ListFaceTemplates returns every employee with a registered face descriptor
	ListFaceTemplates(ctx context.Context) ([]FaceTemplate, error)
}
