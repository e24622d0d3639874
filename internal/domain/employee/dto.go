package employee

import (
	"math"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// MaxDescriptorLength bounds the size of a stored face descriptor.
const MaxDescriptorLength = 1024

type RegisterRequest struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EmployeeCode   string    `json:"employee_code"`
	Password       string    `json:"password"`
	FaceDescriptor []float64 `json:"face_descriptor,omitempty"`
	// ProfilePicture is a data URL or base64 image
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Role           Role    `json:"-"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateName(r.Name)...)
	errs = append(errs, validateEmail(r.Email)...)
	errs = append(errs, validateEmployeeCode(r.EmployeeCode)...)
	errs = append(errs, validatePassword(r.Password)...)

	if r.FaceDescriptor != nil {
		errs = append(errs, ValidateDescriptor("face_descriptor", r.FaceDescriptor)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateProfileRequest struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateName(r.Name)...)
	errs = append(errs, validateEmail(r.Email)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateCredentialsRequest struct {
	ID           string  `json:"-"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	Password     *string `json:"password,omitempty"`
}

func (r *UpdateCredentialsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeCode == nil && r.Password == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "credentials",
			Message: "employee_code or password is required",
		})
	}
	if r.EmployeeCode != nil {
		errs = append(errs, validateEmployeeCode(*r.EmployeeCode)...)
	}
	if r.Password != nil {
		errs = append(errs, validatePassword(*r.Password)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateBiometricsRequest struct {
	ID             string    `json:"-"`
	FaceDescriptor []float64 `json:"face_descriptor"`
}

func (r *UpdateBiometricsRequest) Validate() error {
	errs := ValidateDescriptor("face_descriptor", r.FaceDescriptor)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateProfilePictureRequest struct {
	ID string `json:"-"`
	// ProfilePicture is a data URL or base64 image
	ProfilePicture string `json:"profile_picture"`
}

func (r *UpdateProfilePictureRequest) Validate() error {
	if validator.IsEmpty(r.ProfilePicture) {
		return validator.ValidationErrors{{
			Field:   "profile_picture",
			Message: "profile_picture is required",
		}}
	}
	return nil
}

type EmployeeResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	EmployeeCode      string  `json:"employee_code"`
	Role              string  `json:"role"`
	HasFaceDescriptor bool    `json:"has_face_descriptor"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// ValidateDescriptor checks a face descriptor is non-empty, bounded and finite.
func ValidateDescriptor(field string, descriptor []float64) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if len(descriptor) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " is required",
		})
		return errs
	}
	if len(descriptor) > MaxDescriptorLength {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " has too many dimensions",
		})
		return errs
	}
	for _, v := range descriptor {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must contain finite numbers",
			})
			break
		}
	}

	return errs
}

func validateName(name string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}
	return errs
}

func validateEmail(email string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if len(email) > 254 {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must not exceed 254 characters",
		})
	} else if !validator.IsValidEmail(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	return errs
}

func validateEmployeeCode(code string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(code) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code is required",
		})
	} else if !validator.IsValidEmployeeCode(code) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code must be 1-50 letters, digits, dots, underscores or hyphens",
		})
	}
	return errs
}

func validatePassword(password string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters long",
		})
	} else if len(password) > 72 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 72 characters",
		})
	}
	return errs
}
