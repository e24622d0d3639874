package face

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

type VerifyRequest struct {
	Descriptor []float64 `json:"descriptor"`
}

func (r *VerifyRequest) Validate() error {
	errs := employee.ValidateDescriptor("descriptor", r.Descriptor)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MatchResponse struct {
	Match        bool    `json:"match"`
	EmployeeID   string  `json:"employee_id,omitempty"`
	Name         string  `json:"name,omitempty"`
	EmployeeCode string  `json:"employee_code,omitempty"`
	Distance     float64 `json:"distance,omitempty"`
}
