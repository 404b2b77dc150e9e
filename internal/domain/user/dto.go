package user

import "github.com/cmlabs-hris/attendance-client-go/internal/pkg/validator"

// UpdateProfileRequest is the body of PUT /auth/profile. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil && r.Phone == nil && r.Department == nil && r.Avatar == nil {
		errs.Add("body", "at least one field must be provided")
	}
	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name must not be empty")
		} else if len(*r.Name) > 255 {
			errs.Add("name", "name must not exceed 255 characters")
		}
	}
	if r.Phone != nil && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "phone must contain 8 to 15 digits")
	}
	if r.Department != nil && len(*r.Department) > 255 {
		errs.Add("department", "department must not exceed 255 characters")
	}

	return errs.Err()
}
