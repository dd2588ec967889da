package identity

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginData is the interactive login input.
type LoginData struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupData is the registration payload. The backend runs Laravel-style
// validation on its side; we pre-validate locally so obviously broken input
// never leaves the device.
type SignupData struct {
	Name                 string `json:"name" validate:"required"`
	Handle               string `json:"ff_name" validate:"required"`
	Phone                string `json:"phone_num" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// Validate checks the login input against its constraints.
func (d LoginData) Validate() error {
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(err, "[LoginData.Validate]")
	}
	return nil
}

// Validate checks the signup input against its constraints.
func (d SignupData) Validate() error {
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(err, "[SignupData.Validate]")
	}
	return nil
}
