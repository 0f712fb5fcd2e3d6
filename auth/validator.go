package auth

import (
	"github.com/go-playground/validator/v10"

	"github.com/daviderandino/ruggine/errors"
)

var validate = validator.New()

type RegisterRequest struct {
	Username string `validate:"required,min=3,max=32,alphanumunicode"`
	Password string `validate:"required,min=8,max=72"`
}

// ValidateRegister enforces the registration policy: a short, printable
// username and a password of at least 8 characters.
func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			if fieldErr.Field() == "Username" {
				return errors.ErrInvalidUsername
			}
		}
		return errors.ErrInvalidPassword
	}
	return nil
}
