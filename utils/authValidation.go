package utils

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation errors
var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordNotComplex = errors.New("password must include at least one uppercase letter, one lowercase letter, one digit, and one special character")
	ErrInvalidResetCode   = errors.New("invalid reset code")
)

var (
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	specialRegex   = regexp.MustCompile(`[^A-Za-z0-9]`)
	resetCodeRegex = regexp.MustCompile(`^\d{6}$`)
)

// Credentials is the body of signup and guest upgrade requests.
type Credentials struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Normalize trims the display name and lower-cases the email.
func (c *Credentials) Normalize() {
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

// Validate checks signup data using ozzo-validation.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DisplayName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required.Error("password cannot be blank"), validation.By(validatePassword)),
	)
}

// ValidatePasswordReset validates the reset code and new password.
func ValidatePasswordReset(resetCode, newPassword string) error {
	return validation.Errors{
		"resetCode": validation.Validate(resetCode, validation.Required.Error(ErrInvalidResetCode.Error()), validation.Match(resetCodeRegex).Error(ErrInvalidResetCode.Error())),
		"password":  validation.Validate(newPassword, validation.Required, validation.By(validatePassword)),
	}.Filter()
}

// validatePassword checks the password for length and complexity.
func validatePassword(value interface{}) error {
	password, _ := value.(string)
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if !lowercaseRegex.MatchString(password) ||
		!uppercaseRegex.MatchString(password) ||
		!digitRegex.MatchString(password) ||
		!specialRegex.MatchString(password) {
		return ErrPasswordNotComplex
	}
	return nil
}
