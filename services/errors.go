package services

import (
	"errors"

	"ClinicDesk/repositories"
	"ClinicDesk/store"
	"ClinicDesk/utils"
)

var (
	ErrNotFound           = store.ErrNotFound
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = repositories.ErrDuplicateEmail
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoGuestSession     = errors.New("no guest session to upgrade")
	ErrFileTooLarge       = errors.New("file too large")
	ErrResetUnavailable   = errors.New("password reset is not configured")
	ErrInvalidResetCode   = utils.ErrInvalidResetCode
)
