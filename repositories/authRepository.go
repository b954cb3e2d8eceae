package repositories

import (
	"context"
	"errors"
	"strings"

	"ClinicDesk/models"
	"ClinicDesk/store"
)

// ErrDuplicateEmail is returned when an account with the email exists.
var ErrDuplicateEmail = errors.New("email already registered")

type UserRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID models.ID) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUserPassword(ctx context.Context, userID models.ID, hashedPassword string) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

type userRepository struct {
	users *Repository[*models.User]
}

func NewUserRepository(driver store.Driver) UserRepository {
	return &userRepository{
		users: NewRepository(driver, models.UsersCollection, func() *models.User { return &models.User{} }),
	}
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// GetUserByEmail returns nil, nil when no account uses email.
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.users.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if sameEmail(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

// GetUserByID returns nil, nil for an unknown id.
func (r *userRepository) GetUserByID(ctx context.Context, userID models.ID) (*models.User, error) {
	user, err := r.users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// CreateUser stores user unless the email is taken. The check and the insert
// are one update of the users collection.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	return r.users.Create(ctx, user, func(existing []*models.User) error {
		for _, u := range existing {
			if sameEmail(u.Email, user.Email) {
				return ErrDuplicateEmail
			}
		}
		return nil
	})
}

func (r *userRepository) UpdateUserPassword(ctx context.Context, userID models.ID, hashedPassword string) error {
	_, err := r.users.Update(ctx, userID, func(u *models.User) (*models.User, error) {
		u.Password = hashedPassword
		return u, nil
	})
	return err
}

func (r *userRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return r.users.List(ctx, nil)
}
