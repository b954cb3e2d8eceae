package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/repositories"
	"ClinicDesk/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Principal is the identity a request acts as, resolved from its session.
type Principal struct {
	SID      string
	Identity models.Identity
	Role     string
	// User is nil for guests.
	User *models.User
}

// GuestView is how a guest identity is shown to clients.
type GuestView struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Role string `json:"role"`
}

// View is the client facing form of the principal: a SafeUser or a GuestView.
func (p *Principal) View() any {
	if p.User != nil {
		return p.User.Safe()
	}
	if g, ok := p.Identity.(models.GuestIdentity); ok {
		return GuestView{ID: g.ID, Type: models.IdentityGuest, Role: g.Role()}
	}
	return nil
}

type UserService interface {
	StartGuest(ctx context.Context, previousSID string) (*Principal, error)
	UpgradeGuest(ctx context.Context, current *Principal, creds utils.Credentials) (*Principal, error)
	Signup(ctx context.Context, creds utils.Credentials) (*models.User, error)
	Login(ctx context.Context, previousSID, email, password string) (*Principal, error)
	Logout(ctx context.Context, sid string) error
	Resolve(ctx context.Context, sid string) (*Principal, error)
	SessionTTL() time.Duration
	ListUsers(ctx context.Context) ([]models.SafeUser, error)
	ResetEnabled() bool
	SendResetCode(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, email, code, newPassword string) error
}

type userService struct {
	userRepo repositories.UserRepository
	sessions *repositories.SessionRepository
	resets   *utils.ResetCodes
	mailer   utils.Mailer
	log      zerolog.Logger
	now      func() time.Time
}

// NewUserService wires the account and session flows. resets and mailer may
// be nil, which disables password reset.
func NewUserService(userRepo repositories.UserRepository, sessions *repositories.SessionRepository, resets *utils.ResetCodes, mailer utils.Mailer, log zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		sessions: sessions,
		resets:   resets,
		mailer:   mailer,
		log:      log,
		now:      time.Now,
	}
}

func (s *userService) SessionTTL() time.Duration { return s.sessions.TTL() }

// startSession stores identity under a fresh sid and drops previousSID.
func (s *userService) startSession(ctx context.Context, previousSID string, identity models.Identity) (string, error) {
	if previousSID != "" {
		if err := s.sessions.Destroy(ctx, previousSID); err != nil {
			return "", fmt.Errorf("failed to drop previous session: %w", err)
		}
	}
	sid := uuid.New().String()
	if _, err := s.sessions.Set(ctx, sid, models.SessionData{Identity: identity}); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return sid, nil
}

func (s *userService) StartGuest(ctx context.Context, previousSID string) (*Principal, error) {
	guest := models.GuestIdentity{ID: "guest-" + strconv.FormatInt(s.now().UnixMilli(), 10)}
	sid, err := s.startSession(ctx, previousSID, guest)
	if err != nil {
		return nil, err
	}
	return &Principal{SID: sid, Identity: guest, Role: guest.Role()}, nil
}

// UpgradeGuest turns the current guest into a customer account and moves the
// request onto a new session for that account.
func (s *userService) UpgradeGuest(ctx context.Context, current *Principal, creds utils.Credentials) (*Principal, error) {
	if current == nil {
		return nil, ErrNoGuestSession
	}
	if _, ok := current.Identity.(models.GuestIdentity); !ok {
		return nil, ErrNoGuestSession
	}
	user, err := s.register(ctx, creds, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	sid, err := s.startSession(ctx, current.SID, models.UserIdentity{UserID: user.ID})
	if err != nil {
		return nil, err
	}
	return &Principal{SID: sid, Identity: models.UserIdentity{UserID: user.ID}, Role: user.Role, User: user}, nil
}

// Signup registers a staff account. It does not log the new account in.
func (s *userService) Signup(ctx context.Context, creds utils.Credentials) (*models.User, error) {
	return s.register(ctx, creds, models.RoleStaff)
}

func (s *userService) register(ctx context.Context, creds utils.Credentials, role string) (*models.User, error) {
	creds.Normalize()
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	hash, err := utils.HashPassword(creds.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        creds.Email,
		Password:     hash,
		Role:         role,
		DisplayName:  creds.DisplayName,
		AuthProvider: models.ProviderNative,
		Status:       models.UserActive,
		CreatedAt:    s.now(),
	}
	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", int64(created.ID)).Str("role", role).Msg("account created")
	return created, nil
}

func (s *userService) Login(ctx context.Context, previousSID, email, password string) (*Principal, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil || user.Status == models.UserDisabled || !utils.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	identity := models.UserIdentity{UserID: user.ID}
	sid, err := s.startSession(ctx, previousSID, identity)
	if err != nil {
		return nil, err
	}
	return &Principal{SID: sid, Identity: identity, Role: user.Role, User: user}, nil
}

func (s *userService) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, sid)
}

// Resolve loads the session sid and the identity it carries, extending the
// session's expiry. It returns nil, nil when there is no usable session: the
// session is unknown or expired, or its user no longer exists or is disabled.
func (s *userService) Resolve(ctx context.Context, sid string) (*Principal, error) {
	if sid == "" {
		return nil, nil
	}
	session, err := s.sessions.Get(ctx, sid)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	p := &Principal{SID: sid, Identity: session.Data.Identity}
	switch id := session.Data.Identity.(type) {
	case models.GuestIdentity:
		p.Role = id.Role()
	case models.UserIdentity:
		user, err := s.userRepo.GetUserByID(ctx, id.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session user: %w", err)
		}
		if user == nil || user.Status == models.UserDisabled {
			return nil, nil
		}
		p.Role = user.Role
		p.User = user
	default:
		return nil, nil
	}

	if err := s.sessions.Touch(ctx, sid, session.Data); err != nil {
		s.log.Warn().Err(err).Str("sid", sid).Msg("failed to touch session")
	}
	return p, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.SafeUser, error) {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u *models.User, _ int) models.SafeUser { return u.Safe() }), nil
}

func (s *userService) ResetEnabled() bool {
	return s.resets != nil && s.mailer != nil
}

// SendResetCode mails a fresh reset code to an existing account.
func (s *userService) SendResetCode(ctx context.Context, email string) error {
	if !s.ResetEnabled() {
		return ErrResetUnavailable
	}
	if err := validation.Validate(email, validation.Required); err != nil {
		return fmt.Errorf("%w: email: %w", ErrInvalidInput, err)
	}
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("account %w", ErrNotFound)
	}
	code, err := utils.GenerateResetCode()
	if err != nil {
		return err
	}
	if err := s.resets.Set(ctx, user.Email, code); err != nil {
		return fmt.Errorf("failed to set reset code: %w", err)
	}
	return s.mailer.SendResetCode(user.Email, code)
}

// ChangePassword sets a new password when code is the pending reset code for
// email. The code is spent on success.
func (s *userService) ChangePassword(ctx context.Context, email, code, newPassword string) error {
	if !s.ResetEnabled() {
		return ErrResetUnavailable
	}
	if err := utils.ValidatePasswordReset(code, newPassword); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetCode
	}
	ok, err := s.resets.Consume(ctx, user.Email, code)
	if err != nil {
		return fmt.Errorf("failed to check reset code: %w", err)
	}
	if !ok {
		return ErrInvalidResetCode
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
