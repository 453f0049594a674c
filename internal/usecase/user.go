package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/logger"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/security"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden indicates the actor may not perform the operation on
	// the target resource.
	ErrForbidden = errors.New("operation not allowed for this actor")
)

// UserService manages account provisioning and profile maintenance.
// Account deletion is not offered here; deactivation via update is the
// supported path.
type UserService struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	policy port.PasswordPolicyValidator
	events port.EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(
	users port.UserRepository,
	hasher port.PasswordHasher,
	policy port.PasswordPolicyValidator,
	events port.EventPublisher,
	log *zap.Logger,
) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		policy: policy,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateUserInput captures the payload for provisioning an account.
type CreateUserInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
	UserType        string
	Language        string
	Timezone        string
}

// CreateUser provisions a new account. Field violations come back as a
// ValidationError keyed by input field.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error) {
	verr := &ValidationError{}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		verr.Add("email", i18n.CodeFieldRequired)
	}
	if input.Password == "" {
		verr.Add("password", i18n.CodeFieldRequired)
	}

	if input.Password != input.PasswordConfirm {
		verr.Add("password2", i18n.CodePasswordsDoNotMatch)
	}

	if input.Password != "" {
		if err := s.policy.Validate(input.Password); err != nil {
			verr.Add("password", passwordCode(err))
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	// Email uniqueness is case-insensitive; the unique index backs this
	// lookup against races.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, NewFieldError("email", i18n.CodeEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	language := i18n.NormalizeLanguage(input.Language)
	if language == "" {
		language = "es"
	}
	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		UserType:     domain.ParseUserType(input.UserType),
		PasswordHash: hash,
		// Setting a password always marks the flag, including the initial
		// credential set here.
		PasswordChanged: true,
		Language:        language,
		Timezone:        timezone,
		IsActive:        true,
		DateJoined:      s.now().UTC(),
	}
	user.ApplyTypeFlags()

	s.logPasswordStrength(user.ID, input.Password, email)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewFieldError("email", i18n.CodeEmailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		event := domain.UserCreatedEvent{
			UserID:    user.ID,
			Email:     user.Email,
			UserType:  user.UserType,
			CreatedBy: actor.ID,
			CreatedAt: user.DateJoined,
		}
		if err := s.events.PublishUserCreated(ctx, event); err != nil {
			s.log.Warn("publish user created event", zap.Error(err))
		}
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.String("created_by", actor.ID),
	)

	return &user, nil
}

// ListUsers returns users matching the filter.
func (s *UserService) ListUsers(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	return s.users.List(ctx, filter)
}

// GetUser retrieves a single user.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// UpdateUserInput carries optional profile changes; nil fields keep the
// stored value.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	UserType  *string
	Language  *string
	Timezone  *string
	IsActive  *bool
}

// UpdateUser applies profile changes to an existing account.
func (s *UserService) UpdateUser(ctx context.Context, actor domain.Actor, userID string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, NewFieldError("email", i18n.CodeFieldRequired)
		}
		user.Email = email
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.UserType != nil {
		user.UserType = domain.ParseUserType(*input.UserType)
		user.ApplyTypeFlags()
	}
	if input.Language != nil {
		language := i18n.NormalizeLanguage(*input.Language)
		if language == "" {
			return nil, NewFieldError("language", i18n.CodeFieldRequired)
		}
		user.Language = language
	}
	if input.Timezone != nil {
		user.Timezone = strings.TrimSpace(*input.Timezone)
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewFieldError("email", i18n.CodeEmailTaken)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info("user updated",
		zap.String("user_id", user.ID),
		zap.String("updated_by", actor.ID),
	)

	return user, nil
}

// ChangePasswordInput captures a credential change request.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword replaces the target user's credential. When the actor
// changes their own password the current one must be presented; an
// administrator changing someone else's skips that check.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Actor, targetUserID string, input ChangePasswordInput) error {
	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	verr := &ValidationError{}

	if input.NewPassword == "" {
		verr.Add("new_password", i18n.CodeFieldRequired)
	}
	if input.ConfirmPassword == "" {
		verr.Add("confirm_password", i18n.CodeFieldRequired)
	}
	if verr.HasErrors() {
		return verr
	}

	if actor.Is(target.ID) {
		if input.CurrentPassword == "" {
			return NewFieldError("current_password", i18n.CodeInvalidCurrentPassword)
		}
		ok, err := s.hasher.Verify(input.CurrentPassword, target.PasswordHash)
		if err != nil {
			return fmt.Errorf("verify current password: %w", err)
		}
		if !ok {
			return NewFieldError("current_password", i18n.CodeInvalidCurrentPassword)
		}
	}

	if input.NewPassword != input.ConfirmPassword {
		return NewFieldError("confirm_new_password", i18n.CodePasswordsDoNotMatch)
	}

	if err := s.policy.Validate(input.NewPassword); err != nil {
		return NewFieldError("new_password", passwordCode(err))
	}

	s.logPasswordStrength(target.ID, input.NewPassword, target.Email)

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, target.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			UserID:    target.ID,
			ChangedBy: actor.ID,
			ChangedAt: s.now().UTC(),
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.log.Warn("publish password changed event", zap.Error(err))
		}
	}

	s.log.Info("password changed",
		zap.String("user_id", target.ID),
		zap.String("changed_by", actor.ID),
	)

	return nil
}

// ChangeLanguage switches the interface language. Users may only change
// their own; there is no administrative override.
func (s *UserService) ChangeLanguage(ctx context.Context, actor domain.Actor, targetUserID, language string) (*domain.User, error) {
	if !actor.Is(targetUserID) {
		return nil, ErrForbidden
	}

	normalized := i18n.NormalizeLanguage(language)
	if normalized == "" {
		return nil, NewFieldError("language", i18n.CodeFieldRequired)
	}

	user, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.users.UpdateLanguage(ctx, user.ID, normalized); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update language: %w", err)
	}

	user.Language = normalized
	return user, nil
}

// TouchActivity records request activity metadata for the user. Failures
// are logged and swallowed; activity tracking never affects a request.
func (s *UserService) TouchActivity(ctx context.Context, userID string, ip *string) {
	if err := s.users.TouchActivity(ctx, userID, s.now().UTC(), ip); err != nil {
		s.log.Warn("touch user activity", zap.String("user_id", userID), zap.Error(err))
	}
}

// advisoryStrengthScore is the zxcvbn score below which an accepted
// password is logged as weak. Advisory only: the hard policy is the rule
// set in the validator.
const advisoryStrengthScore = 3

func (s *UserService) logPasswordStrength(userID, password string, userInputs ...string) {
	if score := security.PasswordStrengthScore(password, userInputs...); score < advisoryStrengthScore {
		s.log.Warn("accepted password scores below advisory strength",
			zap.String("user_id", userID),
			zap.Int("zxcvbn_score", score),
		)
	}
}

func passwordCode(err error) i18n.Code {
	var violation *security.PasswordValidationError
	if errors.As(err, &violation) {
		return i18n.Code(violation.Code)
	}
	return i18n.CodeBadRequest
}
