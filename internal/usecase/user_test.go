package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/security"
)

func newUserServiceFixture() (*UserService, *userRepoMock, *publisherMock) {
	users := &userRepoMock{}
	events := &publisherMock{}
	service := NewUserService(
		users,
		hasherMock{},
		security.NewDefaultPasswordValidator(),
		events,
		zap.NewNop(),
	)
	return service, users, events
}

var admin = domain.Actor{ID: "admin-1", Email: "root@example.com", UserType: domain.UserTypeAdmin}

func TestUserService_CreateUser(t *testing.T) {
	service, users, events := newUserServiceFixture()

	user, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Email:           "  Ana.Lopez@Example.COM ",
		Password:        "Sup3r$ecret",
		PasswordConfirm: "Sup3r$ecret",
		FirstName:       "Ana",
		LastName:        "Lopez",
		UserType:        "staff",
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.Email != "ana.lopez@example.com" {
		t.Fatalf("email not normalised: %q", user.Email)
	}
	if user.UserType != domain.UserTypeStaff || !user.IsStaff || user.IsSuperuser {
		t.Fatalf("type flags not derived: %+v", user)
	}
	if user.Language != "es" || user.Timezone != "UTC" {
		t.Fatalf("defaults not applied: lang=%q tz=%q", user.Language, user.Timezone)
	}
	if !user.IsActive {
		t.Fatal("new accounts start active")
	}
	if !user.PasswordChanged {
		t.Fatal("setting the initial password must mark password_changed")
	}
	if _, ok := users.users[user.ID]; !ok {
		t.Fatal("user was not persisted")
	}
	if len(events.userCreated) != 1 || events.userCreated[0].CreatedBy != admin.ID {
		t.Fatalf("user-created event missing or misattributed: %+v", events.userCreated)
	}
}

func TestUserService_WeakPasswordLoggedAsAdvisory(t *testing.T) {
	core, observed := observer.New(zap.WarnLevel)
	users := &userRepoMock{}
	service := NewUserService(
		users,
		hasherMock{},
		security.NewDefaultPasswordValidator(),
		&publisherMock{},
		zap.New(core),
	)

	// Satisfies every character rule but is a guessable dictionary
	// variation; accepted, logged as weak.
	_, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Email:           "ana@example.com",
		Password:        "Passw0rd!",
		PasswordConfirm: "Passw0rd!",
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	entries := observed.FilterMessage("accepted password scores below advisory strength").All()
	if len(entries) != 1 {
		t.Fatalf("expected one advisory log entry, got %d", len(entries))
	}
	score, ok := entries[0].ContextMap()["zxcvbn_score"].(int64)
	if !ok || score >= advisoryStrengthScore {
		t.Fatalf("expected advisory score below %d, got %v", advisoryStrengthScore, score)
	}
}

func TestUserService_CreateUserAggregatesFieldErrors(t *testing.T) {
	service, _, _ := newUserServiceFixture()

	_, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Email:           "",
		Password:        "short",
		PasswordConfirm: "different",
	})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if codes := verr.Fields["email"]; len(codes) != 1 || codes[0] != i18n.CodeFieldRequired {
		t.Fatalf("email codes = %v", codes)
	}
	if codes := verr.Fields["password2"]; len(codes) != 1 || codes[0] != i18n.CodePasswordsDoNotMatch {
		t.Fatalf("password2 codes = %v", codes)
	}
	if codes := verr.Fields["password"]; len(codes) != 1 || codes[0] != i18n.CodePasswordTooShort {
		t.Fatalf("password codes = %v", codes)
	}
}

func TestUserService_CreateUserDuplicateEmailCaseInsensitive(t *testing.T) {
	service, users, _ := newUserServiceFixture()
	users.put(domain.User{ID: "user-1", Email: "ana@example.com"})

	_, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Email:           "ANA@example.com",
		Password:        "Sup3r$ecret",
		PasswordConfirm: "Sup3r$ecret",
	})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if codes := verr.Fields["email"]; len(codes) != 1 || codes[0] != i18n.CodeEmailTaken {
		t.Fatalf("email codes = %v", codes)
	}
}

func TestUserService_UpdateUserPartialFields(t *testing.T) {
	service, users, _ := newUserServiceFixture()
	users.put(domain.User{
		ID: "user-1", Email: "ana@example.com", FirstName: "Ana", LastName: "Lopez",
		UserType: domain.UserTypeUser, Language: "es", Timezone: "UTC", IsActive: true,
	})

	newFirst := "Anita"
	inactive := false
	updated, err := service.UpdateUser(context.Background(), admin, "user-1", UpdateUserInput{
		FirstName: &newFirst,
		IsActive:  &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if updated.FirstName != "Anita" || updated.IsActive {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.LastName != "Lopez" || updated.Email != "ana@example.com" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestUserService_ChangePasswordSelfRequiresCurrent(t *testing.T) {
	service, users, events := newUserServiceFixture()
	users.put(domain.User{ID: "user-1", Email: "ana@example.com", PasswordHash: "hash:OldPass1!", IsActive: true})
	self := domain.Actor{ID: "user-1", UserType: domain.UserTypeUser}

	err := service.ChangePassword(context.Background(), self, "user-1", ChangePasswordInput{
		NewPassword:     "N3wSecret$",
		ConfirmPassword: "N3wSecret$",
	})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if codes := verr.Fields["current_password"]; len(codes) != 1 || codes[0] != i18n.CodeInvalidCurrentPassword {
		t.Fatalf("current_password codes = %v", codes)
	}

	err = service.ChangePassword(context.Background(), self, "user-1", ChangePasswordInput{
		CurrentPassword: "wrong",
		NewPassword:     "N3wSecret$",
		ConfirmPassword: "N3wSecret$",
	})
	if verr, ok = AsValidationError(err); !ok || len(verr.Fields["current_password"]) != 1 {
		t.Fatalf("wrong current password: got %v", err)
	}

	err = service.ChangePassword(context.Background(), self, "user-1", ChangePasswordInput{
		CurrentPassword: "OldPass1!",
		NewPassword:     "N3wSecret$",
		ConfirmPassword: "N3wSecret$",
	})
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if got := users.users["user-1"].PasswordHash; got != "hash:N3wSecret$" {
		t.Fatalf("password hash not updated: %q", got)
	}
	if !users.users["user-1"].PasswordChanged {
		t.Fatal("password_changed flag not raised")
	}
	if len(events.passwordChanged) != 1 {
		t.Fatalf("expected one password-changed event, have %d", len(events.passwordChanged))
	}
}

func TestUserService_ChangePasswordByAdminSkipsCurrent(t *testing.T) {
	service, users, _ := newUserServiceFixture()
	users.put(domain.User{ID: "user-1", Email: "ana@example.com", PasswordHash: "hash:OldPass1!", IsActive: true})

	err := service.ChangePassword(context.Background(), admin, "user-1", ChangePasswordInput{
		NewPassword:     "N3wSecret$",
		ConfirmPassword: "N3wSecret$",
	})
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
}

func TestUserService_ChangePasswordMismatchAndPolicy(t *testing.T) {
	service, users, _ := newUserServiceFixture()
	users.put(domain.User{ID: "user-1", Email: "ana@example.com", PasswordHash: "hash:OldPass1!", IsActive: true})

	err := service.ChangePassword(context.Background(), admin, "user-1", ChangePasswordInput{
		NewPassword:     "N3wSecret$",
		ConfirmPassword: "Other$ecret1",
	})
	verr, ok := AsValidationError(err)
	if !ok || len(verr.Fields["confirm_new_password"]) != 1 {
		t.Fatalf("mismatch: got %v", err)
	}

	err = service.ChangePassword(context.Background(), admin, "user-1", ChangePasswordInput{
		NewPassword:     "alllowercase1!",
		ConfirmPassword: "alllowercase1!",
	})
	verr, ok = AsValidationError(err)
	if !ok {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if codes := verr.Fields["new_password"]; len(codes) != 1 || codes[0] != i18n.CodePasswordNoUppercase {
		t.Fatalf("new_password codes = %v", codes)
	}
}

func TestUserService_ChangeLanguageSelfOnly(t *testing.T) {
	service, users, _ := newUserServiceFixture()
	users.put(domain.User{ID: "user-1", Email: "ana@example.com", Language: "es", IsActive: true})

	if _, err := service.ChangeLanguage(context.Background(), admin, "user-1", "en"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other actor: got %v, want ErrForbidden", err)
	}

	self := domain.Actor{ID: "user-1", UserType: domain.UserTypeUser}
	if _, err := service.ChangeLanguage(context.Background(), self, "user-1", "klingon"); err == nil {
		t.Fatal("unsupported language must fail")
	}

	user, err := service.ChangeLanguage(context.Background(), self, "user-1", "en-US")
	if err != nil {
		t.Fatalf("ChangeLanguage returned error: %v", err)
	}
	if user.Language != "en" {
		t.Fatalf("language = %q, want en", user.Language)
	}
	if users.users["user-1"].Language != "en" {
		t.Fatal("language not persisted")
	}
}

func TestUserService_TouchActivitySwallowsErrors(t *testing.T) {
	service, users, _ := newUserServiceFixture()
	users.put(domain.User{ID: "user-1", Email: "ana@example.com", IsActive: true})

	ip := "203.0.113.9"
	service.TouchActivity(context.Background(), "user-1", &ip)
	if users.touched != 1 {
		t.Fatalf("touched = %d, want 1", users.touched)
	}
	if got := users.users["user-1"]; got.LastActivity == nil || got.LastIP == nil || *got.LastIP != ip {
		t.Fatalf("activity metadata not recorded: %+v", got)
	}

	users.touchErr = errors.New("db down")
	service.TouchActivity(context.Background(), "user-1", &ip)
}

func TestUserService_GetUserNotFound(t *testing.T) {
	service, _, _ := newUserServiceFixture()

	if _, err := service.GetUser(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
	if err := service.ChangePassword(context.Background(), admin, "ghost", ChangePasswordInput{
		NewPassword: "N3wSecret$", ConfirmPassword: "N3wSecret$",
	}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}
