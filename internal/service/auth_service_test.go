package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedbacktalent/internal/entity"

	"github.com/google/uuid"
)

type staticTokenIssuer struct{}

func (staticTokenIssuer) IssueAccessToken(user entity.User, sessionID uuid.UUID) (string, time.Duration, error) {
	return "access-token", 15 * time.Minute, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeSessionRepo) {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := NewAuthService(
		users, sessions, &fakeSecurityLogRepo{},
		BcryptPasswordHasher{Cost: 4},
		staticTokenIssuer{},
		RealClock{},
		AuthConfig{},
	)
	return svc, users, sessions
}

func registerTestUser(t *testing.T, svc *AuthService, email string) {
	t.Helper()
	err := svc.Register(context.Background(), RegisterInput{
		IDNumber:  "22222222B",
		Name:      "Cleo Candidate",
		Email:     email,
		Password:  "candidate-pass",
		Role:      "candidate",
		BirthDate: time.Date(1995, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestRegisterHashesPasswordAndNormalizesEmail(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	registerTestUser(t, svc, "  Cleo@Example.COM ")

	user, err := users.FindByEmail(context.Background(), "cleo@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("user not stored under normalized email")
	}
	if user.PasswordHash == "candidate-pass" {
		t.Error("password stored in plaintext")
	}
	if !(BcryptPasswordHasher{Cost: 4}).Verify(user.PasswordHash, "candidate-pass") {
		t.Error("stored hash does not verify")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerTestUser(t, svc, "cleo@example.com")

	err := svc.Register(context.Background(), RegisterInput{
		IDNumber:  "33333333C",
		Name:      "Other",
		Email:     "cleo@example.com",
		Password:  "other-password",
		Role:      "employee",
		BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	err := svc.Register(context.Background(), RegisterInput{
		IDNumber:  "44444444D",
		Name:      "Nope",
		Email:     "nope@example.com",
		Password:  "password123",
		Role:      "admin",
		BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLoginIssuesSessionAndTokens(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerTestUser(t, svc, "cleo@example.com")

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "cleo@example.com",
		Password: "candidate-pass",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("missing tokens in login result")
	}
	if result.User == nil || result.User.Email != "cleo@example.com" {
		t.Error("login result missing user")
	}

	// Refresh token round-trips through the stored session hash.
	refreshed, err := svc.Refresh(context.Background(), result.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == result.RefreshToken {
		t.Error("refresh token was not rotated")
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerTestUser(t, svc, "cleo@example.com")

	_, errWrong := svc.Login(context.Background(), LoginInput{Email: "cleo@example.com", Password: "bad-password"})
	_, errUnknown := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "bad-password"})

	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", errWrong)
	}
	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", errUnknown)
	}
}

func TestRefreshWithRevokedSession(t *testing.T) {
	svc, _, sessions := newAuthFixture(t)
	registerTestUser(t, svc, "cleo@example.com")

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "cleo@example.com",
		Password: "candidate-pass",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	user, _ := svc.users.FindByEmail(context.Background(), "cleo@example.com")
	if err := sessions.RevokeAllByUser(context.Background(), user.ID); err != nil {
		t.Fatalf("RevokeAllByUser: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), result.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestUpdateCompanyProfile(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	err := svc.Register(context.Background(), RegisterInput{
		IDNumber:  "55555555E",
		Name:      "Acme",
		Email:     "acme@example.com",
		Password:  "company-pass",
		Role:      "company",
		BirthDate: time.Date(2001, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	company, _ := users.FindByEmail(context.Background(), "acme@example.com")

	name := "  Acme Corp  "
	description := "We hire."
	updated, err := svc.UpdateCompanyProfile(context.Background(), company.ID, UpdateCompanyProfileInput{
		Name:        &name,
		Description: &description,
	})
	if err != nil {
		t.Fatalf("UpdateCompanyProfile: %v", err)
	}
	if updated.Name != "Acme Corp" {
		t.Errorf("name = %q, want trimmed %q", updated.Name, "Acme Corp")
	}
	if updated.Description == nil || *updated.Description != "We hire." {
		t.Errorf("description = %v, want %q", updated.Description, "We hire.")
	}

	// Omitted fields stay as they are.
	other := "Now also in Berlin."
	updated, err = svc.UpdateCompanyProfile(context.Background(), company.ID, UpdateCompanyProfileInput{
		Description: &other,
	})
	if err != nil {
		t.Fatalf("UpdateCompanyProfile: %v", err)
	}
	if updated.Name != "Acme Corp" {
		t.Errorf("name = %q, want unchanged", updated.Name)
	}

	empty := "   "
	if _, err := svc.UpdateCompanyProfile(context.Background(), company.ID, UpdateCompanyProfileInput{Name: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateCompanyProfileRejectsNonCompanyRoles(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	registerTestUser(t, svc, "cleo@example.com")
	candidate, _ := users.FindByEmail(context.Background(), "cleo@example.com")

	name := "Not A Company"
	if _, err := svc.UpdateCompanyProfile(context.Background(), candidate.ID, UpdateCompanyProfileInput{Name: &name}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.UpdateCompanyProfile(context.Background(), uuid.New(), UpdateCompanyProfileInput{Name: &name}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}
}
