package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/whitfield-edu/engagement-api/internal/models"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
)

type mockAuthDirectory struct {
	users     map[string]models.User
	updateErr error
	updated   map[string]string
}

func (m *mockAuthDirectory) FindUser(id string) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

func (m *mockAuthDirectory) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updated == nil {
		m.updated = make(map[string]string)
	}
	m.updated[userID] = hash
	return nil
}

func newAuthService(t *testing.T, users ...models.User) (*AuthService, *mockAuthDirectory) {
	t.Helper()
	directory := &mockAuthDirectory{users: map[string]models.User{}}
	for _, u := range users {
		directory.users[u.ID] = u
	}
	svc := NewAuthService(directory, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "engagement-api",
	})
	return svc, directory
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, _ := newAuthService(t, models.User{
		ID: "S1", Name: "Student A", PasswordHash: hashPassword(t, "pass1"),
		Role: models.RoleStudent, SupervisorID: "PS1",
	})

	res, err := svc.Login(context.Background(), models.LoginRequest{ID: "S1", Password: "pass1"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "S1", res.User.ID)
	assert.Equal(t, models.RoleStudent, res.User.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "S1", claims.UserID)
	assert.Equal(t, "PS1", claims.SupervisorID)
	assert.Equal(t, "engagement-api", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t, models.User{
		ID: "S1", PasswordHash: hashPassword(t, "pass1"), Role: models.RoleStudent,
	})

	_, err := svc.Login(context.Background(), models.LoginRequest{ID: "S1", Password: "nope"})

	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginUnknownUserLooksLikeBadPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{ID: "ghost", Password: "whatever"})

	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	assert.False(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAuthServiceLoginValidatesPayload(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{ID: "", Password: ""})

	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, directory := newAuthService(t, models.User{
		ID: "S1", PasswordHash: hashPassword(t, "oldpass"), Role: models.RoleStudent,
	})

	err := svc.ChangePassword(context.Background(), "S1", models.ChangePasswordRequest{
		OldPassword: "oldpass", NewPassword: "newpass",
	})

	require.NoError(t, err)
	require.Contains(t, directory.updated, "S1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(directory.updated["S1"]), []byte("newpass")))
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	svc, directory := newAuthService(t, models.User{
		ID: "S1", PasswordHash: hashPassword(t, "oldpass"), Role: models.RoleStudent,
	})

	err := svc.ChangePassword(context.Background(), "S1", models.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "newpass",
	})

	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, directory.updated)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.ValidateToken("not.a.token")

	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, _ := newAuthService(t, models.User{
		ID: "S1", PasswordHash: hashPassword(t, "pass1"), Role: models.RoleStudent,
	})
	res, err := svc.Login(context.Background(), models.LoginRequest{ID: "S1", Password: "pass1"})
	require.NoError(t, err)

	other := NewAuthService(&mockAuthDirectory{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different",
		AccessTokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(res.AccessToken)

	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
