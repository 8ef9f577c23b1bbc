package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spareshop-api/dtos"
	"spareshop-api/models"
	"spareshop-api/utils/apperror"
	"spareshop-api/utils/token"
)

func newTestAuth(t *testing.T) (*authService, *gorm.DB, *token.Manager) {
	t.Helper()
	db := newTestDB(t)
	tokens := token.NewManager("access-secret", "refresh-secret", 30*time.Minute, 24*time.Hour)
	svc := NewAuthService(db, tokens).(*authService)
	svc.cost = bcrypt.MinCost
	return svc, db, tokens
}

// flipSignature changes one character inside the signature segment.
func flipSignature(tok string) string {
	b := []byte(tok)
	i := len(b) - 10
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func storedToken(t *testing.T, db *gorm.DB, id uint) *string {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u.RefreshToken
}

func TestRegister(t *testing.T) {
	svc, db, _ := newTestAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, dtos.RegisterInput{Email: " Budi@Example.com ", Username: "budi", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))

	_, err = svc.Register(ctx, dtos.RegisterInput{Email: "budi@example.com", Username: "other", Password: "secret123"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input dtos.RegisterInput
		msg   string
	}{
		{"missing email", dtos.RegisterInput{Username: "u", Password: "secret123"}, "email is required"},
		{"bad email", dtos.RegisterInput{Email: "nope", Username: "u", Password: "secret123"}, "email is not valid"},
		{"missing username", dtos.RegisterInput{Email: "a@b.co", Password: "secret123"}, "username is required"},
		{"short password", dtos.RegisterInput{Email: "a@b.co", Username: "u", Password: "short"}, "password must be at least 8 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation))
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestLoginIssuesTokens(t *testing.T) {
	svc, db, tokens := newTestAuth(t)
	ctx := context.Background()
	u := seedUser(t, db, "budi@example.com", models.RoleCustomer)

	resp, err := svc.Login(ctx, dtos.LoginInput{Email: "budi@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, u.ID, resp.User.ID)

	claims, err := tokens.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	stored := storedToken(t, db, u.ID)
	require.NotNil(t, stored)
	assert.Equal(t, resp.RefreshToken, *stored)
}

func TestLoginWrongPasswordLeavesTokenUntouched(t *testing.T) {
	svc, db, _ := newTestAuth(t)
	ctx := context.Background()
	u := seedUser(t, db, "budi@example.com", models.RoleCustomer)

	first, err := svc.Login(ctx, dtos.LoginInput{Email: "budi@example.com", Password: "password123"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, dtos.LoginInput{Email: "budi@example.com", Password: "wrong-password"})
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrAuth))
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())

	stored := storedToken(t, db, u.ID)
	require.NotNil(t, stored)
	assert.Equal(t, first.RefreshToken, *stored)

	_, err = svc.Login(ctx, dtos.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, apperror.ErrAuth))
}

func TestRefresh(t *testing.T) {
	svc, db, tokens := newTestAuth(t)
	ctx := context.Background()
	u := seedUser(t, db, "budi@example.com", models.RoleCustomer)

	login, err := svc.Login(ctx, dtos.LoginInput{Email: "budi@example.com", Password: "password123"})
	require.NoError(t, err)

	// role changes are picked up from the database
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).Update("role", models.RoleAdmin).Error)

	resp, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	claims, err := tokens.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestRefreshRejections(t *testing.T) {
	svc, db, tokens := newTestAuth(t)
	ctx := context.Background()
	u := seedUser(t, db, "budi@example.com", models.RoleCustomer)

	login, err := svc.Login(ctx, dtos.LoginInput{Email: "budi@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, "")
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	resp, err := svc.Refresh(ctx, flipSignature(login.RefreshToken))
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "tampered signature")

	// validly signed but not the one on record
	other, err := tokens.GenerateRefreshToken(u.ID)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, other)
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "stale token")

	ghost, err := tokens.GenerateRefreshToken(9999)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, ghost)
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "unknown user")

	access, err := tokens.GenerateAccessToken(u.ID, u.Email, u.Username, u.Role)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, access)
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "access token presented as refresh token")
}

func TestLogout(t *testing.T) {
	svc, db, _ := newTestAuth(t)
	ctx := context.Background()
	u := seedUser(t, db, "budi@example.com", models.RoleCustomer)
	other := seedUser(t, db, "siti@example.com", models.RoleCustomer)

	login, err := svc.Login(ctx, dtos.LoginInput{Email: u.Email, Password: "password123"})
	require.NoError(t, err)
	otherLogin, err := svc.Login(ctx, dtos.LoginInput{Email: other.Email, Password: "password123"})
	require.NoError(t, err)

	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "garbage"))
	assert.NotNil(t, storedToken(t, db, u.ID))

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
	assert.Nil(t, storedToken(t, db, u.ID))
	assert.NotNil(t, storedToken(t, db, other.ID), "other sessions are kept")

	// second logout is a no-op
	assert.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = svc.Refresh(ctx, otherLogin.RefreshToken)
	assert.NoError(t, err)
}
