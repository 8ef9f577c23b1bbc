package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spareshop-api/dtos"
	"spareshop-api/models"
	"spareshop-api/utils/apperror"
	"spareshop-api/utils/token"
)

type AuthService interface {
	Register(ctx context.Context, input dtos.RegisterInput) (*models.User, error)
	Login(ctx context.Context, input dtos.LoginInput) (*dtos.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dtos.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	db       *gorm.DB
	tokens   *token.Manager
	validate *validator.Validate
	cost     int
}

func NewAuthService(db *gorm.DB, tokens *token.Manager) AuthService {
	return &authService{
		db:       db,
		tokens:   tokens,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
	}
}

type registerRules struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,max=100"`
	Password string `validate:"required,min=8"`
}

func (s *authService) Register(ctx context.Context, input dtos.RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)

	if err := s.validate.Struct(registerRules(input)); err != nil {
		return nil, validationError(err)
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	user := models.User{
		Email:    input.Email,
		Username: input.Username,
		Password: string(hash),
		Role:     models.RoleCustomer,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, err
	}
	return &user, nil
}

func (s *authService) Login(ctx context.Context, input dtos.LoginInput) (*dtos.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindAuth, "invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, apperror.New(apperror.KindAuth, "invalid credentials")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		return nil, apperror.Internal(err, "failed to generate token")
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to generate token")
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("refresh_token", refreshToken).Error; err != nil {
		return nil, err
	}

	return &dtos.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	}, nil
}

// Refresh issues a new access token. The user is resolved from the verified
// token claims and the stored token must match the presented one.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dtos.TokenResponse, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthorized("refresh token required")
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindForbidden, err, "invalid refresh token")
	}

	user, err := s.userWithToken(ctx, claims.UserID, refreshToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Forbidden("invalid refresh token")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		return nil, apperror.Internal(err, "failed to generate token")
	}
	return &dtos.TokenResponse{AccessToken: accessToken}, nil
}

// Logout clears the stored refresh token. Unknown or foreign tokens are ignored.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokens.ParseRefreshTokenIgnoringExpiry(refreshToken)
	if err != nil {
		return nil
	}

	user, err := s.userWithToken(ctx, claims.UserID, refreshToken)
	if err != nil || user == nil {
		return err
	}

	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", user.ID, refreshToken).
		Update("refresh_token", nil).Error
}

// userWithToken returns the user only when its stored refresh token equals presented.
func (s *authService) userWithToken(ctx context.Context, userID uint, presented string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		return nil, nil
	}
	return &user, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation("invalid input")
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperror.Validation("%s is required", field)
	case "email":
		return apperror.Validation("email is not valid")
	case "min":
		return apperror.Validation("%s must be at least %s characters", field, fe.Param())
	case "max":
		return apperror.Validation("%s must be at most %s characters", field, fe.Param())
	}
	return apperror.Validation("%s is not valid", field)
}
