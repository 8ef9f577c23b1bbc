package dtos

import "spareshop-api/models"

type RegisterInput struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is what Login returns. RefreshToken goes to the cookie only.
type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"-"`
	User         *models.User `json:"user"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}
