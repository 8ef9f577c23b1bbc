package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spareshop-api/dtos"
	"spareshop-api/services"
	"spareshop-api/utils/response"
)

const RefreshCookieName = "refreshToken"

type AuthController struct {
	auth         services.AuthService
	refreshTTL   time.Duration
	secureCookie bool
}

func NewAuthController(auth services.AuthService, refreshTTL time.Duration, secureCookie bool) *AuthController {
	return &AuthController{auth: auth, refreshTTL: refreshTTL, secureCookie: secureCookie}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input dtos.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "registration successful", user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input dtos.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	resp, err := ac.auth.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	ac.setRefreshCookie(c, resp.RefreshToken, int(ac.refreshTTL.Seconds()))
	c.JSON(http.StatusOK, resp)
}

// Token exchanges the refresh cookie for a new access token.
func (ac *AuthController) Token(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshCookieName)

	resp, err := ac.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ac *AuthController) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshCookieName)

	if err := ac.auth.Logout(c.Request.Context(), refreshToken); err != nil {
		response.Error(c, err)
		return
	}

	ac.setRefreshCookie(c, "", -1)
	response.OK(c, "logged out", nil)
}

func (ac *AuthController) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookieName, value, maxAge, "/", "", ac.secureCookie, true)
}
