package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"replier/internal/application"
	"replier/pkg/helpers"
	"replier/pkg/response"
	"replier/pkg/validation"
)

type AuthHandler struct {
	Users   *application.UserService
	Emails  *application.EmailService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewAuthHandler(users *application.UserService, emails *application.EmailService, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Emails: emails, Cookies: cookies, Logger: logger}
}

type signupRequest struct {
	FirstName string `json:"first_name" binding:"required,personname"`
	LastName  string `json:"last_name" binding:"required,personname"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
}

// Signup POST /api/auth/signup
// Creates an unverified account and sends the activation email.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	u, err := h.Users.Signup(c.Request.Context(), application.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	if err := h.Emails.RequestVerification(c.Request.Context(), u.Email); err != nil {
		h.Logger.WithError(err).WithField("email", u.Email).Warn("verification email not sent on signup")
	}

	response.Success(c, http.StatusCreated, u, "user created", nil)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
// Unverified accounts may log in; doing so re-sends the activation
// email.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	ctx := c.Request.Context()
	u, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	if !u.IsVerified {
		if err := h.Emails.RequestVerification(ctx, u.Email); err != nil {
			respondError(c, h.Logger, err)
			return
		}
	}

	pair, err := h.Users.IssueTokens(ctx, u)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)

	response.Success(c, http.StatusOK, gin.H{
		"user":         u,
		"access_token": pair.AccessToken,
	}, "login successful", nil)
}

type recoverInitRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RecoverInit POST /api/auth/recover/init
// Issues a recovery token and mails the reset link.
func (h *AuthHandler) RecoverInit(c *gin.Context) {
	var req recoverInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	if err := h.Emails.RequestPasswordRecovery(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "recovery email sent", nil)
}

type recoverConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// RecoverConfirm POST /api/auth/recover/confirm
// Sets a new password using the recovery token alone; the token is
// consumed on success.
func (h *AuthHandler) RecoverConfirm(c *gin.Context) {
	var req recoverConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	if err := h.Users.RecoverPasswordByToken(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password updated", nil)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh POST /api/auth/refresh
// Rotates the token pair using the refresh cookie or body field.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie("refresh_token")
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	pair, err := h.Users.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"access_token": pair.AccessToken}, "token refreshed", nil)
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Users.Logout(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}
