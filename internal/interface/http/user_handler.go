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

type UserHandler struct {
	Users   *application.UserService
	Emails  *application.EmailService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewUserHandler(users *application.UserService, emails *application.EmailService, cookies *helpers.CookieManager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Emails: emails, Cookies: cookies, Logger: logger}
}

// Me GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	p, err := h.Users.GetMe(c.Request.Context(), c.GetString("userEmail"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}

type editRequest struct {
	FirstName string `json:"first_name" binding:"required,personname"`
	LastName  string `json:"last_name" binding:"required,personname"`
}

// Edit PUT /api/user
func (h *UserHandler) Edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	u, err := h.Users.Edit(c.Request.Context(), c.GetString("userEmail"), req.FirstName, req.LastName)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user updated", nil)
}

type resetPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ResetPassword PATCH /api/user/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	err := h.Users.ResetPasswordByPassword(c.Request.Context(), c.GetString("userEmail"), req.OldPassword, req.NewPassword)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password updated", nil)
}

type changeEmailRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangeEmail PATCH /api/user/change-email
// The address changes immediately; a notice goes to the old one. The
// session keeps working because tokens are re-issued by the client on
// next refresh.
func (h *UserHandler) ChangeEmail(c *gin.Context) {
	var req changeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}

	ctx := c.Request.Context()
	u, oldEmail, err := h.Users.ChangeEmail(ctx, c.GetString("userEmail"), req.NewEmail, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	if err := h.Emails.SendChangeNotice(ctx, u.FirstName, oldEmail, u.Email); err != nil {
		h.Logger.WithError(err).WithField("email", oldEmail).Warn("email change notice not sent")
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
	}, "email updated", nil)
}

// SendActivateEmail POST /api/user/send-activate-email
func (h *UserHandler) SendActivateEmail(c *gin.Context) {
	if err := h.Emails.RequestVerification(c.Request.Context(), c.GetString("userEmail")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "activation email sent", nil)
}

type activateRequest struct {
	Token string `json:"token" binding:"required"`
}

// Activate POST /api/user/activate
// Consumes the token scoped to the caller's own email.
func (h *UserHandler) Activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	u, err := h.Users.ActivateAccount(c.Request.Context(), c.GetString("userEmail"), req.Token)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "account activated", nil)
}
