package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"replier/internal/application"
	"replier/pkg/response"
	"replier/pkg/validation"
)

type BotHandler struct {
	Bots   *application.BotService
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewBotHandler(bots *application.BotService, users *application.UserService, logger *logrus.Logger) *BotHandler {
	return &BotHandler{Bots: bots, Users: users, Logger: logger}
}

// List GET /api/bot
func (h *BotHandler) List(c *gin.Context) {
	out, err := h.Bots.GetBots(c.Request.Context(), c.GetString("userEmail"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "bots", nil)
}

type createBotRequest struct {
	InstagramURL string `json:"instagram_url" binding:"required,url"`
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	DefaultReply string `json:"default_reply"`
}

// Create POST /api/bot
func (h *BotHandler) Create(c *gin.Context) {
	var req createBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	b, err := h.Bots.CreateBot(c.Request.Context(), c.GetString("userEmail"), application.CreateBotInput{
		InstagramURL: req.InstagramURL,
		Username:     req.Username,
		Password:     req.Password,
		DefaultReply: req.DefaultReply,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, b, "bot created", nil)
}

type botActiveRequest struct {
	BotID    string `json:"bot_id" binding:"required,uuid"`
	IsActive *bool  `json:"is_active" binding:"required"`
}

// ChangeActive PATCH /api/bot/active
func (h *BotHandler) ChangeActive(c *gin.Context) {
	var req botActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	b, err := h.Bots.ChangeBotActive(c.Request.Context(), c.GetString("userEmail"), req.BotID, *req.IsActive)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "bot updated", nil)
}

type botCredentialsRequest struct {
	BotID    string `json:"bot_id" binding:"required,uuid"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangeCredentials PATCH /api/bot/credentials
func (h *BotHandler) ChangeCredentials(c *gin.Context) {
	var req botCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	b, err := h.Bots.ChangeCredentials(c.Request.Context(), c.GetString("userEmail"), req.BotID, req.Username, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "credentials updated", nil)
}

type defaultReplyRequest struct {
	BotID        string `json:"bot_id" binding:"required,uuid"`
	DefaultReply string `json:"default_reply" binding:"required"`
}

// EditDefaultReply PUT /api/bot/default-reply
func (h *BotHandler) EditDefaultReply(c *gin.Context) {
	var req defaultReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	b, err := h.Bots.EditDefaultReply(c.Request.Context(), c.GetString("userEmail"), req.BotID, req.DefaultReply)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "default reply updated", nil)
}

type botIDRequest struct {
	BotID string `json:"bot_id" binding:"required,uuid"`
}

// Delete DELETE /api/bot
// Removes the bot together with its replies and moderator relations.
func (h *BotHandler) Delete(c *gin.Context) {
	var req botIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	b, err := h.Bots.DeleteBot(c.Request.Context(), c.GetString("userEmail"), req.BotID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "bot deleted", nil)
}

// Replies GET /api/bot/replies?bot_id=&page_num=&page_size=
func (h *BotHandler) Replies(c *gin.Context) {
	botID := c.Query("bot_id")
	if botID == "" {
		response.Error[any](c, http.StatusBadRequest, "validation failed", map[string]string{"bot_id": "bot_id is required"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page_num", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	out, err := h.Bots.GetRepliesByBot(c.Request.Context(), c.GetString("userEmail"), botID, page, size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "replies", nil)
}

type addReplyRequest struct {
	BotID    string   `json:"bot_id" binding:"required,uuid"`
	Keywords []string `json:"keywords" binding:"required,min=1,dive,required"`
	Answer   string   `json:"answer" binding:"required"`
}

// AddReply POST /api/bot/reply
func (h *BotHandler) AddReply(c *gin.Context) {
	var req addReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	r, err := h.Bots.AddReply(c.Request.Context(), c.GetString("userEmail"), req.BotID, application.ReplyInput{
		Keywords: normalizeKeywords(req.Keywords),
		Answer:   req.Answer,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, r, "reply created", nil)
}

type editReplyRequest struct {
	BotID    string   `json:"bot_id" binding:"required,uuid"`
	ReplyID  string   `json:"reply_id" binding:"required,uuid"`
	Keywords []string `json:"keywords" binding:"required,min=1,dive,required"`
	Answer   string   `json:"answer" binding:"required"`
}

// EditReply PATCH /api/bot/reply
func (h *BotHandler) EditReply(c *gin.Context) {
	var req editReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	r, err := h.Bots.EditReply(c.Request.Context(), c.GetString("userEmail"), req.BotID, req.ReplyID, application.ReplyInput{
		Keywords: normalizeKeywords(req.Keywords),
		Answer:   req.Answer,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, r, "reply updated", nil)
}

type replyActiveRequest struct {
	BotID    string `json:"bot_id" binding:"required,uuid"`
	ReplyID  string `json:"reply_id" binding:"required,uuid"`
	IsActive *bool  `json:"is_active" binding:"required"`
}

// ChangeReplyActive PATCH /api/bot/reply/active
func (h *BotHandler) ChangeReplyActive(c *gin.Context) {
	var req replyActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	r, err := h.Bots.ChangeReplyActive(c.Request.Context(), c.GetString("userEmail"), req.BotID, req.ReplyID, *req.IsActive)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, r, "reply updated", nil)
}

type deleteReplyRequest struct {
	BotID   string `json:"bot_id" binding:"required,uuid"`
	ReplyID string `json:"reply_id" binding:"required,uuid"`
}

// DeleteReply DELETE /api/bot/reply
func (h *BotHandler) DeleteReply(c *gin.Context) {
	var req deleteReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	r, err := h.Bots.DeleteReply(c.Request.Context(), c.GetString("userEmail"), req.BotID, req.ReplyID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, r, "reply deleted", nil)
}

type inviteModeratorRequest struct {
	BotID string `json:"bot_id" binding:"required,uuid"`
	Email string `json:"email" binding:"required,email"`
}

// InviteModerator PATCH /api/bot/invite-moderator
func (h *BotHandler) InviteModerator(c *gin.Context) {
	var req inviteModeratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	b, mods, err := h.Bots.InviteModerator(c.Request.Context(), c.GetString("userEmail"), req.BotID, req.Email)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bot": b, "moderators": mods}, "moderator invited", nil)
}

type removeModeratorRequest struct {
	BotID       string `json:"bot_id" binding:"required,uuid"`
	ModeratorID string `json:"moderator_id" binding:"required,uuid"`
}

// RemoveModerator PATCH /api/bot/remove-moderator
func (h *BotHandler) RemoveModerator(c *gin.Context) {
	var req removeModeratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	b, mods, err := h.Bots.RemoveModerator(c.Request.Context(), c.GetString("userEmail"), req.BotID, req.ModeratorID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bot": b, "moderators": mods}, "moderator removed", nil)
}

// SearchUsers GET /api/bot/search-users?q=&size=
// Elasticsearch-backed lookup for moderator invites.
func (h *BotHandler) SearchUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "validation failed", map[string]string{"q": "q is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Users.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "users", nil)
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
