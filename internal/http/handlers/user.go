package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/slangify-backend/internal/http/response"
	"github.com/yungbote/slangify-backend/internal/repos"
	"github.com/yungbote/slangify-backend/internal/services"
)

type UserHandler struct {
	userRepo      repos.UserRepo
	ledger        services.LedgerService
	avatarService services.AvatarService
}

func NewUserHandler(userRepo repos.UserRepo, ledger services.LedgerService, avatarService services.AvatarService) *UserHandler {
	return &UserHandler{userRepo: userRepo, ledger: ledger, avatarService: avatarService}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	users, err := h.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{userID})
	if err != nil || len(users) == 0 || users[0] == nil {
		response.RespondError(c, http.StatusNotFound, "user_not_found", err)
		return
	}
	credits, err := h.ledger.RemainingCredits(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err, "credits_unavailable")
		return
	}
	response.RespondOK(c, gin.H{
		"me":         users[0],
		"credits":    credits,
		"maxCredits": h.ledger.Limit(),
	})
}

// POST /api/me/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if h.avatarService == nil {
		response.RespondError(c, http.StatusNotImplemented, "avatars_disabled", nil)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "avatar_file_required", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "avatar_file_unreadable", err)
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "avatar_file_unreadable", err)
		return
	}
	if len(raw) > maxImageBytes {
		response.RespondError(c, http.StatusBadRequest, "avatar_too_large", nil)
		return
	}

	users, err := h.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{userID})
	if err != nil || len(users) == 0 || users[0] == nil {
		response.RespondError(c, http.StatusNotFound, "user_not_found", err)
		return
	}
	user := users[0]

	if err := h.avatarService.UpdateUserAvatarFromImage(c.Request.Context(), nil, user, raw); err != nil {
		response.RespondError(c, http.StatusBadRequest, "avatar_update_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"avatar_url": user.AvatarURL})
}
