package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/slangify-backend/internal/http/response"
	"github.com/yungbote/slangify-backend/internal/platform/apierr"
	"github.com/yungbote/slangify-backend/internal/platform/ctxutil"
	"github.com/yungbote/slangify-backend/internal/services"
)

// Inline images above ~8MB are rejected before any pipeline work.
const maxImageBytes = 8 << 20

type TranslateHandler struct {
	translate services.TranslateService
	ledger    services.LedgerService
}

func NewTranslateHandler(translate services.TranslateService, ledger services.LedgerService) *TranslateHandler {
	return &TranslateHandler{translate: translate, ledger: ledger}
}

type translateRequest struct {
	Text           string     `json:"text"`
	Image          string     `json:"image"`
	ImageMimeType  string     `json:"image_mime_type"`
	Model          string     `json:"model"`
	ConversationID *uuid.UUID `json:"conversation_id"`
}

// POST /api/translate
func (h *TranslateHandler) Translate(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	imageData, mimeType, err := decodeInlineImage(req.Image, req.ImageMimeType)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_image", err)
		return
	}

	result, err := h.translate.Translate(c.Request.Context(), rd.UserID, &services.TranslateRequest{
		Text:           req.Text,
		ImageData:      imageData,
		ImageMimeType:  mimeType,
		Model:          req.Model,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		// The quota response carries the balance so clients can render the
		// meter without a follow-up request.
		var ae *apierr.Error
		if errors.As(err, &ae) && ae.Status == http.StatusTooManyRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      gin.H{"message": ae.Err.Error(), "code": ae.Code},
				"credits":    0,
				"maxCredits": h.ledger.Limit(),
			})
			return
		}
		response.RespondServiceError(c, err, "translate_failed")
		return
	}
	response.RespondOK(c, result)
}

// GET /api/personas
func (h *TranslateHandler) Personas(c *gin.Context) {
	var personas []gin.H
	for _, name := range services.PersonaNames() {
		p := services.LookupPersona(name)
		personas = append(personas, gin.H{"name": p.Name, "display_name": p.DisplayName})
	}
	response.RespondOK(c, gin.H{"personas": personas, "default": services.DefaultPersona})
}

// decodeInlineImage accepts a raw base64 payload or a data URL and returns the
// decoded bytes plus the effective mime type.
func decodeInlineImage(payload, mimeType string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", nil
	}

	if strings.HasPrefix(payload, "data:") {
		// data:image/png;base64,....
		if idx := strings.Index(payload, ","); idx > 0 {
			header := payload[5:idx]
			if semi := strings.Index(header, ";"); semi > 0 {
				mimeType = header[:semi]
			}
			payload = payload[idx+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
