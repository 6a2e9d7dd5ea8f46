package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/clients/gcp"
	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/apierr"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
	"github.com/yungbote/slangify-backend/internal/repos"
)

const generationApologyReply = "Sorry, I couldn't come up with a translation right now. Give it another shot in a moment."

// TranslateRequest is the resolved inbound payload: the image is already
// decoded from its transport encoding.
type TranslateRequest struct {
	Text           string
	ImageData      []byte
	ImageMimeType  string
	Model          string
	ConversationID *uuid.UUID
}

type TranslateResult struct {
	Text                string    `json:"text"`
	Credits             int       `json:"credits"`
	MaxCredits          int       `json:"maxCredits"`
	ConversationID      uuid.UUID `json:"conversationId"`
	ConversationTitle   string    `json:"conversationTitle"`
	ConversationCreated bool      `json:"conversationCreated"`
	MessageID           uuid.UUID `json:"messageId"`
	TokensUsed          int       `json:"tokensUsed"`
	FromImage           bool      `json:"fromImage"`
}

// TranslateService runs the full pipeline for one inbound chat message:
// quota gate, input validation, conversation resolution, optional image
// extraction, persona generation, persistence, usage logging and the final
// atomic credit debit. Everything before the quota gate fails fast with no
// side effects; everything from generation onward degrades instead of
// aborting the exchange.
type TranslateService interface {
	Translate(ctx context.Context, userID uuid.UUID, req *TranslateRequest) (*TranslateResult, error)
}

type translateService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	messageRepo   repos.MessageRepo
	usageLogRepo  repos.UsageLogRepo
	conversations ConversationService
	ledger        LedgerService
	extraction    ExtractionService
	generation    GenerationService
	bucket        gcp.Bucket
}

func NewTranslateService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	messageRepo repos.MessageRepo,
	usageLogRepo repos.UsageLogRepo,
	conversations ConversationService,
	ledger LedgerService,
	extraction ExtractionService,
	generation GenerationService,
	bucket gcp.Bucket,
) TranslateService {
	serviceLog := log.With("service", "TranslateService")
	return &translateService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		messageRepo:   messageRepo,
		usageLogRepo:  usageLogRepo,
		conversations: conversations,
		ledger:        ledger,
		extraction:    extraction,
		generation:    generation,
		bucket:        bucket,
	}
}

func (ts *translateService) Translate(ctx context.Context, userID uuid.UUID, req *TranslateRequest) (*TranslateResult, error) {
	if req == nil {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_INPUT", fmt.Errorf("empty request"))
	}
	now := time.Now().UTC()

	users, err := ts.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, apierr.New(http.StatusUnauthorized, "UNAUTHORIZED", fmt.Errorf("user %s not found", userID))
	}
	user := users[0]

	// Quota gate sits before any costed or persisted work. The check is
	// advisory; the debit at the end is the atomic enforcement point.
	quota := ts.ledger.CheckQuota(user, now)
	if quota.Remaining <= 0 {
		return nil, apierr.New(http.StatusTooManyRequests, "QUOTA_EXCEEDED", fmt.Errorf("daily token limit reached"))
	}

	text := strings.TrimSpace(req.Text)
	hasImage := len(req.ImageData) > 0
	if text == "" && !hasImage {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_INPUT", fmt.Errorf("request must contain text or an image"))
	}

	conversation, created, err := ts.conversations.Resolve(ctx, nil, userID, req.ConversationID, text)
	if err != nil {
		return nil, err
	}

	input := ExtractionInput{Text: text}
	var imageURL string
	if hasImage {
		imageURL = ts.storeImage(ctx, conversation.ID, req.ImageData, req.ImageMimeType)
		input = ts.extraction.ResolveInput(ctx, text, req.ImageData, req.ImageMimeType)
	}

	// User input is durable before generation is attempted.
	userContent := text
	if userContent == "" {
		userContent = "[Image]"
	}
	userMessage := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		Role:           domain.RoleUser,
		Content:        userContent,
		ImageURL:       imageURL,
	}
	if _, err := ts.messageRepo.Create(ctx, nil, []*domain.Message{userMessage}); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	gen := ts.generation.Generate(ctx, req.Model, input.Text)
	assistantText := gen.Text
	if !gen.Success {
		assistantText = generationApologyReply
		ts.log.Warn("Generation degraded to apology reply",
			"user_id", userID,
			"conversation_id", conversation.ID,
			"persona", gen.Persona,
			"error", gen.ErrorMessage,
		)
	}

	assistantMessage := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		Role:           domain.RoleAssistant,
		Content:        assistantText,
		Model:          gen.Persona,
		TokensUsed:     gen.TokensUsed,
	}
	usageLog := &domain.UsageLog{
		ID:           uuid.New(),
		UserID:       userID,
		MessageID:    &assistantMessage.ID,
		Model:        gen.Persona,
		TokensUsed:   gen.TokensUsed,
		Success:      gen.Success,
		ErrorMessage: gen.ErrorMessage,
		Usage:        usageDetail(gen, input),
	}

	var remaining int
	if err := ts.withTransaction(ctx, func(tx *gorm.DB) error {
		if _, mErr := ts.messageRepo.Create(ctx, tx, []*domain.Message{assistantMessage}); mErr != nil {
			return fmt.Errorf("persist assistant message: %w", mErr)
		}
		if _, lErr := ts.usageLogRepo.Create(ctx, tx, []*domain.UsageLog{usageLog}); lErr != nil {
			return fmt.Errorf("persist usage log: %w", lErr)
		}
		// Debit last, once the exchange it pays for is recorded.
		debited, dErr := ts.ledger.Debit(ctx, tx, userID, now, gen.TokensUsed)
		if dErr != nil {
			return dErr
		}
		remaining = debited
		return nil
	}); err != nil {
		return nil, err
	}

	if tErr := ts.conversations.Touch(ctx, conversation.ID, now); tErr != nil {
		ts.log.Debug("Conversation touch failed", "conversation_id", conversation.ID, "error", tErr)
	}

	if created {
		ts.conversations.RefineTitle(conversation.ID, input.Text)
	}

	return &TranslateResult{
		Text:                assistantText,
		Credits:             remaining,
		MaxCredits:          ts.ledger.Limit(),
		ConversationID:      conversation.ID,
		ConversationTitle:   conversation.Title,
		ConversationCreated: created,
		MessageID:           assistantMessage.ID,
		TokensUsed:          gen.TokensUsed,
		FromImage:           input.FromImage,
	}, nil
}

func (ts *translateService) withTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if ts.db == nil {
		return fn(nil)
	}
	return ts.db.WithContext(ctx).Transaction(fn)
}

// storeImage is best-effort: a failed upload leaves the message without an
// image URL but never fails the exchange.
func (ts *translateService) storeImage(ctx context.Context, conversationID uuid.UUID, data []byte, mimeType string) string {
	if ts.bucket == nil {
		return ""
	}
	ext := "bin"
	switch mimeType {
	case "image/png":
		ext = "png"
	case "image/jpeg", "image/jpg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	case "image/gif":
		ext = "gif"
	}
	key := fmt.Sprintf("chat_image/%s/%d.%s", conversationID.String(), time.Now().UnixNano(), ext)
	url, err := ts.bucket.Upload(ctx, key, data, mimeType)
	if err != nil {
		ts.log.Warn("Chat image upload failed (ignored)", "conversation_id", conversationID, "error", err)
		return ""
	}
	return url
}

func usageDetail(gen *GenerationResult, input ExtractionInput) datatypes.JSON {
	detail := map[string]interface{}{
		"persona":       gen.Persona,
		"backend_model": gen.BackendModel,
		"input_tokens":  gen.InputTokens,
		"output_tokens": gen.OutputTokens,
		"total_tokens":  gen.TokensUsed,
		"from_image":    input.FromImage,
	}
	if input.Degraded {
		detail["extraction_degraded"] = true
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
