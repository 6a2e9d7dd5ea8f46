package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/clients/openai"
	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/apierr"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
	"github.com/yungbote/slangify-backend/internal/repos"
)

const (
	fallbackTitleMaxLen = 50
	refinedTitleMaxLen  = 60
	defaultTitle        = "New conversation"

	titlePrompt = "You write very short titles for chat conversations. Given the first " +
		"message of a conversation, reply with a title of at most six words. Reply " +
		"with the title only: no quotes, no punctuation at the end."
)

type ConversationService interface {
	// Resolve loads the caller's conversation or creates a new one when no id
	// is supplied. A conversation that does not exist and one owned by someone
	// else produce the same not-found error.
	Resolve(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conversationID *uuid.UUID, seedText string) (*domain.Conversation, bool, error)

	GetOwned(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error)
	List(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*domain.Conversation, error)
	Messages(ctx context.Context, userID, conversationID uuid.UUID, limit int) ([]*domain.Message, error)
	Rename(ctx context.Context, userID, conversationID uuid.UUID, title string) error
	// Touch bumps the conversation's updated_at so listings sort by activity.
	Touch(ctx context.Context, conversationID uuid.UUID, at time.Time) error
	SetArchived(ctx context.Context, userID, conversationID uuid.UUID, archived bool) error
	Delete(ctx context.Context, userID, conversationID uuid.UUID) error

	// RefineTitle asynchronously replaces the fallback title with a generated
	// one. Best-effort: failures and timeouts leave the fallback in place.
	RefineTitle(conversationID uuid.UUID, seedText string)
}

type conversationService struct {
	db               *gorm.DB
	log              *logger.Logger
	conversationRepo repos.ConversationRepo
	messageRepo      repos.MessageRepo
	ai               openai.Client
	titleTimeout     time.Duration
}

// NewConversationService wires the conversation resolver. ai may be nil;
// titles then keep their truncation fallback.
func NewConversationService(
	db *gorm.DB,
	log *logger.Logger,
	conversationRepo repos.ConversationRepo,
	messageRepo repos.MessageRepo,
	ai openai.Client,
	titleTimeout time.Duration,
) ConversationService {
	serviceLog := log.With("service", "ConversationService")
	if titleTimeout <= 0 {
		titleTimeout = 4 * time.Second
	}
	return &conversationService{
		db:               db,
		log:              serviceLog,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		ai:               ai,
		titleTimeout:     titleTimeout,
	}
}

func notFoundErr(conversationID uuid.UUID) error {
	return apierr.New(http.StatusNotFound, "NOT_FOUND", fmt.Errorf("conversation %s not found", conversationID))
}

// fallbackTitle truncates the seed text to the first 50 characters so that
// conversation creation never blocks on an external call.
func fallbackTitle(seedText string) string {
	seedText = strings.Join(strings.Fields(seedText), " ")
	if seedText == "" {
		return defaultTitle
	}
	runes := []rune(seedText)
	if len(runes) <= fallbackTitleMaxLen {
		return seedText
	}
	return string(runes[:fallbackTitleMaxLen])
}

func (cs *conversationService) Resolve(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conversationID *uuid.UUID, seedText string) (*domain.Conversation, bool, error) {
	if conversationID != nil && *conversationID != uuid.Nil {
		found, err := cs.conversationRepo.GetByIDs(ctx, tx, []uuid.UUID{*conversationID})
		if err != nil {
			return nil, false, fmt.Errorf("load conversation: %w", err)
		}
		if len(found) == 0 || found[0] == nil || found[0].UserID != userID {
			return nil, false, notFoundErr(*conversationID)
		}
		return found[0], false, nil
	}

	conversation := &domain.Conversation{
		ID:     uuid.New(),
		UserID: userID,
		Title:  fallbackTitle(seedText),
	}
	created, err := cs.conversationRepo.Create(ctx, tx, []*domain.Conversation{conversation})
	if err != nil {
		return nil, false, fmt.Errorf("create conversation: %w", err)
	}
	return created[0], true, nil
}

func (cs *conversationService) GetOwned(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
	found, err := cs.conversationRepo.GetByIDs(ctx, nil, []uuid.UUID{conversationID})
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if len(found) == 0 || found[0] == nil || found[0].UserID != userID {
		return nil, notFoundErr(conversationID)
	}
	return found[0], nil
}

func (cs *conversationService) List(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*domain.Conversation, error) {
	conversations, err := cs.conversationRepo.ListByUserID(ctx, nil, userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

func (cs *conversationService) Messages(ctx context.Context, userID, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	if _, err := cs.GetOwned(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	messages, err := cs.messageRepo.ListByConversationID(ctx, nil, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (cs *conversationService) Rename(ctx context.Context, userID, conversationID uuid.UUID, title string) error {
	if _, err := cs.GetOwned(ctx, userID, conversationID); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return apierr.New(http.StatusBadRequest, "INVALID_INPUT", fmt.Errorf("title must not be empty"))
	}
	if err := cs.conversationRepo.UpdateTitle(ctx, nil, conversationID, title); err != nil {
		return fmt.Errorf("rename conversation: %w", err)
	}
	return nil
}

func (cs *conversationService) Touch(ctx context.Context, conversationID uuid.UUID, at time.Time) error {
	return cs.conversationRepo.Touch(ctx, nil, conversationID, at)
}

func (cs *conversationService) SetArchived(ctx context.Context, userID, conversationID uuid.UUID, archived bool) error {
	if _, err := cs.GetOwned(ctx, userID, conversationID); err != nil {
		return err
	}
	if err := cs.conversationRepo.SetArchived(ctx, nil, conversationID, archived); err != nil {
		return fmt.Errorf("set conversation archived: %w", err)
	}
	return nil
}

func (cs *conversationService) Delete(ctx context.Context, userID, conversationID uuid.UUID) error {
	if _, err := cs.GetOwned(ctx, userID, conversationID); err != nil {
		return err
	}
	if err := cs.conversationRepo.Delete(ctx, nil, conversationID); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

func (cs *conversationService) RefineTitle(conversationID uuid.UUID, seedText string) {
	if cs.ai == nil || strings.TrimSpace(seedText) == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cs.titleTimeout)
		defer cancel()

		out, err := cs.ai.GenerateText(ctx, titlePrompt, seedText)
		if err != nil {
			cs.log.Debug("Title refinement skipped", "conversation_id", conversationID, "error", err)
			return
		}

		title := strings.Trim(strings.TrimSpace(out.Text), `"'`)
		title = strings.Join(strings.Fields(title), " ")
		if title == "" {
			return
		}
		runes := []rune(title)
		if len(runes) > refinedTitleMaxLen {
			title = string(runes[:refinedTitleMaxLen])
		}

		if err := cs.conversationRepo.UpdateTitle(ctx, nil, conversationID, title); err != nil {
			cs.log.Debug("Title refinement write failed", "conversation_id", conversationID, "error", err)
		}
	}()
}
