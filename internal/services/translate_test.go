package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/slangify-backend/internal/clients/gcp"
	"github.com/yungbote/slangify-backend/internal/clients/openai"
	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/apierr"
)

type translateHarness struct {
	svc          TranslateService
	userRepo     *fakeUserRepo
	convRepo     *fakeConversationRepo
	messageRepo  *fakeMessageRepo
	usageLogRepo *fakeUsageLogRepo
	ai           *fakeAI
	vision       *fakeVision
}

func newTranslateHarness(t *testing.T, user *domain.User, ai *fakeAI, vision *fakeVision) *translateHarness {
	t.Helper()
	log := testLogger(t)

	if ai == nil {
		ai = &fakeAI{}
	}
	if vision == nil {
		vision = &fakeVision{}
	}

	userRepo := newFakeUserRepo(user)
	convRepo := newFakeConversationRepo()
	messageRepo := &fakeMessageRepo{}
	usageLogRepo := &fakeUsageLogRepo{}

	ledger := NewLedgerService(nil, log, userRepo, nil, 50000)
	extraction := NewExtractionService(log, vision, time.Second)
	generation := NewGenerationService(log, ai, time.Second)
	conversations := NewConversationService(nil, log, convRepo, messageRepo, nil, time.Second)

	svc := NewTranslateService(
		nil, log,
		userRepo, messageRepo, usageLogRepo,
		conversations, ledger, extraction, generation,
		nil,
	)
	return &translateHarness{
		svc:          svc,
		userRepo:     userRepo,
		convRepo:     convRepo,
		messageRepo:  messageRepo,
		usageLogRepo: usageLogRepo,
		ai:           ai,
		vision:       vision,
	}
}

func TestTranslateNewUserFirstMessage(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "a@b.c"}
	ai := &fakeAI{generate: func(system, userMsg string) (*openai.TextResult, error) {
		return &openai.TextResult{Text: "yo whaddup", TotalTokens: 42}, nil
	}}
	h := newTranslateHarness(t, user, ai, nil)

	res, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if !res.ConversationCreated {
		t.Fatal("conversation not created")
	}
	if res.ConversationTitle != "hello" {
		t.Fatalf("title = %q, want derived from text", res.ConversationTitle)
	}
	if res.Text != "yo whaddup" {
		t.Fatalf("Text = %q", res.Text)
	}
	if res.TokensUsed != 42 {
		t.Fatalf("TokensUsed = %d, want 42", res.TokensUsed)
	}
	if res.Credits != 50000-42 {
		t.Fatalf("Credits = %d, want %d", res.Credits, 50000-42)
	}
	if res.MaxCredits != 50000 {
		t.Fatalf("MaxCredits = %d", res.MaxCredits)
	}

	userMsgs := h.messageRepo.byRole(domain.RoleUser)
	if len(userMsgs) != 1 || userMsgs[0].Content != "hello" {
		t.Fatalf("user messages = %+v", userMsgs)
	}
	assistantMsgs := h.messageRepo.byRole(domain.RoleAssistant)
	if len(assistantMsgs) != 1 || assistantMsgs[0].Content == "" {
		t.Fatalf("assistant messages = %+v", assistantMsgs)
	}
	if assistantMsgs[0].TokensUsed < 1 {
		t.Fatalf("assistant TokensUsed = %d, want >= 1", assistantMsgs[0].TokensUsed)
	}
	if res.MessageID != assistantMsgs[0].ID {
		t.Fatal("MessageID does not point at the assistant message")
	}

	if len(h.usageLogRepo.logs) != 1 {
		t.Fatalf("usage logs = %d, want 1", len(h.usageLogRepo.logs))
	}
	ul := h.usageLogRepo.logs[0]
	if !ul.Success || ul.TokensUsed != 42 || ul.MessageID == nil || *ul.MessageID != assistantMsgs[0].ID {
		t.Fatalf("usage log = %+v", ul)
	}
}

func TestTranslateQuotaGateBlocksBeforeAnyWork(t *testing.T) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:                 uuid.New(),
		DailyTokenCount:    50000,
		LastTokenUsageDate: now,
	}
	h := newTranslateHarness(t, user, nil, nil)

	_, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{Text: "hello"})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 429 || ae.Code != "QUOTA_EXCEEDED" {
		t.Fatalf("err = %v, want 429 QUOTA_EXCEEDED", err)
	}

	// Fail-fast with zero side effects: no backend call, no rows, no debit.
	if h.ai.callCount() != 0 {
		t.Fatalf("generation backend called %d times", h.ai.callCount())
	}
	if len(h.messageRepo.messages) != 0 {
		t.Fatalf("messages persisted: %d", len(h.messageRepo.messages))
	}
	if len(h.usageLogRepo.logs) != 0 {
		t.Fatalf("usage logs persisted: %d", len(h.usageLogRepo.logs))
	}
	if h.userRepo.debitCalls != 0 {
		t.Fatalf("debit called %d times", h.userRepo.debitCalls)
	}
	if len(h.convRepo.conversations) != 0 {
		t.Fatalf("conversation created despite quota rejection")
	}
}

func TestTranslateOvershootFloorsCreditsAtZero(t *testing.T) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:                 uuid.New(),
		DailyTokenCount:    49999,
		LastTokenUsageDate: now,
	}
	ai := &fakeAI{generate: func(system, userMsg string) (*openai.TextResult, error) {
		return &openai.TextResult{Text: "big answer", TotalTokens: 500}, nil
	}}
	h := newTranslateHarness(t, user, ai, nil)

	res, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Credits != 0 {
		t.Fatalf("Credits = %d, want 0 (floored)", res.Credits)
	}

	// The losing request still completes, and the counter converges past the
	// limit rather than losing the increment.
	users, _ := h.userRepo.GetByIDs(context.Background(), nil, []uuid.UUID{user.ID})
	if users[0].DailyTokenCount != 50499 {
		t.Fatalf("DailyTokenCount = %d, want 50499", users[0].DailyTokenCount)
	}
}

func TestTranslateRejectsEmptyInput(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	h := newTranslateHarness(t, user, nil, nil)

	_, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{Text: "   "})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "INVALID_INPUT" {
		t.Fatalf("err = %v, want 400 INVALID_INPUT", err)
	}
	if len(h.messageRepo.messages) != 0 || len(h.convRepo.conversations) != 0 {
		t.Fatal("validation failure left rows behind")
	}
}

func TestTranslateUnknownUser(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	h := newTranslateHarness(t, user, nil, nil)

	_, err := h.svc.Translate(context.Background(), uuid.New(), &TranslateRequest{Text: "hi"})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 401 {
		t.Fatalf("err = %v, want 401", err)
	}
}

func TestTranslateUnknownConversation(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	h := newTranslateHarness(t, user, nil, nil)

	otherID := uuid.New()
	_, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{Text: "hi", ConversationID: &otherID})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestTranslateGenerationFailureDegradesToApology(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	ai := &fakeAI{generate: func(system, userMsg string) (*openai.TextResult, error) {
		return nil, fmt.Errorf("provider outage")
	}}
	h := newTranslateHarness(t, user, ai, nil)

	res, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("Translate must not fail on backend outage: %v", err)
	}
	if res.Text != generationApologyReply {
		t.Fatalf("Text = %q, want apology", res.Text)
	}
	if res.TokensUsed != 1 {
		t.Fatalf("TokensUsed = %d, want nominal 1", res.TokensUsed)
	}

	// The user's turn and the failed attempt are both on record.
	if len(h.messageRepo.byRole(domain.RoleUser)) != 1 {
		t.Fatal("user message not persisted")
	}
	assistant := h.messageRepo.byRole(domain.RoleAssistant)
	if len(assistant) != 1 || assistant[0].Content != generationApologyReply {
		t.Fatalf("assistant messages = %+v", assistant)
	}
	if len(h.usageLogRepo.logs) != 1 {
		t.Fatalf("usage logs = %d, want 1", len(h.usageLogRepo.logs))
	}
	ul := h.usageLogRepo.logs[0]
	if ul.Success {
		t.Fatal("usage log marked success for failed generation")
	}
	if ul.ErrorMessage == "" {
		t.Fatal("usage log missing error message")
	}
	if h.userRepo.debitCalls != 1 {
		t.Fatalf("debit calls = %d, want 1 (failed exchanges are still accounted)", h.userRepo.debitCalls)
	}
}

func TestTranslateImageOnlyExtractionFailure(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	var seenInput string
	ai := &fakeAI{generate: func(system, userMsg string) (*openai.TextResult, error) {
		seenInput = userMsg
		return &openai.TextResult{Text: "translated anyway", TotalTokens: 9}, nil
	}}
	vision := &fakeVision{err: fmt.Errorf("ocr unreachable")}
	h := newTranslateHarness(t, user, ai, vision)

	res, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{
		ImageData:     []byte{0xFF, 0xD8},
		ImageMimeType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("Translate must survive extraction failure: %v", err)
	}
	if seenInput != "Error processing image" {
		t.Fatalf("generation input = %q, want extraction fallback", seenInput)
	}
	if res.Text != "translated anyway" {
		t.Fatalf("Text = %q", res.Text)
	}

	userMsgs := h.messageRepo.byRole(domain.RoleUser)
	if len(userMsgs) != 1 || userMsgs[0].Content != "[Image]" {
		t.Fatalf("user messages = %+v, want [Image] placeholder", userMsgs)
	}
}

func TestTranslateImageExtractionSuccessRecordsProvenance(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	vision := &fakeVision{result: &gcp.VisionOCRResult{PrimaryText: "extracted sentence"}}
	h := newTranslateHarness(t, user, nil, vision)

	res, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{
		ImageData:     []byte{0x1},
		ImageMimeType: "image/png",
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !res.FromImage {
		t.Fatal("FromImage = false for successful extraction")
	}
}

func TestTranslateUsesExistingConversation(t *testing.T) {
	user := &domain.User{ID: uuid.New()}
	h := newTranslateHarness(t, user, nil, nil)
	existing := &domain.Conversation{ID: uuid.New(), UserID: user.ID, Title: "ongoing"}
	h.convRepo.Create(context.Background(), nil, []*domain.Conversation{existing})

	res, err := h.svc.Translate(context.Background(), user.ID, &TranslateRequest{Text: "more", ConversationID: &existing.ID})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.ConversationCreated {
		t.Fatal("created = true for existing conversation")
	}
	if res.ConversationID != existing.ID {
		t.Fatalf("ConversationID = %s, want %s", res.ConversationID, existing.ID)
	}
}
