package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/clients/gcp"
	"github.com/yungbote/slangify-backend/internal/clients/openai"
	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("logger.New: %v", err)
	}
	return log
}

// fakeUserRepo keeps users in memory and mirrors the conditional-update
// semantics of the real debit.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	debitCalls int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*domain.User) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.users[u.ID] = u
	}
	return users, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, e := range emails {
		for _, u := range r.users {
			if u.Email == e {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateAvatar(ctx context.Context, tx *gorm.DB, userID uuid.UUID, bucketKey, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.AvatarBucketKey = bucketKey
		u.AvatarURL = url
	}
	return nil
}

func (r *fakeUserRepo) ApplyUsageDebit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, tokens int) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debitCalls++
	if tokens < 1 {
		tokens = 1
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if u.LastTokenUsageDate.IsZero() || !sameUTCDay(u.LastTokenUsageDate, now) {
		u.DailyTokenCount = tokens
	} else {
		u.DailyTokenCount += tokens
	}
	u.LastTokenUsageDate = now
	cp := *u
	return &cp, nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*domain.Conversation
	titles        map[uuid.UUID]string
}

func newFakeConversationRepo(convs ...*domain.Conversation) *fakeConversationRepo {
	r := &fakeConversationRepo{
		conversations: map[uuid.UUID]*domain.Conversation{},
		titles:        map[uuid.UUID]string{},
	}
	for _, c := range convs {
		r.conversations[c.ID] = c
	}
	return r
}

func (r *fakeConversationRepo) Create(ctx context.Context, tx *gorm.DB, convs []*domain.Conversation) ([]*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range convs {
		r.conversations[c.ID] = c
	}
	return convs, nil
}

func (r *fakeConversationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Conversation
	for _, id := range ids {
		if c, ok := r.conversations[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includeArchived bool) ([]*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Conversation
	for _, c := range r.conversations {
		if c.UserID != userID {
			continue
		}
		if !includeArchived && c.IsArchived {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeConversationRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, id uuid.UUID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[id]; ok {
		c.Title = title
	}
	r.titles[id] = title
	return nil
}

func (r *fakeConversationRepo) SetArchived(ctx context.Context, tx *gorm.DB, id uuid.UUID, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[id]; ok {
		c.IsArchived = archived
	}
	return nil
}

func (r *fakeConversationRepo) Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[id]; ok {
		c.UpdatedAt = at
	}
	return nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
	failNext bool
}

func (r *fakeMessageRepo) Create(ctx context.Context, tx *gorm.DB, msgs []*domain.Message) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return nil, fmt.Errorf("message create failed")
	}
	r.messages = append(r.messages, msgs...)
	return msgs, nil
}

func (r *fakeMessageRepo) ListByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) CountByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (int64, error) {
	msgs, _ := r.ListByConversationID(ctx, tx, conversationID, 0)
	return int64(len(msgs)), nil
}

func (r *fakeMessageRepo) byRole(role string) []*domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

type fakeUsageLogRepo struct {
	mu   sync.Mutex
	logs []*domain.UsageLog
}

func (r *fakeUsageLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*domain.UsageLog) ([]*domain.UsageLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, logs...)
	return logs, nil
}

func (r *fakeUsageLogRepo) SumSuccessfulTokensOnDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, l := range r.logs {
		if l.UserID == userID && l.Success && sameUTCDay(l.CreatedAt, day) {
			total += int64(l.TokensUsed)
		}
	}
	return total, nil
}

// fakeAI satisfies openai.Client and counts invocations so tests can assert
// the backend was or was not called.
type fakeAI struct {
	mu       sync.Mutex
	calls    int
	generate func(system, user string) (*openai.TextResult, error)
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (*openai.TextResult, error) {
	f.mu.Lock()
	f.calls++
	fn := f.generate
	f.mu.Unlock()
	if fn == nil {
		return &openai.TextResult{Text: "aight bet", InputTokens: 3, OutputTokens: 4, TotalTokens: 7}, nil
	}
	return fn(system, user)
}

func (f *fakeAI) Model() string { return "test-model" }

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeVision struct {
	result *gcp.VisionOCRResult
	err    error
	calls  int
}

func (f *fakeVision) OCRImageBytes(ctx context.Context, img []byte, mimeType string) (*gcp.VisionOCRResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeVision) Close() error { return nil }
