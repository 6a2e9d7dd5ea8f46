package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/clients/redis"
	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/apierr"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
	"github.com/yungbote/slangify-backend/internal/repos"
)

// QuotaStatus is the advisory result of a pre-debit quota read. The debit
// itself re-evaluates the new-period decision atomically in the store, so this
// status is only good for fast-fail gating and display.
type QuotaStatus struct {
	Remaining   int
	IsNewPeriod bool
	Limit       int
}

type LedgerService interface {
	// CheckQuota computes remaining credits from an already-loaded user row.
	// Pure read, never mutates state.
	CheckQuota(user *domain.User, now time.Time) QuotaStatus

	// Debit applies the one state mutation of the ledger and returns the
	// remaining credits after it, floored at 0.
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, tokens int) (int, error)

	// RemainingCredits reads remaining credits for display, serving from the
	// advisory cache when possible.
	RemainingCredits(ctx context.Context, userID uuid.UUID) (int, error)

	Limit() int
}

type ledgerService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	creditsCache redis.CreditsCache
	dailyLimit   int
}

// NewLedgerService wires the credit ledger. creditsCache may be nil; the
// ledger then reads postgres on every display query.
func NewLedgerService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	creditsCache redis.CreditsCache,
	dailyLimit int,
) LedgerService {
	serviceLog := log.With("service", "LedgerService")
	if dailyLimit <= 0 {
		dailyLimit = 50000
	}
	return &ledgerService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		creditsCache: creditsCache,
		dailyLimit:   dailyLimit,
	}
}

func (ls *ledgerService) Limit() int {
	return ls.dailyLimit
}

func sameUTCDay(a, b time.Time) bool {
	au := a.UTC()
	bu := b.UTC()
	ay, am, ad := au.Date()
	by, bm, bd := bu.Date()
	return ay == by && am == bm && ad == bd
}

func (ls *ledgerService) CheckQuota(user *domain.User, now time.Time) QuotaStatus {
	status := QuotaStatus{Limit: ls.dailyLimit}
	if user == nil {
		status.IsNewPeriod = true
		status.Remaining = ls.dailyLimit
		return status
	}
	if user.LastTokenUsageDate.IsZero() || !sameUTCDay(user.LastTokenUsageDate, now) {
		// New period: the stored count is logically zero. Nothing is written
		// here; the reset happens inside the debit statement.
		status.IsNewPeriod = true
		status.Remaining = ls.dailyLimit
		return status
	}
	remaining := ls.dailyLimit - user.DailyTokenCount
	if remaining < 0 {
		remaining = 0
	}
	status.Remaining = remaining
	return status
}

func (ls *ledgerService) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, tokens int) (int, error) {
	updated, err := ls.userRepo.ApplyUsageDebit(ctx, tx, userID, now, tokens)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, apierr.New(http.StatusUnauthorized, "UNAUTHORIZED", fmt.Errorf("debit for unknown user %s", userID))
		}
		return 0, fmt.Errorf("apply usage debit: %w", err)
	}

	remaining := ls.dailyLimit - updated.DailyTokenCount
	if remaining < 0 {
		remaining = 0
	}

	if ls.creditsCache != nil {
		ls.creditsCache.Set(ctx, userID, remaining)
	}
	return remaining, nil
}

func (ls *ledgerService) RemainingCredits(ctx context.Context, userID uuid.UUID) (int, error) {
	if ls.creditsCache != nil {
		if remaining, ok := ls.creditsCache.Get(ctx, userID); ok {
			return remaining, nil
		}
	}

	users, err := ls.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return 0, fmt.Errorf("load user for credits: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return 0, apierr.New(http.StatusNotFound, "NOT_FOUND", fmt.Errorf("user %s not found", userID))
	}

	remaining := ls.CheckQuota(users[0], time.Now().UTC()).Remaining
	if ls.creditsCache != nil {
		ls.creditsCache.Set(ctx, userID, remaining)
	}
	return remaining, nil
}
