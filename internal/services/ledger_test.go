package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/slangify-backend/internal/domain"
)

func TestCheckQuota(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ledger := NewLedgerService(nil, testLogger(t), newFakeUserRepo(), nil, 50000)

	cases := []struct {
		name          string
		user          *domain.User
		wantRemaining int
		wantNewPeriod bool
	}{
		{
			name:          "fresh_user_never_used",
			user:          &domain.User{},
			wantRemaining: 50000,
			wantNewPeriod: true,
		},
		{
			name: "same_day_partial_use",
			user: &domain.User{
				DailyTokenCount:    1200,
				LastTokenUsageDate: now.Add(-2 * time.Hour),
			},
			wantRemaining: 48800,
		},
		{
			name: "previous_day_resets",
			user: &domain.User{
				DailyTokenCount:    49999,
				LastTokenUsageDate: now.AddDate(0, 0, -1),
			},
			wantRemaining: 50000,
			wantNewPeriod: true,
		},
		{
			name: "overshoot_floors_at_zero",
			user: &domain.User{
				DailyTokenCount:    50499,
				LastTokenUsageDate: now.Add(-time.Minute),
			},
			wantRemaining: 0,
		},
		{
			name: "exactly_at_limit",
			user: &domain.User{
				DailyTokenCount:    50000,
				LastTokenUsageDate: now.Add(-time.Minute),
			},
			wantRemaining: 0,
		},
		{
			name: "same_instant_in_other_zone_is_same_utc_day",
			user: &domain.User{
				DailyTokenCount:    100,
				LastTokenUsageDate: now.In(time.FixedZone("UTC+9", 9*3600)),
			},
			wantRemaining: 49900,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := ledger.CheckQuota(tc.user, now)
			if status.Remaining != tc.wantRemaining {
				t.Fatalf("Remaining = %d, want %d", status.Remaining, tc.wantRemaining)
			}
			if status.IsNewPeriod != tc.wantNewPeriod {
				t.Fatalf("IsNewPeriod = %v, want %v", status.IsNewPeriod, tc.wantNewPeriod)
			}
			if status.Limit != 50000 {
				t.Fatalf("Limit = %d, want 50000", status.Limit)
			}
		})
	}
}

func TestDebitSameDayAccumulates(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	user := &domain.User{
		ID:                 uuid.New(),
		DailyTokenCount:    100,
		LastTokenUsageDate: now.Add(-time.Hour),
	}
	userRepo := newFakeUserRepo(user)
	ledger := NewLedgerService(nil, testLogger(t), userRepo, nil, 50000)

	remaining, err := ledger.Debit(context.Background(), nil, user.ID, now, 400)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if remaining != 49500 {
		t.Fatalf("remaining = %d, want 49500", remaining)
	}
}

func TestDebitNewDayResetsBeforeAdding(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 30, 0, time.UTC)
	user := &domain.User{
		ID:                 uuid.New(),
		DailyTokenCount:    49999,
		LastTokenUsageDate: now.AddDate(0, 0, -1),
	}
	userRepo := newFakeUserRepo(user)
	ledger := NewLedgerService(nil, testLogger(t), userRepo, nil, 50000)

	remaining, err := ledger.Debit(context.Background(), nil, user.ID, now, 250)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if remaining != 49750 {
		t.Fatalf("remaining = %d, want 49750 (yesterday's count must not carry over)", remaining)
	}
}

func TestDebitNeverReturnsNegative(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	user := &domain.User{
		ID:                 uuid.New(),
		DailyTokenCount:    49999,
		LastTokenUsageDate: now.Add(-time.Minute),
	}
	userRepo := newFakeUserRepo(user)
	ledger := NewLedgerService(nil, testLogger(t), userRepo, nil, 50000)

	remaining, err := ledger.Debit(context.Background(), nil, user.ID, now, 500)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0 (floored, never negative)", remaining)
	}
}

func TestDebitUnknownUser(t *testing.T) {
	ledger := NewLedgerService(nil, testLogger(t), newFakeUserRepo(), nil, 50000)
	if _, err := ledger.Debit(context.Background(), nil, uuid.New(), time.Now().UTC(), 10); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
