//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"community-booking/internal/domain"
	"community-booking/internal/domain/model"
	"community-booking/internal/domain/ports/repository"
	"community-booking/internal/usecase"
)

func newLedger() (*usecase.CreditLedger, *MockCreditRepo) {
	credits := NewMockCreditRepo()
	return usecase.NewCreditLedger(credits, newTestLogger()), credits
}

func seedRecord(credits *MockCreditRepo, subscriptionID string, available, consumed int) {
	credits.Save(context.Background(), repository.NoTX, &model.CreditRecord{
		SubscriptionID: subscriptionID,
		PeriodStart:    time.Now(),
		PeriodEnd:      time.Now().AddDate(0, 1, 0),
		Available:      available,
		Consumed:       consumed,
	})
}

func TestCreditLedger_HasCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("no record means unlimited", func(t *testing.T) {
		ledger, _ := newLedger()
		ok, err := ledger.HasCredits(ctx, repository.NoTX, "sub-1")
		if err != nil || !ok {
			t.Fatalf("expected true/nil for missing record, got %v/%v", ok, err)
		}
	})

	t.Run("false when exhausted", func(t *testing.T) {
		ledger, credits := newLedger()
		seedRecord(credits, "sub-1", 0, 4)
		ok, err := ledger.HasCredits(ctx, repository.NoTX, "sub-1")
		if err != nil || ok {
			t.Fatalf("expected false/nil when exhausted, got %v/%v", ok, err)
		}
	})
}

func TestCreditLedger_ConsumeRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("consume moves a credit, restore moves it back", func(t *testing.T) {
		ledger, credits := newLedger()
		seedRecord(credits, "sub-1", 2, 3)

		if err := ledger.Consume(ctx, repository.NoTX, "sub-1", "client-1"); err != nil {
			t.Fatalf("consume failed: %v", err)
		}
		rec, _ := credits.FindBySubscription(ctx, repository.NoTX, "sub-1")
		if rec.Available != 1 || rec.Consumed != 4 {
			t.Fatalf("expected 1/4, got %d/%d", rec.Available, rec.Consumed)
		}

		if err := ledger.Restore(ctx, repository.NoTX, "sub-1", "client-1"); err != nil {
			t.Fatalf("restore failed: %v", err)
		}
		rec, _ = credits.FindBySubscription(ctx, repository.NoTX, "sub-1")
		if rec.Available != 2 || rec.Consumed != 3 {
			t.Fatalf("expected 2/3, got %d/%d", rec.Available, rec.Consumed)
		}
	})

	t.Run("sum of counters never changes", func(t *testing.T) {
		ledger, credits := newLedger()
		seedRecord(credits, "sub-1", 5, 0)

		for i := 0; i < 3; i++ {
			if err := ledger.Consume(ctx, repository.NoTX, "sub-1", "client-1"); err != nil {
				t.Fatalf("consume %d failed: %v", i, err)
			}
		}
		ledger.Restore(ctx, repository.NoTX, "sub-1", "client-1")

		rec, _ := credits.FindBySubscription(ctx, repository.NoTX, "sub-1")
		if rec.Available+rec.Consumed != 5 {
			t.Fatalf("allotment changed: %d + %d != 5", rec.Available, rec.Consumed)
		}
	})

	t.Run("consume on exhausted record fails", func(t *testing.T) {
		ledger, credits := newLedger()
		seedRecord(credits, "sub-1", 0, 4)
		if err := ledger.Consume(ctx, repository.NoTX, "sub-1", "client-1"); !errors.Is(err, domain.ErrInsufficientCredits) {
			t.Fatalf("expected ErrInsufficientCredits, got: %v", err)
		}
	})

	t.Run("consume and restore are no-ops without a record", func(t *testing.T) {
		ledger, _ := newLedger()
		if err := ledger.Consume(ctx, repository.NoTX, "sub-1", "client-1"); err != nil {
			t.Fatalf("expected nil for unlimited consume, got: %v", err)
		}
		if err := ledger.Restore(ctx, repository.NoTX, "sub-1", "client-1"); err != nil {
			t.Fatalf("expected nil for unlimited restore, got: %v", err)
		}
	})

	t.Run("restore past the allotment is swallowed", func(t *testing.T) {
		ledger, credits := newLedger()
		seedRecord(credits, "sub-1", 4, 0)
		if err := ledger.Restore(ctx, repository.NoTX, "sub-1", "client-1"); err != nil {
			t.Fatalf("expected stray restore to be swallowed, got: %v", err)
		}
		rec, _ := credits.FindBySubscription(ctx, repository.NoTX, "sub-1")
		if rec.Available != 4 || rec.Consumed != 0 {
			t.Errorf("expected counters untouched (4/0), got %d/%d", rec.Available, rec.Consumed)
		}
	})
}

func TestCreditLedger_Usage(t *testing.T) {
	ctx := context.Background()

	t.Run("reports unlimited when no record", func(t *testing.T) {
		ledger, _ := newLedger()
		u, err := ledger.Usage(ctx, "sub-1")
		if err != nil {
			t.Fatalf("usage failed: %v", err)
		}
		if !u.Unlimited {
			t.Error("expected unlimited usage")
		}
	})

	t.Run("reports counters", func(t *testing.T) {
		ledger, credits := newLedger()
		seedRecord(credits, "sub-1", 7, 5)
		u, err := ledger.Usage(ctx, "sub-1")
		if err != nil {
			t.Fatalf("usage failed: %v", err)
		}
		if u.Unlimited || u.Available != 7 || u.Consumed != 5 {
			t.Errorf("expected 7/5 limited, got %+v", u)
		}
	})
}
