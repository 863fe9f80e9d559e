package repository

import (
	"context"

	"community-booking/internal/domain/model"
)

// CreditRecordRepository is the port for per-subscription credit counters.
//
// FindBySubscriptionForUpdate must acquire a row lock when called inside a
// transaction so two concurrent consumers cannot both observe Available==1.
type CreditRecordRepository interface {
	Save(ctx context.Context, tx Tx, rec *model.CreditRecord) error
	FindBySubscription(ctx context.Context, tx Tx, subscriptionID string) (*model.CreditRecord, error)
	FindBySubscriptionForUpdate(ctx context.Context, tx Tx, subscriptionID string) (*model.CreditRecord, error)

	// TotalRemaining sums Available over all records (stats/metrics).
	TotalRemaining(ctx context.Context, tx Tx) (int64, error)
}
