package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager provides a thin abstraction to execute a function within a
// database transaction, passing the underlying transaction handle via `tx`.
//
// RATIONALE
// - Keeps use-case interfaces clean (no transaction types leaking out).
// - Repository methods that accept a Tx can detect one (implementation-side)
//   and run SELECT ... FOR UPDATE / use tx-bound Exec/Query as needed.
// - Works across storage backends as long as they can provide a tx handle.
//
// Every check-then-act sequence in admission control (check capacity → insert,
// check credit → decrement) runs inside one WithTx call; guards are re-read
// after the row lock is held, never from a pre-transaction snapshot.
//
// The concrete type of `tx` is infra-defined (pgx.Tx for Postgres).
// Repositories MUST gracefully accept a nil tx (non-transactional path).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
