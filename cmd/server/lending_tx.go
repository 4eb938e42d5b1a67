package main

import (
	"context"
	"database/sql"
	"time"

	lendingservice "creditline/internal/lending/service"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
	"creditline/pkg/platform/tx"
)

// customerLocker takes the row lock that serializes a customer's originations.
type customerLocker interface {
	LockForUpdate(ctx context.Context, customerID id.CustomerID) error
}

// lendingPostgresTx runs a lending unit in one database transaction. The
// customer row is locked first, so concurrent originations for the same
// customer queue behind each other while others proceed.
type lendingPostgresTx struct {
	db      *sql.DB
	locker  customerLocker
	timeout time.Duration
}

func newLendingPostgresTx(db *sql.DB, locker customerLocker, timeout time.Duration) *lendingPostgresTx {
	return &lendingPostgresTx{db: db, locker: locker, timeout: timeout}
}

func (t *lendingPostgresTx) RunInTx(ctx context.Context, customerID id.CustomerID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	ctx, cancel := lendingservice.WithTxTimeout(ctx, t.timeout)
	defer cancel()

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	txCtx := tx.WithTx(ctx, sqlTx)
	if err := t.locker.LockForUpdate(txCtx, customerID); err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		return err
	}
	return sqlTx.Commit()
}
