package repositories

import "context"

// TxFn is a unit of work run inside a transaction. Repositories called with
// the ctx it receives join the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs units of work atomically. If fn returns an error
// nothing it wrote is committed.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
