package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/coffee-store-api/internal/model"
)

// pendingOp is one staged write. Ops run in staging order during a
// flush and report the rows they affected.
type pendingOp func(ctx context.Context, q Queryer) (int64, error)

// UnitOfWork binds one persistence session to a fixed set of
// repositories, one per entity type, and owns the transaction
// boundary they share. A unit of work is scoped to a single logical
// operation: create it, use it, Close it; it must not be reused
// after Close and is not safe for concurrent use.
//
// Writes staged through the repositories are applied by SaveChanges
// as one atomic flush. Multi-entity writes that must be atomic with
// intermediate reads (an order header plus its lines) wrap the whole
// sequence in BeginTransaction / CommitTransaction instead.
type UnitOfWork struct {
	db      *sql.DB
	tx      *sql.Tx
	pending []pendingOp
	closed  bool

	Categories    *Repository[model.Category]
	Products      *Repository[model.Product]
	Orders        *Repository[model.Order]
	OrderDetails  *Repository[model.OrderDetail]
	Payments      *Repository[model.Payment]
	Users         *Repository[model.User]
	RefreshTokens *Repository[model.RefreshToken]
}

// New returns a unit of work over the given pool. The pool itself is
// shared; each unit of work only owns its staged writes and any
// transaction it opens.
func New(db *sql.DB) *UnitOfWork {
	u := &UnitOfWork{db: db}
	u.Categories = newRepository(u, categoryMapper)
	u.Products = newRepository(u, productMapper)
	u.Orders = newRepository(u, orderMapper)
	u.OrderDetails = newRepository(u, orderDetailMapper)
	u.Payments = newRepository(u, paymentMapper)
	u.Users = newRepository(u, userMapper)
	u.RefreshTokens = newRepository(u, refreshTokenMapper)
	return u
}

// session returns the open transaction when there is one, otherwise
// the pool, so reads made inside a transaction observe its writes.
func (u *UnitOfWork) session() Queryer {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWork) stage(op pendingOp) {
	u.pending = append(u.pending, op)
}

// SaveChanges applies every staged write atomically and returns the
// total affected row count. Outside an explicit transaction the
// flush runs in its own short transaction; inside one it executes on
// the open transaction and remains uncommitted until
// CommitTransaction. Staged work is cleared only on success.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	if u.closed {
		return 0, ErrClosed
	}
	if len(u.pending) == 0 {
		return 0, nil
	}
	if u.tx != nil {
		n, err := u.flush(ctx, u.tx)
		if err != nil {
			return 0, err
		}
		u.pending = nil
		return n, nil
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTxFailed, err)
	}
	n, err := u.flush(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%w: %v", ErrTxFailed, err)
	}
	u.pending = nil
	return n, nil
}

func (u *UnitOfWork) flush(ctx context.Context, q Queryer) (int, error) {
	total := 0
	for _, op := range u.pending {
		n, err := op(ctx, q)
		if err != nil {
			return 0, err
		}
		total += int(n)
	}
	return total, nil
}

// BeginTransaction opens an explicit transaction scope. Calling it
// again before commit or rollback fails fast with ErrTxOpen.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	if u.closed {
		return ErrClosed
	}
	if u.tx != nil {
		return ErrTxOpen
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTxFailed, err)
	}
	u.tx = tx
	return nil
}

// CommitTransaction flushes pending writes on the open transaction
// and commits it. On flush or commit failure the transaction is
// rolled back and the original error propagates.
func (u *UnitOfWork) CommitTransaction(ctx context.Context) error {
	if u.closed {
		return ErrClosed
	}
	if u.tx == nil {
		_, err := u.SaveChanges(ctx)
		return err
	}
	if _, err := u.flush(ctx, u.tx); err != nil {
		_ = u.RollbackTransaction()
		return err
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		u.pending = nil
		return fmt.Errorf("%w: %v", ErrTxFailed, err)
	}
	u.pending = nil
	return nil
}

// RollbackTransaction discards the open transaction and any staged
// writes. It is a no-op when no transaction is open.
func (u *UnitOfWork) RollbackTransaction() error {
	u.pending = nil
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	return tx.Rollback()
}

// Close releases the unit of work, rolling back any transaction that
// is still open. It is safe to call after a rollback or repeatedly.
func (u *UnitOfWork) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	return u.RollbackTransaction()
}
