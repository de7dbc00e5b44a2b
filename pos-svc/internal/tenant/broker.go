package tenant

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	setTenantQuery   = "SELECT set_config('app.tenant_id', $1, false)"
	resetTenantQuery = "SELECT set_config('app.tenant_id', '', false)"
	lockTimeoutQuery = "SELECT set_config('lock_timeout', $1, true)"
	stmtTimeoutQuery = "SELECT set_config('statement_timeout', $1, true)"
)

type Options struct {
	AcquireTimeout time.Duration
	TxTimeout      time.Duration
	LockTimeout    time.Duration
}

func DefaultOptions() Options {
	return Options{
		AcquireTimeout: 3 * time.Second,
		TxTimeout:      5 * time.Second,
		LockTimeout:    2 * time.Second,
	}
}

// Broker hands out connections pinned to one tenant. Row-level security
// policies read app.tenant_id, so a session can only see its tenant's rows.
type Broker struct {
	db     *sqlx.DB
	opts   Options
	logger *zap.Logger
}

func NewBroker(db *sqlx.DB, opts Options, logger *zap.Logger) *Broker {
	if opts.AcquireTimeout <= 0 || opts.TxTimeout <= 0 || opts.LockTimeout <= 0 {
		def := DefaultOptions()
		if opts.AcquireTimeout <= 0 {
			opts.AcquireTimeout = def.AcquireTimeout
		}
		if opts.TxTimeout <= 0 {
			opts.TxTimeout = def.TxTimeout
		}
		if opts.LockTimeout <= 0 {
			opts.LockTimeout = def.LockTimeout
		}
	}
	return &Broker{db: db, opts: opts, logger: logger}
}

type Session struct {
	tenantID string
	conn     *sqlx.Conn
	broker   *Broker
	released bool
}

func (s *Session) TenantID() string {
	return s.tenantID
}

// Acquire pins a pooled connection to tenantID. The caller must Release it.
func (b *Broker) Acquire(ctx context.Context, tenantID string) (*Session, error) {
	if tenantID == "" {
		return nil, domain.Validation("tenant id is required")
	}

	actx, cancel := context.WithTimeout(ctx, b.opts.AcquireTimeout)
	defer cancel()

	conn, err := b.db.Connx(actx)
	if err != nil {
		return nil, domain.Internal(err, "acquire session for tenant %s", tenantID)
	}
	if _, err := conn.ExecContext(actx, setTenantQuery, tenantID); err != nil {
		conn.Close()
		return nil, domain.Internal(err, "bind session to tenant %s", tenantID)
	}
	return &Session{tenantID: tenantID, conn: conn, broker: b}, nil
}

// Release clears the tenant binding and returns the connection to the pool.
// A connection that cannot be reset is discarded instead. Safe to call twice.
func (s *Session) Release() {
	if s.released {
		return
	}
	s.released = true

	ctx, cancel := context.WithTimeout(context.Background(), s.broker.opts.AcquireTimeout)
	defer cancel()

	if _, err := s.conn.ExecContext(ctx, resetTenantQuery); err != nil {
		s.broker.logger.Warn("discarding session connection",
			zap.String("tenant_id", s.tenantID), zap.Error(err))
		_ = s.conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, driver.ErrBadConn) {
		s.broker.logger.Debug("close session connection", zap.Error(err))
	}
}

// RunInTransaction runs fn in one transaction bounded by the broker's tx and
// lock timeouts. Any error from fn rolls back.
func (s *Session) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	if s.released {
		return domain.Internal(nil, "session already released")
	}

	tctx, cancel := context.WithTimeout(ctx, s.broker.opts.TxTimeout)
	defer cancel()

	tx, err := s.conn.BeginTxx(tctx, nil)
	if err != nil {
		return classify(err, "begin transaction")
	}

	if _, err := tx.ExecContext(tctx, lockTimeoutQuery, millis(s.broker.opts.LockTimeout)); err != nil {
		_ = tx.Rollback()
		return classify(err, "set lock timeout")
	}
	if _, err := tx.ExecContext(tctx, stmtTimeoutQuery, millis(s.broker.opts.TxTimeout)); err != nil {
		_ = tx.Rollback()
		return classify(err, "set statement timeout")
	}

	if err := fn(tctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.broker.logger.Warn("rollback failed",
				zap.String("tenant_id", s.tenantID), zap.Error(rbErr))
		}
		return classify(err, "transaction")
	}

	if err := tx.Commit(); err != nil {
		return classify(err, "commit")
	}
	return nil
}

// RunInTransaction acquires a session, runs fn and always releases.
func (b *Broker) RunInTransaction(ctx context.Context, tenantID string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	session, err := b.Acquire(ctx, tenantID)
	if err != nil {
		return err
	}
	defer session.Release()

	return session.RunInTransaction(ctx, fn)
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%d", d.Milliseconds())
}

// classify keeps typed business errors and turns lock contention into a
// retryable conflict. Everything else becomes internal.
func classify(err error, op string) error {
	if de, ok := domain.AsError(err); ok {
		return de
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "55P03", "57014", "40P01", "40001":
			return &domain.Error{
				Kind:    domain.KindConflict,
				Code:    domain.CodeResourceBusy,
				Message: "resource is busy, retry",
				Err:     err,
			}
		case "23505":
			return &domain.Error{
				Kind:    domain.KindConflict,
				Code:    domain.CodeDuplicate,
				Message: "record already exists",
				Err:     err,
			}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.Error{
			Kind:    domain.KindConflict,
			Code:    domain.CodeResourceBusy,
			Message: "transaction timed out, retry",
			Err:     err,
		}
	}
	return domain.Internal(err, "%s failed", op)
}
