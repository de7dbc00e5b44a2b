package tenant

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockBroker(t *testing.T) (*Broker, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewBroker(sqlx.NewDb(mockDB, "sqlmock"), DefaultOptions(), zap.NewNop()), sqlMock
}

func expectSession(sqlMock sqlmock.Sqlmock, tenantID string) {
	sqlMock.ExpectExec(regexp.QuoteMeta(setTenantQuery)).
		WithArgs(tenantID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta(lockTimeoutQuery)).
		WithArgs("2000").
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec(regexp.QuoteMeta(stmtTimeoutQuery)).
		WithArgs("5000").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectReset(sqlMock sqlmock.Sqlmock) {
	sqlMock.ExpectExec(regexp.QuoteMeta(resetTenantQuery)).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestBroker_RunInTransactionCommits(t *testing.T) {
	broker, sqlMock := newMockBroker(t)

	expectSession(sqlMock, "tenant-a")
	sqlMock.ExpectExec("UPDATE tables").
		WithArgs("t5").
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()
	expectReset(sqlMock)

	err := broker.RunInTransaction(context.Background(), "tenant-a", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE tables SET state = 'occupied' WHERE id = $1", "t5")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestBroker_RunInTransactionRollsBack(t *testing.T) {
	tests := []struct {
		name     string
		fnErr    error
		wantKind domain.Kind
		wantCode string
	}{
		{
			name:     "business error passes through",
			fnErr:    domain.Conflict(domain.CodeTableNotFree, "table 5 is occupied"),
			wantKind: domain.KindConflict,
			wantCode: domain.CodeTableNotFree,
		},
		{
			name:     "lock timeout is retryable",
			fnErr:    &pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"},
			wantKind: domain.KindConflict,
			wantCode: domain.CodeResourceBusy,
		},
		{
			name:     "serialization failure is retryable",
			fnErr:    &pq.Error{Code: "40001"},
			wantKind: domain.KindConflict,
			wantCode: domain.CodeResourceBusy,
		},
		{
			name:     "unique violation",
			fnErr:    &pq.Error{Code: "23505"},
			wantKind: domain.KindConflict,
			wantCode: domain.CodeDuplicate,
		},
		{
			name:     "deadline",
			fnErr:    context.DeadlineExceeded,
			wantKind: domain.KindConflict,
			wantCode: domain.CodeResourceBusy,
		},
		{
			name:     "anything else is internal",
			fnErr:    errors.New("disk on fire"),
			wantKind: domain.KindInternal,
			wantCode: domain.CodeInternal,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			broker, sqlMock := newMockBroker(t)
			expectSession(sqlMock, "tenant-a")
			sqlMock.ExpectRollback()
			expectReset(sqlMock)

			err := broker.RunInTransaction(context.Background(), "tenant-a", func(context.Context, *sqlx.Tx) error {
				return testCase.fnErr
			})
			assert.True(t, domain.IsKind(err, testCase.wantKind), "got %v", err)
			assert.True(t, domain.HasCode(err, testCase.wantCode), "got %v", err)
			assert.NoError(t, sqlMock.ExpectationsWereMet())
		})
	}
}

func TestBroker_AcquireRequiresTenant(t *testing.T) {
	broker, sqlMock := newMockBroker(t)

	_, err := broker.Acquire(context.Background(), "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestBroker_AcquireBindFailure(t *testing.T) {
	broker, sqlMock := newMockBroker(t)
	sqlMock.ExpectExec(regexp.QuoteMeta(setTenantQuery)).
		WithArgs("tenant-a").
		WillReturnError(errors.New("connection refused"))

	_, err := broker.Acquire(context.Background(), "tenant-a")
	assert.True(t, domain.IsKind(err, domain.KindInternal))
}

func TestSession_ReleasedSessionRefusesWork(t *testing.T) {
	broker, sqlMock := newMockBroker(t)
	sqlMock.ExpectExec(regexp.QuoteMeta(setTenantQuery)).
		WithArgs("tenant-a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectReset(sqlMock)

	session, err := broker.Acquire(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", session.TenantID())
	session.Release()
	session.Release()

	err = session.RunInTransaction(context.Background(), func(context.Context, *sqlx.Tx) error { return nil })
	assert.True(t, domain.IsKind(err, domain.KindInternal))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestNewBroker_FillsDefaults(t *testing.T) {
	broker := NewBroker(nil, Options{TxTimeout: 9}, zap.NewNop())
	assert.Equal(t, DefaultOptions().AcquireTimeout, broker.opts.AcquireTimeout)
	assert.Equal(t, DefaultOptions().LockTimeout, broker.opts.LockTimeout)
	assert.EqualValues(t, 9, broker.opts.TxTimeout)
}
