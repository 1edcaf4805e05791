package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazarov/TMS-BookingService/pkg/dbmetrics"
)

// sqlBeginner адаптирует *sql.DB к TxBeginner (как это делает dbmetrics.DB)
type sqlBeginner struct {
	db *sql.DB
}

func (b sqlBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return b.db.BeginTx(ctx, opts)
}

func newManagerMock(t *testing.T) (*TransactionManager, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewTransactionManager(sqlBeginner{db: db}), mock, func() { db.Close() }
}

func TestDoSerializable_RetriesWrappedSerializationFailure(t *testing.T) {
	manager, mock, cleanup := newManagerMock(t)
	defer cleanup()

	// Первая попытка: тело транзакции возвращает обёрнутый конфликт
	// сериализации, поднятый запросом внутри транзакции
	mock.ExpectBegin()
	mock.ExpectRollback()
	// Вторая попытка проходит
	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := manager.DoSerializable(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("storage: execute insert: %w", &pq.Error{Code: "40001"})
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_GivesUpAfterMaxRetries(t *testing.T) {
	manager, mock, cleanup := newManagerMock(t)
	defer cleanup()

	for i := 0; i < maxRetries; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	attempts := 0
	err := manager.DoSerializable(context.Background(), func(_ context.Context) error {
		attempts++
		return fmt.Errorf("storage: execute insert: %w", &pq.Error{Code: "40001"})
	})

	require.Error(t, err)
	assert.Equal(t, maxRetries, attempts)

	var pqErr *pq.Error
	assert.ErrorAs(t, err, &pqErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_NoRetryOnOtherErrors(t *testing.T) {
	manager, mock, cleanup := newManagerMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("business rule violated")
	attempts := 0
	err := manager.DoSerializable(context.Background(), func(_ context.Context) error {
		attempts++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
