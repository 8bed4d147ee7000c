package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"digital-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIsolation(t *testing.T) {
	tests := []struct {
		in      string
		want    pgx.TxIsoLevel
		wantErr bool
	}{
		{"", pgx.ReadCommitted, false},
		{"read_committed", pgx.ReadCommitted, false},
		{"repeatable_read", pgx.RepeatableRead, false},
		{"serializable", pgx.Serializable, false},
		{"snapshot", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIsolation(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransactor_Begin_DefaultsToReadCommitted(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectCommit()

	tx, err := NewTransactor(mock).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_Begin_SetsLockTimeout(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectExec("SET LOCAL lock_timeout = '250ms'").
		WillReturnResult(pgxmock.NewResult("SET", 0))

	transactor := NewTransactor(mock, WithIsolation(pgx.Serializable), WithLockTimeout(250*time.Millisecond))
	_, err := transactor.Begin(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_Begin_LockTimeoutFailureRollsBack(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectExec("SET LOCAL lock_timeout").WillReturnError(errors.New("bad setting"))
	mock.ExpectRollback()

	_, err := NewTransactor(mock, WithLockTimeout(time.Second)).Begin(context.Background())
	assert.ErrorContains(t, err, "set lock_timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_Begin_Error(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted}).WillReturnError(errors.New("pool closed"))

	_, err := NewTransactor(mock).Begin(context.Background())
	assert.ErrorContains(t, err, "begin tx")
}

func TestTransactor_CommitSerializationFailureIsConflict(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectCommit().WillReturnError(pgErr("40001"))

	tx, err := NewTransactor(mock, WithIsolation(pgx.Serializable)).Begin(context.Background())
	require.NoError(t, err)

	err = tx.Commit(context.Background())
	assert.True(t, errors.Is(err, domain.ErrWriteConflict))
}
