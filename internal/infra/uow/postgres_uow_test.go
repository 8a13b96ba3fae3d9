//go:build unit

package uow

import (
	"context"
	"errors"
	"testing"
	"time"

	"meeting-scheduler/internal/infra/query"
	"meeting-scheduler/internal/pkg/errs"
	"meeting-scheduler/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakePool struct {
	query.DBTX
	options  []pgx.TxOptions
	txs      []*fakeTx
	beginErr error
	// commitErrs is consumed one per transaction
	commitErrs []error
}

func (p *fakePool) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	p.options = append(p.options, opts)
	tx := &fakeTx{}
	if len(p.commitErrs) > 0 {
		tx.commitErr, p.commitErrs = p.commitErrs[0], p.commitErrs[1:]
	}
	p.txs = append(p.txs, tx)
	return tx, nil
}

var serializationFailure = &pgconn.PgError{Code: "40001", Message: "could not serialize access"}

func TestWithinSerializable_RetriesSerializationFailures(t *testing.T) {
	pool := &fakePool{}
	u := newPostgresUoW(pool, query.New(), time.Millisecond)

	calls := 0
	err := u.WithinSerializable(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		calls++
		assert.NotNil(t, tx.Bookings())
		if calls < 3 {
			return errs.Wrap(serializationFailure, "check conflicts")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, pool.options, 3)
	for _, opts := range pool.options {
		assert.Equal(t, pgx.Serializable, opts.IsoLevel)
	}
	assert.True(t, pool.txs[0].rolledBack)
	assert.True(t, pool.txs[2].committed)
}

func TestWithin_RetriesCommitConflicts(t *testing.T) {
	pool := &fakePool{commitErrs: []error{&pgconn.PgError{Code: "40P01"}}}
	u := newPostgresUoW(pool, query.New(), time.Millisecond)

	calls := 0
	err := u.Within(context.Background(), func(context.Context, shared.Tx) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, pgx.ReadCommitted, pool.options[0].IsoLevel)
}

func TestWithin_DoesNotRetryOtherErrors(t *testing.T) {
	pool := &fakePool{}
	u := newPostgresUoW(pool, query.New(), time.Millisecond)
	boom := errors.New("boom")

	calls := 0
	err := u.Within(context.Background(), func(context.Context, shared.Tx) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.True(t, pool.txs[0].rolledBack)
}

func TestWithin_GivesUpAfterMaxRetries(t *testing.T) {
	pool := &fakePool{}
	u := newPostgresUoW(pool, query.New(), time.Millisecond)

	calls := 0
	err := u.Within(context.Background(), func(context.Context, shared.Tx) error {
		calls++
		return serializationFailure
	})

	assert.True(t, errs.Is(err, errMaxRetriesExceeded))
	assert.Equal(t, maxRetries+1, calls)
}

func TestWithin_StopsWhenContextEnds(t *testing.T) {
	pool := &fakePool{}
	u := newPostgresUoW(pool, query.New(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	err := u.Within(ctx, func(context.Context, shared.Tx) error {
		cancel()
		return serializationFailure
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithin_BeginFailure(t *testing.T) {
	pool := &fakePool{beginErr: errors.New("pool closed")}
	u := newPostgresUoW(pool, query.New(), time.Millisecond)

	err := u.Within(context.Background(), func(context.Context, shared.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})

	assert.True(t, errs.Is(err, errTransactionBegin))
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		want := time.Duration(1<<attempt) * base
		got := calculateBackoff(attempt, base)
		assert.GreaterOrEqual(t, got, want)
		assert.Less(t, got, want+want/5)
	}
}
