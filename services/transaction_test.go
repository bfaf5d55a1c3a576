package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hogent/event-ticket-manager/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txCtxKey struct{}

func TestWithTransactionResult(t *testing.T) {
	errSeatTaken := errors.New("seat taken")
	errDiskFull := errors.New("disk full")
	errConnReset := errors.New("connection reset")

	tests := []struct {
		name         string
		beginErr     error
		fnErr        error
		commitErr    error
		rollbackErr  error
		wantResult   int64
		wantIs       []error
		wantContains string
		committed    bool
		rolledback   bool
	}{
		{
			name:       "commits and returns the value",
			wantResult: 42,
			committed:  true,
		},
		{
			name:       "fn error rolls back and is returned as is",
			fnErr:      ErrEventNotFound,
			wantIs:     []error{ErrEventNotFound},
			rolledback: true,
		},
		{
			name:         "begin failure never calls fn",
			beginErr:     errConnReset,
			wantIs:       []error{errConnReset},
			wantContains: "failed to begin transaction",
		},
		{
			name:         "commit failure is reported",
			commitErr:    errDiskFull,
			wantResult:   42,
			wantIs:       []error{errDiskFull},
			wantContains: "failed to commit transaction",
			committed:    true,
		},
		{
			name:         "rollback failure keeps both causes",
			fnErr:        errSeatTaken,
			rollbackErr:  errConnReset,
			wantIs:       []error{errSeatTaken, errConnReset},
			wantContains: "rollback error",
			rolledback:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			txCtx := context.WithValue(ctx, txCtxKey{}, "tx")
			txMgr := new(MockTransactionManager)
			tx := new(MockTransaction)

			if tt.beginErr != nil {
				txMgr.On("Begin", ctx).Return(nil, tt.beginErr)
			} else {
				txMgr.On("Begin", ctx).Return(tx, nil)
				tx.On("Context").Return(txCtx)
			}
			if tt.committed {
				tx.On("Commit").Return(tt.commitErr)
			}
			if tt.rolledback {
				tx.On("Rollback").Return(tt.rollbackErr)
			}

			called := false
			got, err := WithTransactionResult(ctx, txMgr, func(ctx context.Context, _ repositories.Transaction) (int64, error) {
				called = true
				assert.Equal(t, "tx", ctx.Value(txCtxKey{}), "fn must run on the transaction context")
				return 42, tt.fnErr
			})

			if len(tt.wantIs) == 0 && tt.wantContains == "" {
				require.NoError(t, err)
			}
			for _, target := range tt.wantIs {
				assert.ErrorIs(t, err, target)
			}
			if tt.wantContains != "" {
				assert.ErrorContains(t, err, tt.wantContains)
			}
			if tt.wantResult != 0 {
				assert.Equal(t, tt.wantResult, got)
			}
			assert.Equal(t, tt.beginErr == nil, called)
			assert.Equal(t, tt.committed, tx.committed)
			assert.Equal(t, tt.rolledback, tx.rolledback)
			txMgr.AssertExpectations(t)
			tx.AssertExpectations(t)
		})
	}
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	tx := new(MockTransaction)

	txMgr.On("Begin", ctx).Return(tx, nil)
	tx.On("Context").Return(ctx)
	tx.On("Rollback").Return(nil)

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithTransaction(ctx, txMgr, func(context.Context, repositories.Transaction) error {
			panic("boom")
		})
	})
	assert.True(t, tx.rolledback)
	assert.False(t, tx.committed)
}

func TestWithTransaction_DropsTheValue(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	tx := new(MockTransaction)

	txMgr.On("Begin", ctx).Return(tx, nil)
	tx.On("Context").Return(ctx)
	tx.On("Rollback").Return(nil)

	err := WithTransaction(ctx, txMgr, func(context.Context, repositories.Transaction) error {
		return ErrLocationNotFound
	})
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.True(t, tx.rolledback)
}
