package trm

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestNoopManager(t *testing.T) {
	var m TxManager = NoopManager{}

	called := false
	err := m.Do(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.Do(context.Background(), func(ctx context.Context) error { return boom }), boom)
}

func TestWithOptionsCtx(t *testing.T) {
	ctx := WithOptionsCtx(context.Background(), pgx.TxOptions{AccessMode: pgx.ReadOnly})

	opt, ok := ctx.Value(txOptions).(pgx.TxOptions)
	assert.True(t, ok)
	assert.Equal(t, pgx.ReadOnly, opt.AccessMode)
}
