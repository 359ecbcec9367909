package wrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithLogCtx_MergesExisting(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithLogCtx(ctx, LogCtx{Action: "register_user"})

	lc := FromContext(ctx)
	assert.Equal(t, "req-1", lc.RequestID)
	assert.Equal(t, "register_user", lc.Action)
}

func TestError_CarriesLogCtx(t *testing.T) {
	base := errors.New("boom")
	ctx := WithAction(context.Background(), "issue_token")
	ctx = WithUserID(ctx, "u1")

	err := Error(ctx, base)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "boom", err.Error())

	got := FromContext(ErrorCtx(context.Background(), err))
	assert.Equal(t, "issue_token", got.Action)
	assert.Equal(t, "u1", got.UserID)
}

func TestError_RewrapRefreshesCtx(t *testing.T) {
	base := errors.New("boom")
	err := Error(WithAction(context.Background(), "inner"), base)
	err = Error(WithAction(context.Background(), "outer"), err)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "outer", FromContext(ErrorCtx(context.Background(), err)).Action)
}

func TestError_Nil(t *testing.T) {
	assert.NoError(t, Error(context.Background(), nil))
}
