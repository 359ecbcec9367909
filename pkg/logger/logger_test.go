package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_InjectsLogCtx(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "auth", LevelDebug)

	ctx := wrap.WithLogCtx(context.Background(), wrap.LogCtx{
		Action:    "login_user",
		RequestID: "req-1",
		TokenID:   "jti-1",
	})
	l.Error(ctx, "failed", errors.New("boom"), "email", "u1@x.com")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.Equal(t, "failed", rec["message"])
	assert.Equal(t, "auth", rec["service"])
	assert.Equal(t, "login_user", rec["action"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "jti-1", rec["token_id"])
	assert.Equal(t, "u1@x.com", rec["email"])
	assert.Contains(t, rec, "timestamp")

	errGroup, ok := rec["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", errGroup["msg"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "auth", LevelWarn)

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "hidden too")
	assert.Zero(t, buf.Len())

	l.Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_ErrorWithNilErr(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "auth", LevelDebug)

	assert.NotPanics(t, func() {
		l.Error(context.Background(), "no error given", nil)
	})
	assert.Contains(t, buf.String(), "<nil>")
}

func TestValidateLogLevel(t *testing.T) {
	assert.True(t, ValidateLogLevel(LevelInfo))
	assert.False(t, ValidateLogLevel("TRACE"))
}
