package composables

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseAccountID(t *testing.T) {
	_, err := UseAccountID(context.Background())
	require.ErrorIs(t, err, ErrNoAccount)

	_, err = UseAccountID(WithAccountID(context.Background(), uuid.Nil))
	require.ErrorIs(t, err, ErrNoAccount)

	id := uuid.New()
	got, err := UseAccountID(WithAccountID(context.Background(), id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestUseLogger_FallsBackToStandardLogger(t *testing.T) {
	assert.NotNil(t, UseLogger(context.Background()))
}

func TestUseTx_NoPool(t *testing.T) {
	_, err := UseTx(context.Background())
	require.ErrorIs(t, err, ErrNoPool)
}

func TestUseQuery_DecodesFormTags(t *testing.T) {
	type filter struct {
		Status string `form:"status"`
		Limit  int    `form:"limit"`
		Other  string
	}
	r := httptest.NewRequest("GET", "/?status=draft&limit=5&Other=x", nil)

	got, err := UseQuery(&filter{}, r)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)
	assert.Equal(t, 5, got.Limit)
	assert.Empty(t, got.Other)
}
