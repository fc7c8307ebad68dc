package firestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welling-fm/fireinspect/internal/conf"
	"github.com/welling-fm/fireinspect/internal/errors"
)

func TestHTTPClientAuthModes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, key, err := HTTPClient(ctx, &conf.FirestoreSettings{Auth: conf.AuthAPIKey, APIKey: "k"}, "fireinspect/test")
	require.NoError(t, err)
	assert.Equal(t, "k", key)

	client, key, err := HTTPClient(ctx, &conf.FirestoreSettings{Auth: conf.AuthToken, Token: "tok"}, "")
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.NotNil(t, client.Transport)

	_, _, err = HTTPClient(ctx, &conf.FirestoreSettings{Auth: conf.AuthAPIKey}, "")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, _, err = HTTPClient(ctx, &conf.FirestoreSettings{Auth: "magic"}, "")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestNewClientFromSettings(t *testing.T) {
	t.Parallel()

	c, err := NewClientFromSettings(context.Background(), &conf.FirestoreSettings{
		BaseURL:     "https://firestore.test/v1/",
		Project:     "p",
		Auth:        conf.AuthAPIKey,
		APIKey:      "k",
		Timeout:     time.Second,
		PageSize:    50,
		MaxAttempts: 2,
	}, Config{})
	require.NoError(t, err)

	assert.Equal(t, "https://firestore.test/v1", c.config.BaseURL)
	assert.Equal(t, "k", c.config.APIKey)
	assert.Equal(t, 50, c.config.PageSize)
	assert.Nil(t, c.cache)
	assert.Equal(t, "projects/p/databases/(default)/documents/apps/a/buildings/x", c.DocumentName("/apps/a/buildings/x"))
}
