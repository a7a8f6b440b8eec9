package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelnosql/pkg/logger"
)

func TestDisabledCacheIsSafe(t *testing.T) {
	c := New("", time.Minute, logger.NewNop())
	require.Nil(t, c)

	var dest map[string]string
	assert.False(t, c.Get(context.Background(), "key", &dest))
	assert.NotPanics(t, func() { c.Set(context.Background(), "key", "value") })
	assert.NoError(t, c.Close())
}

func TestEnabledCacheConstruction(t *testing.T) {
	c := New("localhost:6379", time.Minute, logger.NewNop())
	require.NotNil(t, c)
	assert.NoError(t, c.Close())
}
