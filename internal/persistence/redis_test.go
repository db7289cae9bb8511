package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedis_Unconfigured(t *testing.T) {
	var r *Redis
	ctx := context.Background()

	assert.ErrorIs(t, r.Ping(ctx), errRedisNotConfigured)
	assert.ErrorIs(t, r.HSet(ctx, "settings:bootstrap", map[string]interface{}{"a": "1"}), errRedisNotConfigured)
	assert.NotPanics(t, r.Close)
}
