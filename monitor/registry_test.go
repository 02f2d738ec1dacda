package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	provider := &countingProvider{signals: allSignals}
	reg := NewRegistry(newEvaluator(provider))
	ctx := context.Background()

	_, changed, err := reg.Session("tab-1").Observe(ctx, "https://example.com")
	require.NoError(t, err)
	assert.True(t, changed)

	_, changed, err = reg.Session("tab-2").Observe(ctx, "https://example.com")
	require.NoError(t, err)
	assert.True(t, changed, "a second tab evaluates the same host on its own")

	_, changed, err = reg.Session("tab-1").Observe(ctx, "https://example.com/other")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, provider.Calls())

	reg.Close("tab-1")
	_, ok := reg.Lookup("tab-1")
	assert.False(t, ok)
	_, ok = reg.Lookup("tab-2")
	assert.True(t, ok)
}
