package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagate/internal/constants"
	"wagate/internal/session"
	pkgerrors "wagate/pkg/errors"
)

func TestSessionRegistryRoundTrip(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)
	registry := session.NewRegistry(infra.RedisClient, 60)
	ctx := context.Background()

	_, err := registry.GetState(ctx, "main")
	assert.True(t, pkgerrors.IsNotFound(err))

	require.NoError(t, registry.SetState(ctx, session.State{
		Instance:    "main",
		Status:      constants.InstanceStateConnected,
		JID:         "5511888887777@s.whatsapp.net",
		ConnectedAt: time.Now(),
	}))

	state, err := registry.GetState(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, constants.InstanceStateConnected, state.Status)
	assert.Equal(t, "5511888887777@s.whatsapp.net", state.JID)
	assert.False(t, state.LastSeen.IsZero())
}

func TestSessionRegistryHeartbeat(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)
	registry := session.NewRegistry(infra.RedisClient, 60)
	ctx := context.Background()

	assert.True(t, pkgerrors.IsNotFound(registry.Heartbeat(ctx, "ghost")))

	require.NoError(t, registry.SetState(ctx, session.State{
		Instance: "main",
		Status:   constants.InstanceStateConnected,
	}))

	before, err := registry.GetState(ctx, "main")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, registry.Heartbeat(ctx, "main"))

	after, err := registry.GetState(ctx, "main")
	require.NoError(t, err)
	assert.True(t, after.LastSeen.After(before.LastSeen))
	assert.Equal(t, constants.InstanceStateConnected, after.Status)
}

func TestSessionRegistryTTLExpiry(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)
	registry := session.NewRegistry(infra.RedisClient, 1)
	ctx := context.Background()

	require.NoError(t, registry.SetState(ctx, session.State{
		Instance: "short-lived",
		Status:   constants.InstanceStateConnected,
	}))

	_, err := registry.GetState(ctx, "short-lived")
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	_, err = registry.GetState(ctx, "short-lived")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSessionRegistryListAndRemove(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)
	registry := session.NewRegistry(infra.RedisClient, 60)
	ctx := context.Background()

	for _, name := range []string{"one", "two", "three"} {
		require.NoError(t, registry.SetState(ctx, session.State{
			Instance: name,
			Status:   constants.InstanceStateConnected,
		}))
	}

	states, err := registry.ListInstances(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 3)

	require.NoError(t, registry.Remove(ctx, "two"))

	states, err = registry.ListInstances(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 2)
	for _, s := range states {
		assert.NotEqual(t, "two", s.Instance)
	}
}
