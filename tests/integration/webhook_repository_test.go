package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagate/internal/webhook"
	pkgerrors "wagate/pkg/errors"
)

func TestWebhookRepositoryCRUD(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	repo := webhook.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	hook := createTestWebhook("main", "events", "https://hooks.example.com/wa", true)
	require.NoError(t, repo.Create(ctx, hook))
	require.NotEmpty(t, hook.ID)

	fetched, err := repo.Get(ctx, hook.ID)
	require.NoError(t, err)
	assert.Equal(t, "main", fetched.Instance)
	assert.Equal(t, "events", fetched.Name)
	assert.Equal(t, []string{"conversation", "image"}, fetched.Events)
	assert.True(t, fetched.Enabled)

	disabled := createTestWebhook("main", "disabled", "https://hooks.example.com/other", false)
	require.NoError(t, repo.Create(ctx, disabled))

	all, err := repo.List(ctx, "main")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := repo.ListEnabled(ctx, "main")
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, hook.ID, enabled[0].ID)

	other, err := repo.List(ctx, "other-instance")
	require.NoError(t, err)
	assert.Empty(t, other)

	hook.FilterExpression = `messageType == "conversation"`
	hook.Enabled = false
	require.NoError(t, repo.Update(ctx, hook))

	fetched, err = repo.Get(ctx, hook.ID)
	require.NoError(t, err)
	assert.Equal(t, `messageType == "conversation"`, fetched.FilterExpression)
	assert.False(t, fetched.Enabled)

	require.NoError(t, repo.Delete(ctx, hook.ID))

	_, err = repo.Get(ctx, hook.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestWebhookRepositoryDuplicateURL(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	repo := webhook.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	first := createTestWebhook("main", "first", "https://hooks.example.com/dup", true)
	require.NoError(t, repo.Create(ctx, first))

	second := createTestWebhook("main", "second", "https://hooks.example.com/dup", true)
	err := repo.Create(ctx, second)
	assert.True(t, pkgerrors.IsConflict(err))

	// The same URL on a different instance is fine.
	third := createTestWebhook("other", "third", "https://hooks.example.com/dup", true)
	assert.NoError(t, repo.Create(ctx, third))
}

func TestWebhookRepositoryUpdateMissing(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	repo := webhook.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	missing := createTestWebhook("main", "ghost", "https://hooks.example.com/ghost", true)
	missing.ID = "00000000-0000-0000-0000-000000000000"

	assert.True(t, pkgerrors.IsNotFound(repo.Update(ctx, missing)))
	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, missing.ID)))
}

func TestWebhookDeliveryLog(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	repo := webhook.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	hook := createTestWebhook("main", "events", "https://hooks.example.com/wa", true)
	require.NoError(t, repo.Create(ctx, hook))

	now := time.Now()
	delivered := &webhook.Delivery{
		WebhookID:   hook.ID,
		EventID:     "evt-1",
		Status:      webhook.DeliveryStatusDelivered,
		Attempts:    1,
		DeliveredAt: &now,
	}
	require.NoError(t, repo.RecordDelivery(ctx, delivered))

	failed := &webhook.Delivery{
		WebhookID: hook.ID,
		EventID:   "evt-2",
		Status:    webhook.DeliveryStatusFailed,
		Attempts:  3,
		LastError: "connection refused",
	}
	require.NoError(t, repo.RecordDelivery(ctx, failed))

	deliveries, err := repo.ListDeliveries(ctx, hook.ID, 10)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)

	// Newest first.
	assert.Equal(t, "evt-2", deliveries[0].EventID)
	assert.Equal(t, webhook.DeliveryStatusFailed, deliveries[0].Status)
	assert.Equal(t, "connection refused", deliveries[0].LastError)
	assert.Nil(t, deliveries[0].DeliveredAt)

	assert.Equal(t, "evt-1", deliveries[1].EventID)
	assert.NotNil(t, deliveries[1].DeliveredAt)

	limited, err := repo.ListDeliveries(ctx, hook.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestWebhookServiceDispatchAgainstPostgres(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	repo := webhook.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	svc := newWebhookService(t, repo)

	hook := createTestWebhook("main", "events", "https://127.0.0.1:1/unreachable", true)
	require.NoError(t, svc.Create(ctx, hook))

	event := createTestProcessedEvent("evt-1", "main", "5511888887777@s.whatsapp.net", "conversation", "hello")
	require.NoError(t, svc.Dispatch(ctx, event))

	deliveries, err := repo.ListDeliveries(ctx, hook.ID, 10)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, webhook.DeliveryStatusFailed, deliveries[0].Status)
	assert.Equal(t, "evt-1", deliveries[0].EventID)
}
