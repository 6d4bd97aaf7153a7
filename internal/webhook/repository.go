package webhook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	pkgerrors "wagate/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, hook *Webhook) error
	Get(ctx context.Context, id string) (*Webhook, error)
	List(ctx context.Context, instance string) ([]Webhook, error)
	ListEnabled(ctx context.Context, instance string) ([]Webhook, error)
	Update(ctx context.Context, hook *Webhook) error
	Delete(ctx context.Context, id string) error
	RecordDelivery(ctx context.Context, delivery *Delivery) error
	ListDeliveries(ctx context.Context, webhookID string, limit int) ([]Delivery, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, hook *Webhook) error {
	if hook.ID == "" {
		hook.ID = uuid.New().String()
	}
	now := time.Now()
	hook.CreatedAt = now
	hook.UpdatedAt = now

	query := `
		INSERT INTO webhooks (id, instance, name, url, events, filter_expression, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		hook.ID, hook.Instance, hook.Name, hook.URL,
		pq.Array(hook.Events), hook.FilterExpression, hook.Enabled,
		hook.CreatedAt, hook.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("webhook '%s' already exists", hook.Name))
		}
		return fmt.Errorf("failed to create webhook: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Webhook, error) {
	query := `
		SELECT id, instance, name, url, events, filter_expression, enabled, created_at, updated_at
		FROM webhooks
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var hook Webhook
	err := row.Scan(
		&hook.ID, &hook.Instance, &hook.Name, &hook.URL,
		pq.Array(&hook.Events), &hook.FilterExpression, &hook.Enabled,
		&hook.CreatedAt, &hook.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithCause(err).WithDetail("message", fmt.Sprintf("webhook '%s' not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}

	return &hook, nil
}

func (r *PostgresRepository) List(ctx context.Context, instance string) ([]Webhook, error) {
	query := `
		SELECT id, instance, name, url, events, filter_expression, enabled, created_at, updated_at
		FROM webhooks
		WHERE instance = $1
		ORDER BY created_at DESC
	`
	return r.queryWebhooks(ctx, query, instance)
}

func (r *PostgresRepository) ListEnabled(ctx context.Context, instance string) ([]Webhook, error) {
	query := `
		SELECT id, instance, name, url, events, filter_expression, enabled, created_at, updated_at
		FROM webhooks
		WHERE instance = $1 AND enabled = true
		ORDER BY created_at DESC
	`
	return r.queryWebhooks(ctx, query, instance)
}

func (r *PostgresRepository) queryWebhooks(ctx context.Context, query string, args ...interface{}) ([]Webhook, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	defer rows.Close()

	var hooks []Webhook
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		var hook Webhook
		if err := rows.Scan(
			&hook.ID, &hook.Instance, &hook.Name, &hook.URL,
			pq.Array(&hook.Events), &hook.FilterExpression, &hook.Enabled,
			&hook.CreatedAt, &hook.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		hooks = append(hooks, hook)
	}

	return hooks, nil
}

func (r *PostgresRepository) Update(ctx context.Context, hook *Webhook) error {
	hook.UpdatedAt = time.Now()

	query := `
		UPDATE webhooks
		SET name = $1, url = $2, events = $3, filter_expression = $4, enabled = $5, updated_at = $6
		WHERE id = $7
	`

	res, err := r.db.ExecContext(ctx, query,
		hook.Name, hook.URL, pq.Array(hook.Events),
		hook.FilterExpression, hook.Enabled, hook.UpdatedAt, hook.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update webhook: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("webhook '%s' not found", hook.ID))
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM webhooks WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("webhook '%s' not found", id))
	}

	return nil
}

func (r *PostgresRepository) RecordDelivery(ctx context.Context, delivery *Delivery) error {
	if delivery.ID == "" {
		delivery.ID = uuid.New().String()
	}
	delivery.CreatedAt = time.Now()

	query := `
		INSERT INTO webhook_deliveries (id, webhook_id, event_id, status, attempts, last_error, delivered_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		delivery.ID, delivery.WebhookID, delivery.EventID, delivery.Status,
		delivery.Attempts, delivery.LastError, delivery.DeliveredAt, delivery.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListDeliveries(ctx context.Context, webhookID string, limit int) ([]Delivery, error) {
	query := `
		SELECT id, webhook_id, event_id, status, attempts, last_error, delivered_at, created_at
		FROM webhook_deliveries
		WHERE webhook_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, webhookID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(
			&d.ID, &d.WebhookID, &d.EventID, &d.Status,
			&d.Attempts, &d.LastError, &d.DeliveredAt, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}
