package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wagate/internal/constants"
	pkgerrors "wagate/pkg/errors"
)

type Registry interface {
	SetState(ctx context.Context, state State) error
	GetState(ctx context.Context, instance string) (*State, error)
	Heartbeat(ctx context.Context, instance string) error
	ListInstances(ctx context.Context) ([]State, error)
	Remove(ctx context.Context, instance string) error
}

type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRegistry(client *redis.Client, ttlSeconds int) Registry {
	if ttlSeconds <= 0 {
		ttlSeconds = constants.DefaultSessionTTLSeconds
	}
	return &RedisRegistry{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func (r *RedisRegistry) SetState(ctx context.Context, state State) error {
	state.LastSeen = time.Now()

	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	if err := r.client.Set(ctx, stateKey(state.Instance), body, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

func (r *RedisRegistry) GetState(ctx context.Context, instance string) (*State, error) {
	body, err := r.client.Get(ctx, stateKey(instance)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("instance '%s' not found", instance))
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var state State
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &state, nil
}

func (r *RedisRegistry) Heartbeat(ctx context.Context, instance string) error {
	state, err := r.GetState(ctx, instance)
	if err != nil {
		return err
	}

	state.LastSeen = time.Now()
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	if err := r.client.Set(ctx, stateKey(instance), body, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

func (r *RedisRegistry) ListInstances(ctx context.Context) ([]State, error) {
	iter := r.client.Scan(ctx, 0, constants.CacheKeyPrefixSession+"*", 0).Iterator()

	var states []State
	for iter.Next(ctx) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		body, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("redis GET failed: %w", err)
		}

		var state State
		if err := json.Unmarshal(body, &state); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
		}
		states = append(states, state)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan failed: %w", err)
	}

	return states, nil
}

func (r *RedisRegistry) Remove(ctx context.Context, instance string) error {
	if err := r.client.Del(ctx, stateKey(instance)).Err(); err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}

func stateKey(instance string) string {
	return constants.CacheKeyPrefixSession + instance
}
