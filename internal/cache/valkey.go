// Package cache holds the Valkey-backed auxiliary collections: session
// tokens, customer favorites, and the raw-JSON cache for the flight listing.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr          string
	Password      string
	SessionTTL    time.Duration
	FlightListTTL time.Duration
}

type ValkeyClient struct {
	client        *redis.Client
	sessionTTL    time.Duration
	flightListTTL time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:        rdb,
		sessionTTL:    cfg.SessionTTL,
		flightListTTL: cfg.FlightListTTL,
	}, nil
}

// Sessions

func sessionKey(token string) string {
	return "session:" + token
}

func (v *ValkeyClient) StoreSession(ctx context.Context, token string, customerID int64) error {
	return v.client.Set(ctx, sessionKey(token), customerID, v.sessionTTL).Err()
}

// GetSession resolves a session token to a customer ID. A missing token
// returns redis.Nil via the wrapped error.
func (v *ValkeyClient) GetSession(ctx context.Context, token string) (int64, error) {
	val, err := v.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("session not found")
		}
		return 0, fmt.Errorf("session lookup error: %w", err)
	}

	customerID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid customer ID in session: %w", err)
	}
	return customerID, nil
}

func (v *ValkeyClient) DeleteSession(ctx context.Context, token string) error {
	return v.client.Del(ctx, sessionKey(token)).Err()
}

// Favorites

func favoritesKey(customerID int64) string {
	return fmt.Sprintf("favorites:%d", customerID)
}

func (v *ValkeyClient) AddFavorite(ctx context.Context, customerID, flightID int64) error {
	return v.client.SAdd(ctx, favoritesKey(customerID), flightID).Err()
}

func (v *ValkeyClient) RemoveFavorite(ctx context.Context, customerID, flightID int64) error {
	return v.client.SRem(ctx, favoritesKey(customerID), flightID).Err()
}

func (v *ValkeyClient) ListFavorites(ctx context.Context, customerID int64) ([]int64, error) {
	members, err := v.client.SMembers(ctx, favoritesKey(customerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("favorites lookup error: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Flight listing cache. Raw JSON is stored to skip re-marshaling on hits.

func flightListKey(page, pageSize int) string {
	return fmt.Sprintf("flights:list:%d:%d", page, pageSize)
}

func (v *ValkeyClient) GetFlightListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	raw, err := v.client.Get(ctx, flightListKey(page, pageSize)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("cache miss")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return raw, nil
}

func (v *ValkeyClient) SetFlightList(ctx context.Context, page, pageSize int, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal flight list: %w", err)
	}
	return v.client.Set(ctx, flightListKey(page, pageSize), raw, v.flightListTTL).Err()
}

// InvalidateFlightLists drops every cached listing page, called after a new
// flight is created.
func (v *ValkeyClient) InvalidateFlightLists(ctx context.Context) error {
	iter := v.client.Scan(ctx, 0, "flights:list:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := v.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
