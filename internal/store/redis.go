package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/shopgate/internal/model"
)

const (
	tokenKeyPrefix    = "shopgate:token:"
	checkoutKeyPrefix = "shopgate:checkout:"
)

// NewRedisClient は接続URLからredisクライアントを生成し、疎通を確認する。
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisTokenStore はTokenStoreのRedis実装。
// TTLはRedis側で自動処理される。
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore はRedisTokenStoreを生成する。
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// Set はセッションIDに対応するトークンをTTL付きで保存する。
func (s *RedisTokenStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKeyPrefix+sessionID, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Get は指定セッションのトークンを取得する。見つからない場合は空文字を返す。
func (s *RedisTokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := s.client.Get(ctx, tokenKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Delete は指定セッションのトークンを削除する。
func (s *RedisTokenStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, tokenKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// RedisCheckoutStore はCheckoutStoreのRedis実装。
// セッションはJSONにシリアライズして保存する。
type RedisCheckoutStore struct {
	client *redis.Client
}

// NewRedisCheckoutStore はRedisCheckoutStoreを生成する。
func NewRedisCheckoutStore(client *redis.Client) *RedisCheckoutStore {
	return &RedisCheckoutStore{client: client}
}

// Save はチェックアウトセッションをTTL付きで保存する。
func (s *RedisCheckoutStore) Save(ctx context.Context, session *model.CheckoutSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}
	if err := s.client.Set(ctx, checkoutKeyPrefix+session.OwnerID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	return nil
}

// Find は指定オーナーのチェックアウトセッションを取得する。見つからない場合はnilを返す。
func (s *RedisCheckoutStore) Find(ctx context.Context, ownerID string) (*model.CheckoutSession, error) {
	data, err := s.client.Get(ctx, checkoutKeyPrefix+ownerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}
	var session model.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	return &session, nil
}

// Delete は指定オーナーのチェックアウトセッションを破棄する。
func (s *RedisCheckoutStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.client.Del(ctx, checkoutKeyPrefix+ownerID).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}

// PurgeExpired はRedisのTTLが期限管理を担うため何もしない。
func (s *RedisCheckoutStore) PurgeExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// compile-time interface checks
var (
	_ TokenStore    = (*RedisTokenStore)(nil)
	_ CheckoutStore = (*RedisCheckoutStore)(nil)
)
