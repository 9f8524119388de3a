package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notesaas/internal/config"
	"notesaas/internal/logger"
	"notesaas/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "notesaas"

type CacheService interface {
	// Principal caching
	TenantGeneration(ctx context.Context, tenantID uuid.UUID) (int64, error)
	GetPrincipal(ctx context.Context, tenantID uuid.UUID, generation int64, tokenKey string) (*models.Principal, error)
	SetPrincipal(ctx context.Context, tenantID uuid.UUID, generation int64, tokenKey string, principal *models.Principal, ttl time.Duration) error
	InvalidateTenantPrincipals(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(cfg config.RedisConfig) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Debug("redis connection established", zap.String("addr", cfg.Addr))
	}

	return &redisCacheService{client: client}
}

func generationKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:tenantgen:%s", keyPrefix, tenantID.String())
}

func principalKey(tenantID uuid.UUID, generation int64, tokenKey string) string {
	return fmt.Sprintf("%s:principal:%s:%d:%s", keyPrefix, tenantID.String(), generation, tokenKey)
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
}

// TenantGeneration returns the tenant's current cache generation, 0 when unset.
func (r *redisCacheService) TenantGeneration(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *redisCacheService) GetPrincipal(ctx context.Context, tenantID uuid.UUID, generation int64, tokenKey string) (*models.Principal, error) {
	data, err := r.client.Get(ctx, principalKey(tenantID, generation, tokenKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var principal models.Principal
	if err := json.Unmarshal(data, &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

// SetPrincipal writes under the generation the caller read before loading
// the principal, so a load that raced an invalidation lands in a dead slot.
func (r *redisCacheService) SetPrincipal(ctx context.Context, tenantID uuid.UUID, generation int64, tokenKey string, principal *models.Principal, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(principal)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, principalKey(tenantID, generation, tokenKey), data, ttl).Err()
}

// InvalidateTenantPrincipals bumps the tenant generation. Entries written
// under an older generation are never read again and expire on their own.
func (r *redisCacheService) InvalidateTenantPrincipals(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Incr(ctx, generationKey(tenantID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := rateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, err
	}

	// Set expiry on first request
	if count == 1 {
		if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			return false, err
		}
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
