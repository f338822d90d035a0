// db/redis.go
package db

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/acemetillidie0001/obd-premium-apps/config"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
)

var (
	RedisClient   *redis.Client
	encryptionKey []byte
)

// ErrRedisNotConfigured is returned by helpers called before InitRedis.
var ErrRedisNotConfigured = errors.New("redis is not configured")

func InitRedis() error {
	client := redis.NewClient(&redis.Options{
		Addr:         config.GetString("redis.addr"),
		Password:     config.GetString("redis.password"),
		DB:           config.GetInt("redis.db"),
		DialTimeout:  config.GetDuration("redis.dialTimeout"),
		ReadTimeout:  config.GetDuration("redis.readTimeout"),
		WriteTimeout: config.GetDuration("redis.writeTimeout"),
		PoolSize:     config.GetInt("redis.poolSize"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if err := UseRedis(client, []byte(config.GetString("redis.encryptionKey"))); err != nil {
		return err
	}
	logger.Info("Successfully connected to Redis")
	return nil
}

// UseRedis installs an already connected client. key must be 32 bytes.
func UseRedis(client *redis.Client, key []byte) error {
	if len(key) != 32 {
		return fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}
	RedisClient = client
	encryptionKey = key
	return nil
}

func RedisEnabled() bool {
	return RedisClient != nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
		RedisClient = nil
	}
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func membershipKey(userID string) string {
	return fmt.Sprintf("memberships:%s", userID)
}

// CacheMemberships stores the encrypted membership list of a user.
func CacheMemberships(ctx context.Context, entry *pdp_model.MembershipCacheEntry, ttl time.Duration) error {
	if RedisClient == nil {
		return ErrRedisNotConfigured
	}
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal memberships: %w", err)
	}

	encrypted, err := encrypt(entryJSON)
	if err != nil {
		return fmt.Errorf("failed to encrypt memberships: %w", err)
	}

	if ttl <= 0 {
		ttl = config.GetDuration("redis.defaultCacheTTL")
	}
	err = RedisClient.Set(ctx, membershipKey(entry.UserID), base64.StdEncoding.EncodeToString(encrypted), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache memberships: %w", err)
	}

	logger.Debug("Memberships cached successfully", zap.String("userID", entry.UserID))
	return nil
}

// GetCachedMemberships returns nil, nil on a cache miss.
func GetCachedMemberships(ctx context.Context, userID string) (*pdp_model.MembershipCacheEntry, error) {
	if RedisClient == nil {
		return nil, ErrRedisNotConfigured
	}
	encryptedStr, err := RedisClient.Get(ctx, membershipKey(userID)).Result()
	if err == redis.Nil {
		logger.Debug("Memberships not found in cache", zap.String("userID", userID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get memberships from cache: %w", err)
	}

	encrypted, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode memberships: %w", err)
	}

	entryJSON, err := decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt memberships: %w", err)
	}

	var entry pdp_model.MembershipCacheEntry
	if err := json.Unmarshal(entryJSON, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memberships: %w", err)
	}

	logger.Debug("Memberships retrieved from cache", zap.String("userID", userID))
	return &entry, nil
}

func DeleteCachedMemberships(ctx context.Context, userID string) error {
	if RedisClient == nil {
		return ErrRedisNotConfigured
	}
	if err := RedisClient.Del(ctx, membershipKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete memberships from cache: %w", err)
	}
	logger.Debug("Memberships deleted from cache", zap.String("userID", userID))
	return nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	if RedisClient == nil {
		return false, ErrRedisNotConfigured
	}
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}

// MarkOnce sets a marker that exists for ttl. It reports false when the marker
// was already present.
func MarkOnce(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if RedisClient == nil {
		return false, ErrRedisNotConfigured
	}
	key := fmt.Sprintf("marker:%s", name)
	set, err := RedisClient.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set marker: %w", err)
	}
	logger.Debug("Marker set attempt", zap.String("marker", name), zap.Bool("set", set))
	return set, nil
}

func sessionItemKey(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}

// GetSessionItem returns "", false, nil when the item is absent.
func GetSessionItem(ctx context.Context, sessionID, key string) (string, bool, error) {
	if RedisClient == nil {
		return "", false, ErrRedisNotConfigured
	}
	value, err := RedisClient.Get(ctx, sessionItemKey(sessionID, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to get session item: %w", err)
	}
	return value, true, nil
}

// SetSessionItem stores a per-session value. ttl bounds how long an abandoned
// session keeps the item; zero keeps it until removed.
func SetSessionItem(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	if RedisClient == nil {
		return ErrRedisNotConfigured
	}
	if err := RedisClient.Set(ctx, sessionItemKey(sessionID, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session item: %w", err)
	}
	return nil
}

func RemoveSessionItem(ctx context.Context, sessionID, key string) error {
	if RedisClient == nil {
		return ErrRedisNotConfigured
	}
	if err := RedisClient.Del(ctx, sessionItemKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("failed to remove session item: %w", err)
	}
	return nil
}
