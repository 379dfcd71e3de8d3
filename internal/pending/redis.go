package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/proofstreak/internal/constants"
)

// Redis is a Cache shared between server replicas. Entries expire through
// key TTLs and are consumed atomically with GETDEL.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	opTimeout time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(opts RedisOptions) (*Redis, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisWithClient(client, opts.TTL), nil
}

func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = constants.DefaultProofTTL
	}
	return &Redis{
		client:    client,
		keyPrefix: constants.ProofCacheKeyPrefix,
		ttl:       ttl,
		opTimeout: constants.DefaultRedisOpTimeout,
	}
}

func (r *Redis) key(userID int64) string {
	return fmt.Sprintf("%s:%d", r.keyPrefix, userID)
}

// Ping verifies the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Put(ctx context.Context, userID int64, proof Proof) error {
	raw, err := json.Marshal(proof)
	if err != nil {
		return fmt.Errorf("marshal pending proof: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()
	return r.client.Set(ctx, r.key(userID), raw, r.ttl).Err()
}

func (r *Redis) Take(ctx context.Context, userID int64) (Proof, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	raw, err := r.client.GetDel(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Proof{}, ErrSessionExpired
	}
	if err != nil {
		return Proof{}, err
	}

	var proof Proof
	if err := json.Unmarshal(raw, &proof); err != nil {
		return Proof{}, fmt.Errorf("unmarshal pending proof: %w", err)
	}
	return proof, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
