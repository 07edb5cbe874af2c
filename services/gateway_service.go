package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"events-system/internal/gateway/paystack"
	"events-system/monitoring"
	"events-system/utils"

	"github.com/redis/go-redis/v9"
)

// TransactionVerifier is satisfied by the paystack client.
type TransactionVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error)
}

// GatewayService fronts the external payment gateway. Verification is
// read-only, so confirmed references are cached in Redis; the circuit
// breaker keeps a flapping gateway from stalling every request.
type GatewayService struct {
	client   TransactionVerifier
	redis    *redis.Client
	breaker  *utils.CircuitBreaker
	cacheTTL time.Duration
}

func NewGatewayService(client TransactionVerifier, redisClient *redis.Client, cacheTTL time.Duration) *GatewayService {
	return &GatewayService{
		client:   client,
		redis:    redisClient,
		breaker:  utils.NewCircuitBreaker("paystack-verify"),
		cacheTTL: cacheTTL,
	}
}

func verifyCacheKey(reference string) string {
	return fmt.Sprintf("verify:%s", reference)
}

// VerifyPayment confirms a transaction reference. Failed lookups come
// back as structured Verified=false results; only transport errors
// (timeout, gateway down, open breaker) error out so the caller can
// retry.
func (s *GatewayService) VerifyPayment(ctx context.Context, reference string) (*paystack.Verification, error) {
	if cached := s.fromCache(ctx, reference); cached != nil {
		monitoring.TrackGatewayRequest("cache_hit")
		return cached, nil
	}

	started := time.Now()
	result, err := s.breaker.Execute(ctx, func() (any, error) {
		return s.client.VerifyTransaction(ctx, reference)
	})
	monitoring.TrackGatewayDuration(time.Since(started))
	if err != nil {
		monitoring.TrackGatewayRequest("error")
		return nil, err
	}

	verification := result.(*paystack.Verification)
	monitoring.TrackGatewayRequest(verification.Status)

	// Only a confirmed success is immutable enough to cache; pending
	// transactions may still settle.
	if verification.Verified {
		s.toCache(ctx, reference, verification)
	}
	return verification, nil
}

func (s *GatewayService) fromCache(ctx context.Context, reference string) *paystack.Verification {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, verifyCacheKey(reference)).Result()
	if err != nil {
		return nil
	}
	var verification paystack.Verification
	if err := json.Unmarshal([]byte(raw), &verification); err != nil {
		return nil
	}
	return &verification
}

func (s *GatewayService) toCache(ctx context.Context, reference string, verification *paystack.Verification) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(verification)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, verifyCacheKey(reference), raw, s.cacheTTL).Err(); err != nil {
		slog.Warn("gateway: cache write failed", "reference", reference, "error", err)
	}
}
