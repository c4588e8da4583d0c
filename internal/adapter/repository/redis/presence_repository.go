package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when Redis is known to be down; callers fall
// back to the event store.
var ErrUnavailable = errors.New("redis is unavailable")

// PresenceRepository implements domain.PresenceRepository using one sorted
// set per site: member = client address, score = unix seconds last seen.
// Counting trims members older than the window first, so the cardinality is
// exactly the distinct-address count inside the trailing window.
type PresenceRepository struct {
	client      *redis.Client
	logger      *slog.Logger
	isAvailable atomic.Bool
}

// NewPresenceRepository creates a new Redis-backed PresenceRepository.
func NewPresenceRepository(client *redis.Client, logger *slog.Logger) *PresenceRepository {
	repo := &PresenceRepository{
		client: client,
		logger: logger.With("component", "presence_repository"),
	}
	repo.isAvailable.Store(true)
	return repo
}

func presenceKey(siteID uuid.UUID) string {
	return "active:" + siteID.String()
}

// Touch records that addr was seen for the site at the given time.
func (r *PresenceRepository) Touch(ctx context.Context, siteID uuid.UUID, addr string, at time.Time) error {
	if !r.isAvailable.Load() {
		return ErrUnavailable
	}

	key := presenceKey(siteID)
	pipe := r.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.Unix()), Member: addr})
	// Dead sites should not hold their sets forever.
	pipe.Expire(ctx, key, time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		r.noteError(err)
		return fmt.Errorf("touch presence: %w", err)
	}
	return nil
}

// CountActive returns the distinct addresses seen within the trailing window.
func (r *PresenceRepository) CountActive(ctx context.Context, siteID uuid.UUID, window time.Duration) (int, error) {
	if !r.isAvailable.Load() {
		return 0, ErrUnavailable
	}

	key := presenceKey(siteID)
	cutoff := time.Now().Add(-window).Unix()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		r.noteError(err)
		return 0, fmt.Errorf("count active: %w", err)
	}
	return int(card.Val()), nil
}

// StartHealthCheck monitors Redis connectivity so a dead instance fails fast
// instead of timing out on every request. Blocks until ctx is done.
func (r *PresenceRepository) StartHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.client.Ping(ctx).Err(); err != nil {
				if r.isAvailable.CompareAndSwap(true, false) {
					r.logger.Error("redis connection lost", "error", err)
				}
			} else {
				if r.isAvailable.CompareAndSwap(false, true) {
					r.logger.Info("redis connection recovered")
				}
			}
		}
	}
}

func (r *PresenceRepository) noteError(err error) {
	if isNetworkError(err) {
		if r.isAvailable.CompareAndSwap(true, false) {
			r.logger.Error("redis connection lost during command", "error", err)
		}
	}
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
