package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ceacwatch/ceacwatch/internal/domain"
)

const (
	// DefaultResultTTL is how long an application's history is kept after
	// the last completed check.
	DefaultResultTTL = 30 * 24 * time.Hour
	// MaxHistoryLen bounds the per-application history list.
	MaxHistoryLen = 50
)

// ArchivedResult is one completed check as stored in the history list.
// The passport number and surname are deliberately not persisted.
type ArchivedResult struct {
	Location      string               `json:"location"`
	ApplicationID string               `json:"application_id"`
	Record        *domain.StatusRecord `json:"record"`
	CheckedAt     time.Time            `json:"checked_at"`
}

// Store archives completed check results in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveResult appends a completed check to the application's history and
// bumps the global usage counter.
func (s *Store) SaveResult(ctx context.Context, query domain.Query, rec *domain.StatusRecord) error {
	entry := ArchivedResult{
		Location:      query.Location,
		ApplicationID: query.ApplicationID,
		Record:        rec,
		CheckedAt:     time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	key := ResultsKey(query.ApplicationID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, MaxHistoryLen-1)
	pipe.Expire(ctx, key, DefaultResultTTL)
	pipe.Incr(ctx, KeyChecksTotal)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// History returns an application's archived results, newest first.
// A never-checked application yields an empty slice, not an error.
func (s *Store) History(ctx context.Context, applicationID string) ([]ArchivedResult, error) {
	items, err := s.client.LRange(ctx, ResultsKey(applicationID), 0, MaxHistoryLen-1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []ArchivedResult{}, nil
		}
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	results := make([]ArchivedResult, 0, len(items))
	for _, item := range items {
		var entry ArchivedResult
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// Skip entries that couldn't be decoded
			continue
		}
		results = append(results, entry)
	}
	return results, nil
}

// ChecksTotal returns the number of completed checks across all applications.
func (s *Store) ChecksTotal(ctx context.Context) (int64, error) {
	n, err := s.client.Get(ctx, KeyChecksTotal).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get usage counter: %w", err)
	}
	return n, nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
