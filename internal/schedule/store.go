package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store persists weekly templates and branch overrides as JSON documents
// in Redis, keyed by resource (and location for overrides).
type Store struct {
	redis *redis.Client
}

// NewStore creates a schedule store backed by the given Redis client.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) templateKey(resourceID string) string {
	return fmt.Sprintf("schedule:template:%s", resourceID)
}

func (s *Store) overrideKey(resourceID, locationID string) string {
	return fmt.Sprintf("schedule:override:%s:%s", resourceID, locationID)
}

// LoadTemplate retrieves the resource's weekly template, returning the
// default Monday-Friday pattern when none has been stored yet.
func (s *Store) LoadTemplate(ctx context.Context, resourceID string) (WeeklyTemplate, error) {
	data, err := s.redis.Get(ctx, s.templateKey(resourceID)).Bytes()
	if err == redis.Nil {
		return DefaultTemplate(), nil
	}
	if err != nil {
		return WeeklyTemplate{}, fmt.Errorf("schedule: load template: %w", err)
	}

	var t WeeklyTemplate
	if err := json.Unmarshal(data, &t); err != nil {
		return WeeklyTemplate{}, fmt.Errorf("schedule: unmarshal template: %w", err)
	}
	return t, nil
}

// SaveTemplate stores the template for a resource.
func (s *Store) SaveTemplate(ctx context.Context, resourceID string, t WeeklyTemplate) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("schedule: marshal template: %w", err)
	}
	if err := s.redis.Set(ctx, s.templateKey(resourceID), data, 0).Err(); err != nil {
		return fmt.Errorf("schedule: save template: %w", err)
	}
	return nil
}

// LoadOverride retrieves the resource's schedule override for a location,
// or nil when the location has no override.
func (s *Store) LoadOverride(ctx context.Context, resourceID, locationID string) (*BranchOverride, error) {
	data, err := s.redis.Get(ctx, s.overrideKey(resourceID, locationID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: load override: %w", err)
	}

	var o BranchOverride
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("schedule: unmarshal override: %w", err)
	}
	return &o, nil
}

// SaveOverride stores a location override for a resource.
func (s *Store) SaveOverride(ctx context.Context, resourceID string, o BranchOverride) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("schedule: marshal override: %w", err)
	}
	if err := s.redis.Set(ctx, s.overrideKey(resourceID, o.LocationID), data, 0).Err(); err != nil {
		return fmt.Errorf("schedule: save override: %w", err)
	}
	return nil
}
