// Package cache keeps resolved (site, date) schedules in Redis between
// rule mutations. Invalidation is a per-site generation counter: every
// mutation bumps the counter, orphaning that site's cached days, which
// then age out by TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/schedule"
)

const effectiveTTL = 15 * time.Minute

type ScheduleCache struct {
	rdb *redis.Client
}

var _ schedule.Cache = (*ScheduleCache)(nil)

func New(addr, username, password string) *ScheduleCache {
	return &ScheduleCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Username: username,
			Password: password,
			DB:       0,
		}),
	}
}

// Ping verifies the connection at startup.
func (c *ScheduleCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *ScheduleCache) generation(ctx context.Context, siteID int) (int64, error) {
	return c.rdb.Get(ctx, fmt.Sprintf("sched:%d:gen", siteID)).Int64()
}

func (c *ScheduleCache) key(siteID int, gen int64, isoDate string) string {
	return fmt.Sprintf("sched:%d:%d:%s", siteID, gen, isoDate)
}

// GetEffective returns a cached resolution. Any Redis failure is a
// cache miss, never an error for the caller.
func (c *ScheduleCache) GetEffective(siteID int, isoDate string) (*schedule.Resolved, bool) {
	ctx := context.Background()
	gen, err := c.generation(ctx, siteID)
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Int("site_id", siteID).Msg("schedule cache generation read failed")
		}
		gen = 0
	}
	raw, err := c.rdb.Get(ctx, c.key(siteID, gen, isoDate)).Bytes()
	if err != nil {
		return nil, false
	}
	var resolved schedule.Resolved
	if err := json.Unmarshal(raw, &resolved); err != nil {
		log.Warn().Err(err).Int("site_id", siteID).Str("date", isoDate).Msg("schedule cache entry corrupt")
		return nil, false
	}
	return &resolved, true
}

func (c *ScheduleCache) SetEffective(siteID int, isoDate string, r *schedule.Resolved) {
	ctx := context.Background()
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	gen, err := c.generation(ctx, siteID)
	if err != nil {
		gen = 0
	}
	if err := c.rdb.Set(ctx, c.key(siteID, gen, isoDate), raw, effectiveTTL).Err(); err != nil {
		log.Warn().Err(err).Int("site_id", siteID).Msg("schedule cache write failed")
	}
}

// Invalidate bumps the site's generation so every cached day for the
// site stops matching.
func (c *ScheduleCache) Invalidate(siteID int) {
	ctx := context.Background()
	if err := c.rdb.Incr(ctx, fmt.Sprintf("sched:%d:gen", siteID)).Err(); err != nil {
		log.Warn().Err(err).Int("site_id", siteID).Msg("schedule cache invalidation failed")
	}
}
