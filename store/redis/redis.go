// Package redis provides a Redis-backed UsageStore.
//
// Each (card, benefit) pair is one hash:
//
//	benefit_usage:{cardID}:{benefitID}
//	  {windowKey}:used  -> micro-units, only changed with HINCRBY
//	  {windowKey}:full  -> "1" or "0"
//	  {windowKey}:at    -> last update, unix nanoseconds
//
// Ignore overrides live in a second hash per pair:
//
//	benefit_ignore:{cardID}:{benefitID}
//	  ignored -> "1" or "0"
//	  at      -> unix nanoseconds
//
// Cards are not kept in Redis; pair this store with a CardStore.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
	"github.com/colinjianingxie/walletfreak-sub000/store"
)

const (
	usageKeyPrefix  = "benefit_usage:"
	ignoreKeyPrefix = "benefit_ignore:"

	fieldUsed    = "used"
	fieldFull    = "full"
	fieldAt      = "at"
	fieldIgnored = "ignored"
)

// clearIgnoredScript resets the ignore flag only when it is set and older
// than ARGV[1]. KEYS[1] is the ignore hash; ARGV[2] the new timestamp.
var clearIgnoredScript = redis.NewScript(`
local at = tonumber(redis.call('HGET', KEYS[1], 'at') or '0') or 0
if redis.call('HGET', KEYS[1], 'ignored') == '1' and at < tonumber(ARGV[1]) then
	redis.call('HSET', KEYS[1], 'ignored', '0', 'at', ARGV[2])
	return 1
end
return 0
`)

// UsageStore implements benefits.UsageStore on Redis hashes.
type UsageStore struct {
	client *redis.Client
}

// NewUsageStore wraps an existing client. The caller owns the client.
func NewUsageStore(client *redis.Client) *UsageStore {
	return &UsageStore{client: client}
}

func usageKey(card benefits.CardID, benefit benefits.BenefitID) string {
	return fmt.Sprintf("%s%s:%s", usageKeyPrefix, card, benefit)
}

func ignoreKey(card benefits.CardID, benefit benefits.BenefitID) string {
	return fmt.Sprintf("%s%s:%s", ignoreKeyPrefix, card, benefit)
}

func field(k engine.Key, name string) string {
	return string(k) + ":" + name
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Usage returns every window record for the pair.
func (s *UsageStore) Usage(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID) (map[engine.Key]engine.UsageRecord, error) {
	fields, err := s.client.HGetAll(ctx, usageKey(card, benefit)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	out := make(map[engine.Key]engine.UsageRecord)
	for f, v := range fields {
		i := strings.LastIndexByte(f, ':')
		if i < 0 {
			continue
		}
		k, name := engine.Key(f[:i]), f[i+1:]
		r := out[k]
		switch name {
		case fieldUsed:
			micros, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("window %s: bad used value %q: %w", k, v, err)
			}
			r.Used = store.FromMicros(micros)
		case fieldFull:
			r.IsFull = v == "1"
		case fieldAt:
			r.LastUpdated = parseNanos(v)
		default:
			continue
		}
		out[k] = r
	}
	return out, nil
}

// AddUsage increments the window's micro-unit counter with HINCRBY.
func (s *UsageStore) AddUsage(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID, key engine.Key, delta decimal.Decimal, at time.Time) error {
	hk := usageKey(card, benefit)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, hk, field(key, fieldUsed), store.ToMicros(delta))
		pipe.HSet(ctx, hk, field(key, fieldAt), at.UnixNano())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add usage: %w", err)
	}
	return nil
}

func (s *UsageStore) SetFull(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID, key engine.Key, full bool, at time.Time) error {
	err := s.client.HSet(ctx, usageKey(card, benefit),
		field(key, fieldFull), flag(full),
		field(key, fieldAt), at.UnixNano(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set full: %w", err)
	}
	return nil
}

func (s *UsageStore) ResetUsage(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID) error {
	if err := s.client.Del(ctx, usageKey(card, benefit)).Err(); err != nil {
		return fmt.Errorf("failed to reset usage: %w", err)
	}
	return nil
}

func (s *UsageStore) Ignore(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID) (engine.IgnoreOverride, error) {
	fields, err := s.client.HGetAll(ctx, ignoreKey(card, benefit)).Result()
	if err != nil {
		return engine.IgnoreOverride{}, fmt.Errorf("failed to load ignore override: %w", err)
	}
	return engine.IgnoreOverride{
		IsIgnored:   fields[fieldIgnored] == "1",
		LastUpdated: parseNanos(fields[fieldAt]),
	}, nil
}

func (s *UsageStore) SetIgnored(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID, ignored bool, at time.Time) error {
	err := s.client.HSet(ctx, ignoreKey(card, benefit),
		fieldIgnored, flag(ignored),
		fieldAt, at.UnixNano(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set ignored: %w", err)
	}
	return nil
}

func (s *UsageStore) ClearIgnoredBefore(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID, before, at time.Time) (bool, error) {
	n, err := clearIgnoredScript.Run(ctx, s.client,
		[]string{ignoreKey(card, benefit)},
		before.UnixNano(), at.UnixNano(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to clear ignored: %w", err)
	}
	return n == 1, nil
}

func parseNanos(v string) time.Time {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

var _ benefits.UsageStore = (*UsageStore)(nil)
