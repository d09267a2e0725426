package service

import (
	"context"
	"encoding/json"
	"errors"
	"figview/internal/core/domain"
	"figview/internal/core/port"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	usageKeyPrefix  = "daily_usage_"
	usageDateLayout = "2006-01-02"
)

type Quota interface {
	Status(ctx context.Context, userID string) (domain.QuotaStatus, error)
	Allow(ctx context.Context, userID string) (bool, error)
	Increment(ctx context.Context, userID string) (domain.QuotaStatus, error)
}

// UsageQuota counts generations per user and day in a key-value store and compares the count
// against the limit held in the user's remote record.
type UsageQuota struct {
	store  port.KeyValueStore
	lookup port.RecordLookup
	now    func() time.Time
	mutex  *sync.Mutex

	// limits holds the last limit fetched per user, keyed to the day it was fetched.
	limits map[string]knownLimit
}

type knownLimit struct {
	date  string
	limit int
}

func NewUsageQuota(store port.KeyValueStore, lookup port.RecordLookup) *UsageQuota {
	return &UsageQuota{
		store:  store,
		lookup: lookup,
		now:    time.Now,
		mutex:  &sync.Mutex{},
		limits: make(map[string]knownLimit),
	}
}

func usageKey(userID string) string {
	return usageKeyPrefix + userID
}

// load returns today's record for the user. A stored record from another day counts as zero.
func (q *UsageQuota) load(userID string) (domain.UsageRecord, error) {
	today := q.now().Format(usageDateLayout)

	raw, ok, err := q.store.Get(usageKey(userID))
	if err != nil {
		return domain.UsageRecord{}, fmt.Errorf("error reading usage record: %w", err)
	}
	if !ok {
		return domain.UsageRecord{Date: today}, nil
	}

	var record domain.UsageRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("discarding unreadable usage record")
		return domain.UsageRecord{Date: today}, nil
	}

	if record.Date != today {
		log.Debug().Str("user", userID).Str("stored", record.Date).Msg("resetting usage for new day")
		return domain.UsageRecord{Date: today}, nil
	}

	return record, nil
}

func (q *UsageQuota) save(userID string, record domain.UsageRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error encoding usage record: %w", err)
	}

	if err := q.store.Set(usageKey(userID), string(raw)); err != nil {
		return fmt.Errorf("error writing usage record: %w", err)
	}

	return nil
}

// limit fetches the daily limit. A missing or expired record allows nothing.
func (q *UsageQuota) limit(ctx context.Context, userID string) (int, error) {
	info, err := q.lookup.RecordInfo(ctx, userID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		log.Warn().Str("user", userID).Msg("no record for user")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error fetching usage limit: %w", err)
	}

	if !info.Expires.IsZero() && q.now().After(info.Expires) {
		log.Warn().Str("user", userID).Time("expires", info.Expires).Msg("record expired")
		return 0, nil
	}

	return info.Limit, nil
}

func (q *UsageQuota) status(ctx context.Context, userID string) (domain.QuotaStatus, error) {
	if userID == "" {
		return domain.QuotaStatus{Unlimited: true, Date: q.now().Format(usageDateLayout)}, nil
	}

	record, err := q.load(userID)
	if err != nil {
		return domain.QuotaStatus{}, err
	}

	limit, err := q.limit(ctx, userID)
	if err != nil {
		return domain.QuotaStatus{}, err
	}
	q.remember(userID, record.Date, limit)

	return domain.QuotaStatus{
		UserID: userID,
		Used:   record.Count,
		Limit:  limit,
		Date:   record.Date,
	}, nil
}

func (q *UsageQuota) remember(userID, date string, limit int) {
	if q.limits == nil {
		q.limits = make(map[string]knownLimit)
	}
	q.limits[userID] = knownLimit{date: date, limit: limit}
}

func (q *UsageQuota) Status(ctx context.Context, userID string) (domain.QuotaStatus, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.status(ctx, userID)
}

func (q *UsageQuota) Allow(ctx context.Context, userID string) (bool, error) {
	status, err := q.Status(ctx, userID)
	if err != nil {
		return false, err
	}

	if !status.Unlimited && status.Used >= status.Limit {
		log.Info().Str("user", userID).Int("used", status.Used).Int("limit", status.Limit).
			Msg("daily usage limit reached")
		return false, nil
	}

	return true, nil
}

// Increment records one more generation for today. Untracked users are left alone.
// The limit from today's last lookup is reused; when there is none and the lookup fails,
// the returned status still carries the saved count alongside ErrLimitUnavailable.
func (q *UsageQuota) Increment(ctx context.Context, userID string) (domain.QuotaStatus, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if userID == "" {
		return q.status(ctx, userID)
	}

	record, err := q.load(userID)
	if err != nil {
		return domain.QuotaStatus{}, err
	}

	record.Count++
	if err := q.save(userID, record); err != nil {
		return domain.QuotaStatus{}, err
	}

	log.Debug().Str("user", userID).Int("count", record.Count).Msg("usage incremented")

	status := domain.QuotaStatus{
		UserID: userID,
		Used:   record.Count,
		Date:   record.Date,
	}

	if known, ok := q.limits[userID]; ok && known.date == record.Date {
		status.Limit = known.limit
		return status, nil
	}

	limit, err := q.limit(ctx, userID)
	if err != nil {
		return status, fmt.Errorf("%w: %w", domain.ErrLimitUnavailable, err)
	}
	q.remember(userID, record.Date, limit)
	status.Limit = limit

	return status, nil
}
