package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	apperrors "mutabaah/backend/internal/errors"
	"mutabaah/backend/internal/model"
	"mutabaah/backend/internal/repository"
	"mutabaah/backend/internal/stats"
	"mutabaah/backend/internal/watch"
)

// StatsService is the derived-data read surface. Results are memoized per
// query against a content fingerprint of the user's records plus a bounded
// TTL; change events from the hub invalidate a user's entries eagerly. The
// cache is purely an optimization: a miss always recomputes from the store.
type StatsService struct {
	repo   *repository.DayRepository
	ttl    time.Duration
	cancel func()

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	fingerprint uint64
	storedAt    time.Time
	value       interface{}
}

type FajrPoint struct {
	Date   string             `json:"date"`
	Status model.PrayerStatus `json:"status"`
}

const maxSeriesDays = 366

func NewStatsService(repo *repository.DayRepository, hub *watch.Hub, ttl time.Duration) *StatsService {
	s := &StatsService{
		repo:  repo,
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}

	events, cancel := hub.Subscribe()
	s.cancel = cancel
	go func() {
		for event := range events {
			s.invalidateUser(event.UserID)
		}
	}()

	return s
}

// Close detaches the service from the change hub.
func (s *StatsService) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Streaks computes current and longest runs for one prayer over a trailing
// window ending today. The streak rule is mosque-only: praying at home does
// not extend a streak.
func (s *StatsService) Streaks(ctx context.Context, userID, prayerRaw string, windowDays int) (*stats.StreakState, *apperrors.APIError) {
	prayer, ok := model.ParsePrayer(prayerRaw)
	if !ok {
		return nil, apperrors.BadRequest("invalid_prayer", "prayer must be one of fajr, dhuhr, asr, maghrib, isha")
	}
	if windowDays <= 0 || windowDays > 3650 {
		windowDays = 365
	}

	key := fmt.Sprintf("%s|streaks|%s|%d", userID, prayer, windowDays)
	value, apiErr := s.cached(ctx, userID, key, func() (interface{}, error) {
		now := time.Now()
		start := now.AddDate(0, 0, -(windowDays - 1)).Format(model.DateLayout)
		records, err := s.repo.GetRange(ctx, userID, start, model.Today(now))
		if err != nil {
			return nil, err
		}
		state := stats.Streak(records, now, stats.MosqueOnly(prayer))
		return &state, nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return value.(*stats.StreakState), nil
}

// Monthly aggregates one calendar month.
func (s *StatsService) Monthly(ctx context.Context, userID string, year, month int) (*stats.MonthlyRollup, *apperrors.APIError) {
	if year < 1 || month < 1 || month > 12 {
		return nil, apperrors.BadRequest("invalid_month", "year and month must name a calendar month")
	}

	key := fmt.Sprintf("%s|monthly|%04d-%02d", userID, year, month)
	value, apiErr := s.cached(ctx, userID, key, func() (interface{}, error) {
		start := fmt.Sprintf("%04d-%02d-01", year, month)
		end := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, 1, -1).Format(model.DateLayout)
		records, err := s.repo.GetRange(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		rollup := stats.MonthlyRollupFor(records, year, month)
		return &rollup, nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return value.(*stats.MonthlyRollup), nil
}

// FajrSeries returns one point per calendar day in [start, end], with absent
// days reported as none. Calendar and chart views consume this directly.
func (s *StatsService) FajrSeries(ctx context.Context, userID, start, end string) ([]FajrPoint, *apperrors.APIError) {
	if !model.ValidDate(start) || !model.ValidDate(end) || start > end {
		return nil, apperrors.BadRequest("invalid_range", "start and end must be YYYY-MM-DD with start <= end")
	}
	from, _ := time.Parse(model.DateLayout, start)
	to, _ := time.Parse(model.DateLayout, end)
	if to.Sub(from) > maxSeriesDays*24*time.Hour {
		return nil, apperrors.BadRequest("invalid_range", "range must not exceed one year")
	}

	key := fmt.Sprintf("%s|fajr-series|%s|%s", userID, start, end)
	value, apiErr := s.cached(ctx, userID, key, func() (interface{}, error) {
		records, err := s.repo.GetRange(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		byDate := make(map[string]model.PrayerStatus, len(records))
		for i := range records {
			byDate[records[i].Date] = records[i].FajrStatus
		}

		series := make([]FajrPoint, 0, int(to.Sub(from).Hours()/24)+1)
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			date := day.Format(model.DateLayout)
			status, ok := byDate[date]
			if !ok {
				status = model.StatusNone
			}
			series = append(series, FajrPoint{Date: date, Status: status})
		}
		return series, nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return value.([]FajrPoint), nil
}

// Badges evaluates badge eligibility over the user's full history.
func (s *StatsService) Badges(ctx context.Context, userID string) (*stats.Badges, *apperrors.APIError) {
	key := userID + "|badges"
	value, apiErr := s.cached(ctx, userID, key, func() (interface{}, error) {
		records, err := s.repo.GetAll(ctx, userID)
		if err != nil {
			return nil, err
		}
		badges := stats.BadgesFor(records, time.Now())
		return &badges, nil
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return value.(*stats.Badges), nil
}

// cached serves key from the memo cache when the user's table fingerprint is
// unchanged and the entry is younger than the TTL; otherwise it recomputes.
func (s *StatsService) cached(ctx context.Context, userID, key string, compute func() (interface{}, error)) (interface{}, *apperrors.APIError) {
	summary, err := s.repo.Summary(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to summarize day records")
	}

	fingerprint, err := hashstructure.Hash(summary, hashstructure.FormatV2, nil)
	if err != nil {
		return nil, apperrors.Internal("failed to fingerprint day records")
	}

	now := time.Now()
	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && entry.fingerprint == fingerprint && now.Sub(entry.storedAt) < s.ttl {
		return entry.value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, apperrors.Internal("failed to compute statistics")
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{fingerprint: fingerprint, storedAt: now, value: value}
	s.mu.Unlock()

	return value, nil
}

func (s *StatsService) invalidateUser(userID string) {
	prefix := userID + "|"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		if strings.HasPrefix(key, prefix) {
			delete(s.cache, key)
		}
	}
}
