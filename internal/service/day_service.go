package service

import (
	"context"
	"log"
	"net/http"
	"time"

	apperrors "mutabaah/backend/internal/errors"
	"mutabaah/backend/internal/model"
	"mutabaah/backend/internal/repository"
	"mutabaah/backend/internal/stats"
	syncclient "mutabaah/backend/internal/sync"
	"mutabaah/backend/internal/watch"
)

// DayService owns the day record lifecycle and is the sole write path for
// prayer statuses, zikr counts and quran minutes. Writes are local-first:
// the record is committed before a single asynchronous best-effort attempt
// to mirror the change remotely.
type DayService struct {
	repo        *repository.DayRepository
	hub         *watch.Hub
	remote      syncclient.Client
	syncTimeout time.Duration
}

type DayView struct {
	model.DayRecord
	SpecialTasks     []model.SpecialTask `json:"specialTasks"`
	CompletedPrayers int                 `json:"completedPrayers"`
}

type ImportDayInput struct {
	Date          string `json:"date"`
	FajrStatus    string `json:"fajrStatus"`
	DhuhrStatus   string `json:"dhuhrStatus"`
	AsrStatus     string `json:"asrStatus"`
	MaghribStatus string `json:"maghribStatus"`
	IshaStatus    string `json:"ishaStatus"`
	ZikrCount     int    `json:"zikrCount"`
	QuranMinutes  int    `json:"quranMinutes"`
}

func NewDayService(
	repo *repository.DayRepository,
	hub *watch.Hub,
	remote syncclient.Client,
	syncTimeout time.Duration,
) *DayService {
	return &DayService{
		repo:        repo,
		hub:         hub,
		remote:      remote,
		syncTimeout: syncTimeout,
	}
}

// EnsureToday guarantees a record exists for the current calendar day and
// returns it. Losing a creation race against a concurrent caller is converted
// into a re-fetch; it never surfaces as an error.
func (s *DayService) EnsureToday(ctx context.Context, userID string) (*DayView, *apperrors.APIError) {
	now := time.Now()
	today := model.Today(now)

	record, err := s.repo.Get(ctx, userID, today)
	if err == nil {
		view := toDayView(record)
		return &view, nil
	}
	if err != repository.ErrNotFound {
		return nil, apperrors.Internal("failed to get day record")
	}

	fresh := model.NewDayRecord(userID, today, now.UTC())
	createErr := s.repo.Create(ctx, &fresh)
	if createErr == repository.ErrAlreadyExists {
		record, err = s.repo.Get(ctx, userID, today)
		if err != nil {
			return nil, apperrors.Internal("failed to get day record")
		}
		view := toDayView(record)
		return &view, nil
	}
	if createErr != nil {
		return nil, apperrors.Internal("failed to create day record")
	}

	s.hub.Publish(watch.Event{UserID: userID, Date: today})
	view := toDayView(&fresh)
	return &view, nil
}

// GetDay returns the record for a date. An absent date is presented as a day
// with no activity rather than an error; nothing is created.
func (s *DayService) GetDay(ctx context.Context, userID, date string) (*DayView, *apperrors.APIError) {
	if !model.ValidDate(date) {
		return nil, apperrors.BadRequest("invalid_date", "date must be YYYY-MM-DD")
	}

	record, err := s.repo.Get(ctx, userID, date)
	if err == repository.ErrNotFound {
		zero := model.NewDayRecord(userID, date, time.Time{})
		view := toDayView(&zero)
		return &view, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get day record")
	}

	view := toDayView(record)
	return &view, nil
}

// SetPrayerStatus writes one prayer's status for today, creating the record
// first when absent.
func (s *DayService) SetPrayerStatus(ctx context.Context, userID, date, prayerRaw, statusRaw string) (*DayView, *apperrors.APIError) {
	prayer, ok := model.ParsePrayer(prayerRaw)
	if !ok {
		return nil, apperrors.BadRequest("invalid_prayer", "prayer must be one of fajr, dhuhr, asr, maghrib, isha")
	}
	status, ok := model.ParsePrayerStatus(statusRaw)
	if !ok {
		return nil, apperrors.BadRequest("invalid_status", "status must be one of none, home, mosque")
	}

	record, apiErr := s.updateDay(ctx, userID, date, func(rec *model.DayRecord) {
		rec.SetStatus(prayer, status)
	})
	if apiErr != nil {
		return nil, apiErr
	}

	s.mirror("prayer status", func(ctx context.Context) error {
		return s.remote.SyncPrayerStatus(ctx, userID, date, prayer, status)
	})

	view := toDayView(record)
	return &view, nil
}

// SetZikrCount sets today's cumulative zikr count. Negative input is clamped
// to zero.
func (s *DayService) SetZikrCount(ctx context.Context, userID, date string, count int) (*DayView, *apperrors.APIError) {
	if count < 0 {
		count = 0
	}

	record, apiErr := s.updateDay(ctx, userID, date, func(rec *model.DayRecord) {
		rec.ZikrCount = count
	})
	if apiErr != nil {
		return nil, apiErr
	}

	s.mirror("zikr count", func(ctx context.Context) error {
		return s.remote.SyncZikrCount(ctx, userID, date, count)
	})

	view := toDayView(record)
	return &view, nil
}

// SetQuranMinutes sets today's cumulative recitation minutes. Negative input
// is clamped to zero.
func (s *DayService) SetQuranMinutes(ctx context.Context, userID, date string, minutes int) (*DayView, *apperrors.APIError) {
	if minutes < 0 {
		minutes = 0
	}

	record, apiErr := s.updateDay(ctx, userID, date, func(rec *model.DayRecord) {
		rec.QuranMinutes = minutes
	})
	if apiErr != nil {
		return nil, apiErr
	}

	s.mirror("quran minutes", func(ctx context.Context) error {
		return s.remote.SyncQuranMinutes(ctx, userID, date, minutes)
	})

	view := toDayView(record)
	return &view, nil
}

// ToggleSpecialTask flips a checklist task. Prayer tasks toggle the underlying
// status between none and mosque; a status of home counts as done and resets
// to none. Quran and zikr tasks are not boolean flips: toggling adds the
// task's threshold amount when the cumulative value sits below it and removes
// the amount (clamped at zero) when at or above. The read and write happen in
// one transaction so rapid repeated toggles cannot interleave.
func (s *DayService) ToggleSpecialTask(ctx context.Context, userID, date, taskID string) (*DayView, *apperrors.APIError) {
	task, ok := model.TaskByID(taskID)
	if !ok {
		return nil, apperrors.BadRequest("invalid_task", "unknown special task id")
	}

	record, apiErr := s.updateDay(ctx, userID, date, func(rec *model.DayRecord) {
		switch task.Category {
		case model.TaskCategoryPrayer:
			if rec.StatusOf(task.Prayer).Completed() {
				rec.SetStatus(task.Prayer, model.StatusNone)
			} else {
				rec.SetStatus(task.Prayer, model.StatusMosque)
			}
		case model.TaskCategoryQuran:
			if rec.QuranMinutes >= task.Threshold {
				rec.QuranMinutes -= task.Threshold
				if rec.QuranMinutes < 0 {
					rec.QuranMinutes = 0
				}
			} else {
				rec.QuranMinutes += task.Threshold
			}
		case model.TaskCategoryZikr:
			if rec.ZikrCount >= task.Threshold {
				rec.ZikrCount -= task.Threshold
				if rec.ZikrCount < 0 {
					rec.ZikrCount = 0
				}
			} else {
				rec.ZikrCount += task.Threshold
			}
		}
	})
	if apiErr != nil {
		return nil, apiErr
	}

	switch task.Category {
	case model.TaskCategoryPrayer:
		status := record.StatusOf(task.Prayer)
		s.mirror("prayer status", func(ctx context.Context) error {
			return s.remote.SyncPrayerStatus(ctx, userID, date, task.Prayer, status)
		})
	case model.TaskCategoryQuran:
		minutes := record.QuranMinutes
		s.mirror("quran minutes", func(ctx context.Context) error {
			return s.remote.SyncQuranMinutes(ctx, userID, date, minutes)
		})
	case model.TaskCategoryZikr:
		count := record.ZikrCount
		s.mirror("zikr count", func(ctx context.Context) error {
			return s.remote.SyncZikrCount(ctx, userID, date, count)
		})
	}

	view := toDayView(record)
	return &view, nil
}

// ImportDay is the backfill path. It upserts a record for any date, bypassing
// the today-only policy. Unknown statuses are normalized to none and negative
// counts clamped to zero; nothing is mirrored remotely.
func (s *DayService) ImportDay(ctx context.Context, userID string, input ImportDayInput) (*DayView, *apperrors.APIError) {
	if !model.ValidDate(input.Date) {
		return nil, apperrors.BadRequest("invalid_date", "date must be YYYY-MM-DD")
	}

	statuses := map[model.Prayer]model.PrayerStatus{
		model.PrayerFajr:    normalizeStatus(input.FajrStatus),
		model.PrayerDhuhr:   normalizeStatus(input.DhuhrStatus),
		model.PrayerAsr:     normalizeStatus(input.AsrStatus),
		model.PrayerMaghrib: normalizeStatus(input.MaghribStatus),
		model.PrayerIsha:    normalizeStatus(input.IshaStatus),
	}
	zikr := input.ZikrCount
	if zikr < 0 {
		zikr = 0
	}
	quran := input.QuranMinutes
	if quran < 0 {
		quran = 0
	}

	record, apiErr := s.applyUpdate(ctx, userID, input.Date, func(rec *model.DayRecord) {
		for prayer, status := range statuses {
			rec.SetStatus(prayer, status)
		}
		rec.ZikrCount = zikr
		rec.QuranMinutes = quran
	})
	if apiErr != nil {
		return nil, apiErr
	}

	view := toDayView(record)
	return &view, nil
}

// updateDay enforces the interactive-edit policy, then applies mutate inside
// one transaction.
func (s *DayService) updateDay(ctx context.Context, userID, date string, mutate func(*model.DayRecord)) (*model.DayRecord, *apperrors.APIError) {
	if !model.ValidDate(date) {
		return nil, apperrors.BadRequest("invalid_date", "date must be YYYY-MM-DD")
	}
	if date != model.Today(time.Now()) {
		return nil, apperrors.New(http.StatusForbidden, "date_not_editable", "only today can be edited")
	}
	return s.applyUpdate(ctx, userID, date, mutate)
}

// applyUpdate reads (or creates) the record and writes it back within a single
// transaction, then publishes exactly one change event.
func (s *DayService) applyUpdate(ctx context.Context, userID, date string, mutate func(*model.DayRecord)) (*model.DayRecord, *apperrors.APIError) {
	now := time.Now().UTC()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	record, err := s.repo.GetTx(ctx, tx, userID, date)
	if err == repository.ErrNotFound {
		fresh := model.NewDayRecord(userID, date, now)
		if createErr := s.repo.CreateTx(ctx, tx, &fresh); createErr != nil {
			return nil, apperrors.Internal("failed to create day record")
		}
		record = &fresh
	} else if err != nil {
		return nil, apperrors.Internal("failed to get day record")
	}

	mutate(record)
	record.UpdatedAt = now

	if err := s.repo.UpdateTx(ctx, tx, record); err != nil {
		return nil, apperrors.Internal("failed to update day record")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.hub.Publish(watch.Event{UserID: userID, Date: date})
	return record, nil
}

// mirror runs one bounded remote-sync attempt off the request path. Failures
// are logged and swallowed; the committed local write is never rolled back.
func (s *DayService) mirror(op string, call func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()
		if err := call(ctx); err != nil {
			log.Printf("remote sync (%s) failed: %v", op, err)
		}
	}()
}

func normalizeStatus(raw string) model.PrayerStatus {
	status, ok := model.ParsePrayerStatus(raw)
	if !ok {
		return model.StatusNone
	}
	return status
}

func toDayView(record *model.DayRecord) DayView {
	return DayView{
		DayRecord:        *record,
		SpecialTasks:     model.SpecialTasks(record),
		CompletedPrayers: stats.CompletionCount(record),
	}
}
