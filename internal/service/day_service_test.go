package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"mutabaah/backend/internal/db"
	"mutabaah/backend/internal/model"
	"mutabaah/backend/internal/repository"
	"mutabaah/backend/internal/service"
	"mutabaah/backend/internal/watch"
)

// failingSync simulates a remote API that is always down.
type failingSync struct {
	mu    sync.Mutex
	calls int
}

func (f *failingSync) bump() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("remote unreachable")
}

func (f *failingSync) SyncPrayerStatus(context.Context, string, string, model.Prayer, model.PrayerStatus) error {
	return f.bump()
}

func (f *failingSync) SyncZikrCount(context.Context, string, string, int) error {
	return f.bump()
}

func (f *failingSync) SyncQuranMinutes(context.Context, string, string, int) error {
	return f.bump()
}

func setupDayService(t *testing.T) (*service.DayService, *repository.DayRepository, string) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        "tester@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(context.Background(), &user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dayRepo := repository.NewDayRepository(database)
	dayService := service.NewDayService(dayRepo, watch.NewHub(), &failingSync{}, time.Second)
	return dayService, dayRepo, user.ID
}

func TestEnsureTodayIdempotentUnderConcurrency(t *testing.T) {
	dayService, dayRepo, userID := setupDayService(t)
	ctx := context.Background()

	const callers = 10
	views := make([]*service.DayView, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			view, apiErr := dayService.EnsureToday(ctx, userID)
			if apiErr != nil {
				t.Errorf("ensure today: %v", apiErr)
				return
			}
			views[i] = view
		}(i)
	}
	wg.Wait()

	today := model.Today(time.Now())
	for _, view := range views {
		if view == nil {
			t.Fatal("missing view from concurrent caller")
		}
		if view.Date != today || view.ZikrCount != 0 || view.QuranMinutes != 0 {
			t.Fatalf("unexpected view fields: %+v", view)
		}
	}

	records, err := dayRepo.GetAll(ctx, userID)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record for today, got %d", len(records))
	}
}

func TestToggleSpecialTaskThresholdRoundTrip(t *testing.T) {
	dayService, _, userID := setupDayService(t)
	ctx := context.Background()
	today := model.Today(time.Now())

	view, apiErr := dayService.ToggleSpecialTask(ctx, userID, today, "quran-daily")
	if apiErr != nil {
		t.Fatalf("first toggle: %v", apiErr)
	}
	if view.QuranMinutes != model.QuranTaskMinutes {
		t.Fatalf("expected %d minutes after first toggle, got %d", model.QuranTaskMinutes, view.QuranMinutes)
	}
	if !taskCompleted(t, view, "quran-daily") {
		t.Fatal("expected quran task completed after first toggle")
	}

	view, apiErr = dayService.ToggleSpecialTask(ctx, userID, today, "quran-daily")
	if apiErr != nil {
		t.Fatalf("second toggle: %v", apiErr)
	}
	if view.QuranMinutes != 0 {
		t.Fatalf("expected 0 minutes after round trip, got %d", view.QuranMinutes)
	}
	if taskCompleted(t, view, "quran-daily") {
		t.Fatal("expected quran task incomplete after round trip")
	}
}

func TestTogglePrayerTask(t *testing.T) {
	dayService, _, userID := setupDayService(t)
	ctx := context.Background()
	today := model.Today(time.Now())

	view, apiErr := dayService.ToggleSpecialTask(ctx, userID, today, "prayer-fajr")
	if apiErr != nil {
		t.Fatalf("toggle: %v", apiErr)
	}
	if view.FajrStatus != model.StatusMosque {
		t.Fatalf("expected mosque after toggle, got %s", view.FajrStatus)
	}

	// A status of home counts as done: toggling resets it to none rather than
	// promoting it to mosque.
	if _, apiErr = dayService.SetPrayerStatus(ctx, userID, today, "fajr", "home"); apiErr != nil {
		t.Fatalf("set status: %v", apiErr)
	}
	view, apiErr = dayService.ToggleSpecialTask(ctx, userID, today, "prayer-fajr")
	if apiErr != nil {
		t.Fatalf("toggle from home: %v", apiErr)
	}
	if view.FajrStatus != model.StatusNone {
		t.Fatalf("expected none after toggling a home status, got %s", view.FajrStatus)
	}
}

func TestSetZikrCountClampsNegative(t *testing.T) {
	dayService, _, userID := setupDayService(t)
	ctx := context.Background()
	today := model.Today(time.Now())

	view, apiErr := dayService.SetZikrCount(ctx, userID, today, -5)
	if apiErr != nil {
		t.Fatalf("set zikr: %v", apiErr)
	}
	if view.ZikrCount != 0 {
		t.Fatalf("expected clamped zikr count 0, got %d", view.ZikrCount)
	}
}

func TestMutationRejectsPastDates(t *testing.T) {
	dayService, _, userID := setupDayService(t)
	ctx := context.Background()

	_, apiErr := dayService.SetZikrCount(ctx, userID, "2020-01-01", 10)
	if apiErr == nil || apiErr.Code != "date_not_editable" {
		t.Fatalf("expected date_not_editable, got %+v", apiErr)
	}
}

func TestInvalidInputsRejected(t *testing.T) {
	dayService, _, userID := setupDayService(t)
	ctx := context.Background()
	today := model.Today(time.Now())

	if _, apiErr := dayService.SetPrayerStatus(ctx, userID, today, "breakfast", "mosque"); apiErr == nil || apiErr.Code != "invalid_prayer" {
		t.Fatalf("expected invalid_prayer, got %+v", apiErr)
	}
	if _, apiErr := dayService.SetPrayerStatus(ctx, userID, today, "fajr", "work"); apiErr == nil || apiErr.Code != "invalid_status" {
		t.Fatalf("expected invalid_status, got %+v", apiErr)
	}
	if _, apiErr := dayService.ToggleSpecialTask(ctx, userID, today, "nope"); apiErr == nil || apiErr.Code != "invalid_task" {
		t.Fatalf("expected invalid_task, got %+v", apiErr)
	}
}

func TestRemoteFailureDoesNotAffectLocalWrite(t *testing.T) {
	dayService, dayRepo, userID := setupDayService(t)
	ctx := context.Background()
	today := model.Today(time.Now())

	view, apiErr := dayService.SetPrayerStatus(ctx, userID, today, "fajr", "mosque")
	if apiErr != nil {
		t.Fatalf("expected local success despite failing remote, got %+v", apiErr)
	}
	if view.FajrStatus != model.StatusMosque {
		t.Fatalf("expected mosque, got %s", view.FajrStatus)
	}

	record, err := dayRepo.Get(ctx, userID, today)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.FajrStatus != model.StatusMosque {
		t.Fatalf("expected persisted mosque status, got %s", record.FajrStatus)
	}
}

func TestImportDayBackfillsPastDates(t *testing.T) {
	dayService, _, userID := setupDayService(t)
	ctx := context.Background()

	view, apiErr := dayService.ImportDay(ctx, userID, service.ImportDayInput{
		Date:         "2020-01-01",
		FajrStatus:   "mosque",
		DhuhrStatus:  "garbage",
		ZikrCount:    -3,
		QuranMinutes: 20,
	})
	if apiErr != nil {
		t.Fatalf("import: %v", apiErr)
	}
	if view.FajrStatus != model.StatusMosque {
		t.Fatalf("expected mosque fajr, got %s", view.FajrStatus)
	}
	if view.DhuhrStatus != model.StatusNone {
		t.Fatalf("expected unknown status normalized to none, got %s", view.DhuhrStatus)
	}
	if view.ZikrCount != 0 {
		t.Fatalf("expected negative count clamped to 0, got %d", view.ZikrCount)
	}
	if view.QuranMinutes != 20 {
		t.Fatalf("expected 20 quran minutes, got %d", view.QuranMinutes)
	}
}

func taskCompleted(t *testing.T, view *service.DayView, taskID string) bool {
	t.Helper()
	for _, task := range view.SpecialTasks {
		if task.ID == taskID {
			return task.Completed
		}
	}
	t.Fatalf("task %s not present in view", taskID)
	return false
}
