package stats

import (
	"testing"
	"time"

	"mutabaah/backend/internal/model"
)

func day(t *testing.T, date string, fajr model.PrayerStatus) model.DayRecord {
	t.Helper()
	rec := model.NewDayRecord("user-1", date, time.Now())
	rec.FajrStatus = fajr
	return rec
}

func mustParse(t *testing.T, date string) time.Time {
	t.Helper()
	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		t.Fatalf("parse %s: %v", date, err)
	}
	return parsed
}

func TestStreakCurrentAndLongest(t *testing.T) {
	// Ten consecutive days: mosque x7, none, mosque x2, oldest to newest.
	statuses := []model.PrayerStatus{
		model.StatusMosque, model.StatusMosque, model.StatusMosque, model.StatusMosque,
		model.StatusMosque, model.StatusMosque, model.StatusMosque,
		model.StatusNone,
		model.StatusMosque, model.StatusMosque,
	}

	records := make([]model.DayRecord, 0, len(statuses))
	start := mustParse(t, "2025-03-01")
	for i, status := range statuses {
		date := start.AddDate(0, 0, i).Format(model.DateLayout)
		records = append(records, day(t, date, status))
	}

	target := start.AddDate(0, 0, len(statuses)-1)
	state := Streak(records, target, MosqueOnly(model.PrayerFajr))

	if state.Current != 2 {
		t.Fatalf("expected current streak 2, got %d", state.Current)
	}
	if state.Longest != 7 {
		t.Fatalf("expected longest streak 7, got %d", state.Longest)
	}
}

func TestStreakMissingDayBreaks(t *testing.T) {
	// Days N-2, N-1, N exist with mosque fajr; N-3 has no record at all.
	records := []model.DayRecord{
		day(t, "2025-03-07", model.StatusMosque),
		day(t, "2025-03-08", model.StatusMosque),
		day(t, "2025-03-09", model.StatusMosque),
		// 2025-03-06 intentionally absent; 2025-03-05 qualifies but must not
		// be reachable across the gap.
		day(t, "2025-03-05", model.StatusMosque),
	}

	state := Streak(records, mustParse(t, "2025-03-09"), MosqueOnly(model.PrayerFajr))
	if state.Current != 3 {
		t.Fatalf("expected current streak 3, got %d", state.Current)
	}
	if state.Longest != 3 {
		t.Fatalf("expected longest streak 3, got %d", state.Longest)
	}
}

func TestStreakHomeDoesNotCount(t *testing.T) {
	records := []model.DayRecord{
		day(t, "2025-03-08", model.StatusHome),
		day(t, "2025-03-09", model.StatusMosque),
	}

	state := Streak(records, mustParse(t, "2025-03-09"), MosqueOnly(model.PrayerFajr))
	if state.Current != 1 {
		t.Fatalf("expected mosque-only streak 1, got %d", state.Current)
	}

	completed := Streak(records, mustParse(t, "2025-03-09"), PrayerCompleted(model.PrayerFajr))
	if completed.Current != 2 {
		t.Fatalf("expected completed streak 2, got %d", completed.Current)
	}
}

func TestStreakEmpty(t *testing.T) {
	state := Streak(nil, mustParse(t, "2025-03-09"), MosqueOnly(model.PrayerFajr))
	if state.Current != 0 || state.Longest != 0 {
		t.Fatalf("expected zero streaks, got %+v", state)
	}
}

func TestCompletionCount(t *testing.T) {
	rec := model.NewDayRecord("user-1", "2025-03-09", time.Now())
	rec.FajrStatus = model.StatusMosque
	rec.DhuhrStatus = model.StatusHome
	rec.IshaStatus = model.StatusNone

	if got := CompletionCount(&rec); got != 2 {
		t.Fatalf("expected completion count 2, got %d", got)
	}
	if got := CompletionCount(nil); got != 0 {
		t.Fatalf("expected completion count 0 for nil record, got %d", got)
	}
}

func TestMonthlyRollupBoundary(t *testing.T) {
	lastOfMarch := day(t, "2025-03-31", model.StatusMosque)
	lastOfMarch.ZikrCount = 100
	lastOfMarch.QuranMinutes = 30

	firstOfApril := day(t, "2025-04-01", model.StatusMosque)
	firstOfApril.ZikrCount = 999
	firstOfApril.QuranMinutes = 45

	records := []model.DayRecord{lastOfMarch, firstOfApril}

	march := MonthlyRollupFor(records, 2025, 3)
	if march.DaysTracked != 1 {
		t.Fatalf("expected 1 day tracked in March, got %d", march.DaysTracked)
	}
	if march.ZikrTotal != 100 {
		t.Fatalf("expected March zikr 100, got %d", march.ZikrTotal)
	}
	if march.QuranPages != 30/model.MinutesPerPage {
		t.Fatalf("expected March pages %d, got %d", 30/model.MinutesPerPage, march.QuranPages)
	}
	if march.PrayerDays[model.PrayerFajr] != 1 {
		t.Fatalf("expected 1 fajr day in March, got %d", march.PrayerDays[model.PrayerFajr])
	}

	april := MonthlyRollupFor(records, 2025, 4)
	if april.ZikrTotal != 999 || april.DaysTracked != 1 {
		t.Fatalf("unexpected April rollup: %+v", april)
	}
}

func TestBadges(t *testing.T) {
	start := mustParse(t, "2025-01-01")
	records := make([]model.DayRecord, 0, model.FajrChallengeDays)
	for i := 0; i < model.FajrChallengeDays; i++ {
		records = append(records, day(t, start.AddDate(0, 0, i).Format(model.DateLayout), model.StatusMosque))
	}
	target := start.AddDate(0, 0, model.FajrChallengeDays-1)

	badges := BadgesFor(records, target)
	if !badges.FajrChallenge {
		t.Fatal("expected fajr challenge badge after 40 consecutive mosque days")
	}
	if badges.ZikrMilestone {
		t.Fatal("did not expect zikr milestone badge")
	}

	records[10].ZikrCount = model.ZikrMilestoneCount
	badges = BadgesFor(records, target)
	if !badges.ZikrMilestone {
		t.Fatal("expected zikr milestone badge")
	}

	records[0].QuranMinutes = model.QuranKhatmahPages * model.MinutesPerPage
	badges = BadgesFor(records, target)
	if !badges.QuranKhatmah {
		t.Fatalf("expected khatmah badge at %d cumulative pages", badges.CumulativePages)
	}
}
