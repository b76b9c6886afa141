// Package stats computes derived views over day records: completion counts,
// consecutive-day streaks, monthly rollups and badge eligibility. Everything
// here is a pure function of its input; absent days count as zero activity.
package stats

import (
	"time"

	"mutabaah/backend/internal/model"
)

type StreakState struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type MonthlyRollup struct {
	Year         int                  `json:"year"`
	Month        int                  `json:"month"`
	ZikrTotal    int                  `json:"zikrTotal"`
	QuranMinutes int                  `json:"quranMinutes"`
	QuranPages   int                  `json:"quranPages"`
	PrayerDays   map[model.Prayer]int `json:"prayerDays"`
	DaysTracked  int                  `json:"daysTracked"`
}

type Badges struct {
	FajrChallenge   bool `json:"fajrChallenge"`
	ZikrMilestone   bool `json:"zikrMilestone"`
	QuranKhatmah    bool `json:"quranKhatmah"`
	CumulativePages int  `json:"cumulativePages"`
}

// DayPredicate reports whether a single day qualifies for a streak.
type DayPredicate func(rec *model.DayRecord) bool

// MosqueOnly qualifies a day when the given prayer was prayed in congregation.
// This is the challenge rule; praying at home does not count here.
func MosqueOnly(prayer model.Prayer) DayPredicate {
	return func(rec *model.DayRecord) bool {
		return rec != nil && rec.StatusOf(prayer).AtMosque()
	}
}

// PrayerCompleted qualifies a day when the given prayer was performed at all.
func PrayerCompleted(prayer model.Prayer) DayPredicate {
	return func(rec *model.DayRecord) bool {
		return rec != nil && rec.StatusOf(prayer).Completed()
	}
}

// AllCompleted qualifies a day when every one of the five prayers was performed.
func AllCompleted(rec *model.DayRecord) bool {
	return rec != nil && CompletionCount(rec) == len(model.Prayers)
}

// CompletionCount counts the prayers of a record performed at home or at the
// mosque.
func CompletionCount(rec *model.DayRecord) int {
	if rec == nil {
		return 0
	}
	count := 0
	for _, prayer := range model.Prayers {
		if rec.StatusOf(prayer).Completed() {
			count++
		}
	}
	return count
}

// Streak scans records for runs of consecutive qualifying days.
//
// Current counts backward day by day from target; the run ends at the first
// day that fails the predicate or has no record at all — a missing day breaks
// the streak, it is never skipped. Longest is the maximum run anywhere in the
// window from the earliest record through target, found in one forward pass
// with a counter that resets on any non-qualifying or missing day.
func Streak(records []model.DayRecord, target time.Time, qualifies DayPredicate) StreakState {
	byDate := indexByDate(records)
	targetDay := target.Format(model.DateLayout)

	state := StreakState{}
	for day := target; ; day = day.AddDate(0, 0, -1) {
		rec, ok := byDate[day.Format(model.DateLayout)]
		if !ok || !qualifies(rec) {
			break
		}
		state.Current++
	}

	if len(records) == 0 {
		return state
	}

	first, err := time.Parse(model.DateLayout, records[0].Date)
	if err != nil {
		return state
	}
	for _, rec := range records {
		if d, parseErr := time.Parse(model.DateLayout, rec.Date); parseErr == nil && d.Before(first) {
			first = d
		}
	}

	run := 0
	for day := first; day.Format(model.DateLayout) <= targetDay; day = day.AddDate(0, 0, 1) {
		rec, ok := byDate[day.Format(model.DateLayout)]
		if ok && qualifies(rec) {
			run++
			if run > state.Longest {
				state.Longest = run
			}
		} else {
			run = 0
		}
	}

	return state
}

// MonthlyRollupFor aggregates the records that fall inside (year, month).
// DaysTracked counts records present, not calendar days.
func MonthlyRollupFor(records []model.DayRecord, year, month int) MonthlyRollup {
	rollup := MonthlyRollup{
		Year:       year,
		Month:      month,
		PrayerDays: make(map[model.Prayer]int, len(model.Prayers)),
	}
	for _, prayer := range model.Prayers {
		rollup.PrayerDays[prayer] = 0
	}

	for i := range records {
		rec := &records[i]
		d, err := time.Parse(model.DateLayout, rec.Date)
		if err != nil || d.Year() != year || int(d.Month()) != month {
			continue
		}
		rollup.ZikrTotal += rec.ZikrCount
		rollup.QuranMinutes += rec.QuranMinutes
		rollup.DaysTracked++
		for _, prayer := range model.Prayers {
			if rec.StatusOf(prayer).Completed() {
				rollup.PrayerDays[prayer]++
			}
		}
	}

	rollup.QuranPages = rollup.QuranMinutes / model.MinutesPerPage
	return rollup
}

// BadgesFor evaluates badge eligibility over the full record history.
func BadgesFor(records []model.DayRecord, target time.Time) Badges {
	badges := Badges{}

	fajr := Streak(records, target, MosqueOnly(model.PrayerFajr))
	badges.FajrChallenge = fajr.Current >= model.FajrChallengeDays

	totalMinutes := 0
	for i := range records {
		if records[i].ZikrCount >= model.ZikrMilestoneCount {
			badges.ZikrMilestone = true
		}
		totalMinutes += records[i].QuranMinutes
	}
	badges.CumulativePages = totalMinutes / model.MinutesPerPage
	badges.QuranKhatmah = badges.CumulativePages >= model.QuranKhatmahPages

	return badges
}

func indexByDate(records []model.DayRecord) map[string]*model.DayRecord {
	byDate := make(map[string]*model.DayRecord, len(records))
	for i := range records {
		byDate[records[i].Date] = &records[i]
	}
	return byDate
}
