package model

import "time"

// Prayer identifies one of the five daily prayers.
type Prayer string

const (
	PrayerFajr    Prayer = "fajr"
	PrayerDhuhr   Prayer = "dhuhr"
	PrayerAsr     Prayer = "asr"
	PrayerMaghrib Prayer = "maghrib"
	PrayerIsha    Prayer = "isha"
)

// Prayers lists the five prayers in canonical day order.
var Prayers = []Prayer{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha}

func (p Prayer) IsValid() bool {
	switch p {
	case PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha:
		return true
	}
	return false
}

func ParsePrayer(raw string) (Prayer, bool) {
	p := Prayer(raw)
	return p, p.IsValid()
}

// PrayerStatus records where a prayer was performed, if at all.
type PrayerStatus string

const (
	StatusNone   PrayerStatus = "none"
	StatusHome   PrayerStatus = "home"
	StatusMosque PrayerStatus = "mosque"
)

func (s PrayerStatus) IsValid() bool {
	switch s {
	case StatusNone, StatusHome, StatusMosque:
		return true
	}
	return false
}

func ParsePrayerStatus(raw string) (PrayerStatus, bool) {
	s := PrayerStatus(raw)
	return s, s.IsValid()
}

// Completed is the general completion predicate: praying at home counts.
func (s PrayerStatus) Completed() bool {
	return s == StatusHome || s == StatusMosque
}

// AtMosque is the stricter congregation-only predicate used by streaks and
// challenges. Keep it separate from Completed; the two rules differ on purpose.
func (s PrayerStatus) AtMosque() bool {
	return s == StatusMosque
}

const (
	// QuranTaskMinutes is the daily recitation target behind the quran special task.
	QuranTaskMinutes = 15
	// ZikrTaskCount is the daily remembrance target behind the zikr special task.
	ZikrTaskCount = 100

	// MinutesPerPage converts recitation minutes into a page equivalent.
	MinutesPerPage = 15

	// FajrChallengeDays is the length of the mosque-only fajr challenge.
	FajrChallengeDays = 40
	// ZikrMilestoneCount marks a single-day zikr milestone.
	ZikrMilestoneCount = 1000
	// QuranKhatmahPages is the page count of a complete recitation.
	QuranKhatmahPages = 604
)

// DayRecord is the canonical per-user, per-date row holding all tracked
// activity for one calendar day. Dates use the YYYY-MM-DD form.
type DayRecord struct {
	UserID        string       `json:"userId"`
	Date          string       `json:"date"`
	FajrStatus    PrayerStatus `json:"fajrStatus"`
	DhuhrStatus   PrayerStatus `json:"dhuhrStatus"`
	AsrStatus     PrayerStatus `json:"asrStatus"`
	MaghribStatus PrayerStatus `json:"maghribStatus"`
	IshaStatus    PrayerStatus `json:"ishaStatus"`
	ZikrCount     int          `json:"zikrCount"`
	QuranMinutes  int          `json:"quranMinutes"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// NewDayRecord returns a record with every prayer unperformed and zero counts.
func NewDayRecord(userID, date string, now time.Time) DayRecord {
	return DayRecord{
		UserID:        userID,
		Date:          date,
		FajrStatus:    StatusNone,
		DhuhrStatus:   StatusNone,
		AsrStatus:     StatusNone,
		MaghribStatus: StatusNone,
		IshaStatus:    StatusNone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (r *DayRecord) StatusOf(p Prayer) PrayerStatus {
	switch p {
	case PrayerFajr:
		return r.FajrStatus
	case PrayerDhuhr:
		return r.DhuhrStatus
	case PrayerAsr:
		return r.AsrStatus
	case PrayerMaghrib:
		return r.MaghribStatus
	case PrayerIsha:
		return r.IshaStatus
	}
	return StatusNone
}

func (r *DayRecord) SetStatus(p Prayer, s PrayerStatus) {
	switch p {
	case PrayerFajr:
		r.FajrStatus = s
	case PrayerDhuhr:
		r.DhuhrStatus = s
	case PrayerAsr:
		r.AsrStatus = s
	case PrayerMaghrib:
		r.MaghribStatus = s
	case PrayerIsha:
		r.IshaStatus = s
	}
}

// DateLayout is the canonical calendar-day key format.
const DateLayout = "2006-01-02"

// Today returns the calendar-day key for now in the local day boundary.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

func ValidDate(date string) bool {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	return t.Format(DateLayout) == date
}
