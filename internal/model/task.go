package model

// TaskCategory classifies a special task by the field its completion derives from.
type TaskCategory string

const (
	TaskCategoryPrayer TaskCategory = "prayer"
	TaskCategoryQuran  TaskCategory = "quran"
	TaskCategoryZikr   TaskCategory = "zikr"
)

// SpecialTask is one entry of the fixed daily checklist. Completion is never
// stored; it is derived from the owning DayRecord on every read.
type SpecialTask struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Category  TaskCategory `json:"category"`
	Prayer    Prayer       `json:"prayer,omitempty"`
	Threshold int          `json:"threshold,omitempty"`
	Completed bool         `json:"completed"`
}

// taskTemplate is the fixed daily checklist, in display order.
var taskTemplate = []SpecialTask{
	{ID: "prayer-fajr", Title: "Pray Fajr", Category: TaskCategoryPrayer, Prayer: PrayerFajr},
	{ID: "prayer-dhuhr", Title: "Pray Dhuhr", Category: TaskCategoryPrayer, Prayer: PrayerDhuhr},
	{ID: "prayer-asr", Title: "Pray Asr", Category: TaskCategoryPrayer, Prayer: PrayerAsr},
	{ID: "prayer-maghrib", Title: "Pray Maghrib", Category: TaskCategoryPrayer, Prayer: PrayerMaghrib},
	{ID: "prayer-isha", Title: "Pray Isha", Category: TaskCategoryPrayer, Prayer: PrayerIsha},
	{ID: "quran-daily", Title: "Recite Quran", Category: TaskCategoryQuran, Threshold: QuranTaskMinutes},
	{ID: "zikr-daily", Title: "Daily zikr", Category: TaskCategoryZikr, Threshold: ZikrTaskCount},
}

// SpecialTasks materializes the daily checklist for a record, deriving each
// task's completion from the record's fields. A nil record yields the template
// with nothing completed, which is how absent days are presented.
func SpecialTasks(rec *DayRecord) []SpecialTask {
	tasks := make([]SpecialTask, len(taskTemplate))
	copy(tasks, taskTemplate)
	if rec == nil {
		return tasks
	}
	for i := range tasks {
		switch tasks[i].Category {
		case TaskCategoryPrayer:
			tasks[i].Completed = rec.StatusOf(tasks[i].Prayer).Completed()
		case TaskCategoryQuran:
			tasks[i].Completed = rec.QuranMinutes >= tasks[i].Threshold
		case TaskCategoryZikr:
			tasks[i].Completed = rec.ZikrCount >= tasks[i].Threshold
		}
	}
	return tasks
}

// TaskByID looks up a template entry. The second result reports whether the
// id names a known task.
func TaskByID(id string) (SpecialTask, bool) {
	for _, task := range taskTemplate {
		if task.ID == id {
			return task, true
		}
	}
	return SpecialTask{}, false
}
