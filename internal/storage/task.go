package storage

import "time"

const DefaultExpReward uint32 = 25

type Task struct {
	Title        string      `bson:"title"`
	Description  string      `bson:"description"`
	Done         bool        `bson:"done"`
	ExpAwarded   bool        `bson:"exp_awarded"`
	CreationDate time.Time   `bson:"creation_date"`
	Preferences  Preferences `bson:"preferences"`
}

type Preferences struct {
	DailyRepeat bool      `bson:"daily_repeat"`
	Expire      time.Time `bson:"expire"`
	ExpReward   uint32    `bson:"exp_reward"`
}

// Entry is a task together with its store key.
type Entry struct {
	ID   string
	Task Task
}

type Account struct {
	Experience uint32 `bson:"experience"`
}

// NewTask returns an empty task created at now with default preferences.
func NewTask(now time.Time) Task {
	now = Timestamp(now)
	return Task{
		CreationDate: now,
		Preferences:  DefaultPreferences(now),
	}
}

func DefaultPreferences(now time.Time) Preferences {
	return Preferences{
		Expire:    DefaultExpire(now),
		ExpReward: DefaultExpReward,
	}
}

// DefaultExpire is the same wall-clock time tomorrow, rolling over month
// and year ends.
func DefaultExpire(now time.Time) time.Time {
	return Timestamp(now.AddDate(0, 0, 1))
}

// Expired reports whether the task is hidden from the list at now.
func (t Task) Expired(now time.Time) bool {
	return !t.Preferences.Expire.After(now)
}

// Timestamp truncates t to the precision the codec keeps and pins it to
// local time, so a stored task reads back equal to what was written.
func Timestamp(t time.Time) time.Time {
	return t.Truncate(time.Millisecond).Local()
}

func (t *Task) normalize() {
	t.CreationDate = Timestamp(t.CreationDate)
	t.Preferences.Expire = Timestamp(t.Preferences.Expire)
}
