package domain

import (
	"time"
)

const (
	// MaxDailyBuckets is the rolling window size of daily_clicks arrays.
	MaxDailyBuckets = 30
	// MaxTrackedSessions bounds the dedup list.
	MaxTrackedSessions = 100

	dayLayout = "2006-01-02"
)

// ClickType distinguishes on-page clicks from outbound visits.
type ClickType string

const (
	ClickTypeClick    ClickType = "click"
	ClickTypeOutbound ClickType = "outbound"
)

// Valid reports whether t is a known click type.
func (t ClickType) Valid() bool {
	return t == ClickTypeClick || t == ClickTypeOutbound
}

// DailyCount is one bucket of the rolling window.
type DailyCount struct {
	Date   string `bson:"date" json:"date"`
	Clicks int64  `bson:"clicks" json:"clicks"`
}

// TrackedSession marks a session that was already counted on Date for Type.
type TrackedSession struct {
	SessionID string    `bson:"sessionId" json:"sessionId"`
	Date      string    `bson:"date" json:"date"`
	Type      ClickType `bson:"type" json:"type"`
}

// ClickRecord holds the aggregated counters of one launch.
type ClickRecord struct {
	LaunchID            int64            `gorm:"primaryKey;column:launch_id;autoIncrement:false" bson:"launchId" json:"launchId"`
	AllTime             int64            `gorm:"column:all_time;not null;default:0" bson:"all_time" json:"all_time"`
	AllTimeOutbound     int64            `gorm:"column:all_time_outbound;not null;default:0" bson:"all_time_outbound" json:"all_time_outbound"`
	DailyClicks         []DailyCount     `gorm:"column:daily_clicks;type:jsonb;serializer:json" bson:"daily_clicks" json:"daily_clicks"`
	DailyOutboundClicks []DailyCount     `gorm:"column:daily_outbound_clicks;type:jsonb;serializer:json" bson:"daily_outbound_clicks" json:"daily_outbound_clicks"`
	TrackedSessions     []TrackedSession `gorm:"column:tracked_sessions;type:jsonb;serializer:json" bson:"trackedSessions" json:"trackedSessions"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (ClickRecord) TableName() string {
	return "click_records"
}

// DayKey returns the zero-padded UTC day string used for buckets.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// HasSession reports whether sessionID was already counted on day for t.
func (r *ClickRecord) HasSession(sessionID, day string, t ClickType) bool {
	for _, s := range r.TrackedSessions {
		if s.SessionID == sessionID && s.Date == day && s.Type == t {
			return true
		}
	}
	return false
}

// Apply records one event on day. It returns false and leaves the record
// untouched when the session was already counted for that day and type.
func (r *ClickRecord) Apply(sessionID string, t ClickType, day string) bool {
	if r.HasSession(sessionID, day, t) {
		return false
	}

	if t == ClickTypeOutbound {
		r.AllTimeOutbound++
		r.DailyOutboundClicks = incrementBucket(r.DailyOutboundClicks, day)
	} else {
		r.AllTime++
		r.DailyClicks = incrementBucket(r.DailyClicks, day)
	}

	r.TrackedSessions = append(r.TrackedSessions, TrackedSession{SessionID: sessionID, Date: day, Type: t})
	if len(r.TrackedSessions) > MaxTrackedSessions {
		r.TrackedSessions = r.TrackedSessions[len(r.TrackedSessions)-MaxTrackedSessions:]
	}
	return true
}

func incrementBucket(buckets []DailyCount, day string) []DailyCount {
	for i := range buckets {
		if buckets[i].Date == day {
			buckets[i].Clicks++
			return buckets
		}
	}

	buckets = append(buckets, DailyCount{Date: day, Clicks: 1})
	if len(buckets) > MaxDailyBuckets {
		buckets = buckets[len(buckets)-MaxDailyBuckets:]
	}
	return buckets
}

// ClickStats are window sums derived from a ClickRecord.
type ClickStats struct {
	AllTime   int64 `json:"all_time"`
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"this_week"`
	LastWeek  int64 `json:"last_week"`
	ThisMonth int64 `json:"this_month"`

	AllTimeOutbound   int64 `json:"all_time_outbound"`
	TodayOutbound     int64 `json:"today_outbound"`
	ThisWeekOutbound  int64 `json:"this_week_outbound"`
	LastWeekOutbound  int64 `json:"last_week_outbound"`
	ThisMonthOutbound int64 `json:"this_month_outbound"`
}

// StatWindows holds the inclusive day boundaries used by ComputeStats.
type StatWindows struct {
	Today         string
	WeekStart     string
	LastWeekStart string
	LastWeekEnd   string
	MonthStart    string
}

// WindowsAt computes the UTC windows for now. Weeks start on Monday and
// Sunday is the seventh day of the week that began six days earlier.
func WindowsAt(now time.Time) StatWindows {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := today.AddDate(0, 0, -(weekday - 1))

	return StatWindows{
		Today:         today.Format(dayLayout),
		WeekStart:     monday.Format(dayLayout),
		LastWeekStart: monday.AddDate(0, 0, -7).Format(dayLayout),
		LastWeekEnd:   monday.AddDate(0, 0, -1).Format(dayLayout),
		MonthStart:    time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).Format(dayLayout),
	}
}

// ComputeStats derives window sums for record at now. A nil record yields zeros.
func ComputeStats(record *ClickRecord, now time.Time) ClickStats {
	var stats ClickStats
	if record == nil {
		return stats
	}

	w := WindowsAt(now)

	stats.AllTime = record.AllTime
	stats.Today = sumBetween(record.DailyClicks, w.Today, w.Today)
	stats.ThisWeek = sumBetween(record.DailyClicks, w.WeekStart, w.Today)
	stats.LastWeek = sumBetween(record.DailyClicks, w.LastWeekStart, w.LastWeekEnd)
	stats.ThisMonth = sumBetween(record.DailyClicks, w.MonthStart, w.Today)

	stats.AllTimeOutbound = record.AllTimeOutbound
	stats.TodayOutbound = sumBetween(record.DailyOutboundClicks, w.Today, w.Today)
	stats.ThisWeekOutbound = sumBetween(record.DailyOutboundClicks, w.WeekStart, w.Today)
	stats.LastWeekOutbound = sumBetween(record.DailyOutboundClicks, w.LastWeekStart, w.LastWeekEnd)
	stats.ThisMonthOutbound = sumBetween(record.DailyOutboundClicks, w.MonthStart, w.Today)

	return stats
}

// sumBetween compares YYYY-MM-DD strings lexically, inclusive on both ends.
func sumBetween(buckets []DailyCount, from, to string) int64 {
	var total int64
	for _, b := range buckets {
		if b.Date >= from && b.Date <= to {
			total += b.Clicks
		}
	}
	return total
}
