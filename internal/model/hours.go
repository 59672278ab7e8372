package model

// Weekday tags used by the hours table's "Days of Week" multi-select
const (
	Mon = "Mon"
	Tue = "Tue"
	Wed = "Wed"
	Thu = "Thu"
	Fri = "Fri"
	Sat = "Sat"
	Sun = "Sun"
)

// WeekdayOrder is the canonical ordering of weekday tags
var WeekdayOrder = []string{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

// HoursEntry represents one schedule row from the hours table
type HoursEntry struct {
	ID         string
	Label      string
	Days       string // free-text descriptor, e.g. "Mon-Fri (Express testing)"
	DaysOfWeek []string
	Department string
	OpenTime   string
	CloseTime  string
	AllDay     bool
	Notes      string
	ClinicIDs  []string
}

// HasDay reports whether the entry's weekday tags include day
func (h *HoursEntry) HasDay(day string) bool {
	for _, d := range h.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// IsOrphan reports whether the entry is not linked to any clinic
func (h *HoursEntry) IsOrphan() bool {
	return len(h.ClinicIDs) == 0
}
