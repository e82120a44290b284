package engine

import "fmt"

// Season constants.
const (
	SeasonSpring = 0
	SeasonSummer = 1
	SeasonAutumn = 2
	SeasonWinter = 3
)

var weekdayNames = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayEvent describes the in-game day that starts at Tick.
type DayEvent struct {
	Tick    uint64 `json:"tick"`
	Year    int    `json:"year"`
	Season  uint8  `json:"season"`
	Day     int    `json:"day"` // 1..DaysPerSeason
	Weekday string `json:"weekday"`
}

// DayOf returns the calendar day containing tick.
func DayOf(tick uint64) DayEvent {
	totalDays := tick / TicksPerSimDay
	seasons := totalDays / DaysPerSeason
	return DayEvent{
		Tick:    tick,
		Year:    int(seasons/SeasonsPerYear) + 1,
		Season:  uint8(seasons % SeasonsPerYear),
		Day:     int(totalDays%DaysPerSeason) + 1,
		Weekday: weekdayNames[totalDays%DaysPerWeek],
	}
}

// SeasonName returns a human-readable season name.
func SeasonName(season uint8) string {
	switch season {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonAutumn:
		return "Autumn"
	case SeasonWinter:
		return "Winter"
	default:
		return "Unknown"
	}
}

func (d DayEvent) String() string {
	return fmt.Sprintf("%s %s Day %d Year %d", d.Weekday, SeasonName(d.Season), d.Day, d.Year)
}

// SimTime returns a human-readable in-game time string from a tick number.
func SimTime(tick uint64) string {
	minutes := tick % 60
	hours := (tick / TicksPerSimHour) % 24
	return fmt.Sprintf("%s, %d:%02d", DayOf(tick), hours, minutes)
}
