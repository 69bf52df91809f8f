package valueobjects

// Mood is a coarse label derived from the current day's submission volume.
type Mood string

const (
	MoodRestless Mood = "restless"
	MoodActive   Mood = "active"
	MoodStirring Mood = "stirring"
	MoodCalm     Mood = "calm"
	MoodDormant  Mood = "dormant"
)

// MoodFromDaily maps a daily count onto a mood. Bands are checked from the
// highest threshold down with strict comparisons, so a count sitting exactly
// on a threshold belongs to the band below it.
func MoodFromDaily(daily int64) Mood {
	switch {
	case daily > 1000:
		return MoodRestless
	case daily > 500:
		return MoodActive
	case daily > 100:
		return MoodStirring
	case daily < 10:
		return MoodDormant
	default:
		return MoodCalm
	}
}

// String implements fmt.Stringer
func (m Mood) String() string {
	return string(m)
}
