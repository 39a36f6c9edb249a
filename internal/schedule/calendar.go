package schedule

import "time"

const dateFormat = "2006-01-02"

// Midnight truncates t to date precision in UTC. The whole engine works on
// midnight-UTC dates.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// prevWorkday steps one working day backward, skipping weekends.
func prevWorkday(dt time.Time) time.Time {
	switch dt.Weekday() {
	case time.Monday:
		return dt.AddDate(0, 0, -3)
	case time.Sunday:
		return dt.AddDate(0, 0, -2)
	default:
		return dt.AddDate(0, 0, -1)
	}
}

// nextWorkday steps one working day forward, skipping weekends.
func nextWorkday(dt time.Time) time.Time {
	switch dt.Weekday() {
	case time.Friday:
		return dt.AddDate(0, 0, 3)
	case time.Saturday:
		return dt.AddDate(0, 0, 2)
	default:
		return dt.AddDate(0, 0, 1)
	}
}

// clampEndToWorkday moves a placement end date off the weekend, backward.
func clampEndToWorkday(dt time.Time) time.Time {
	switch dt.Weekday() {
	case time.Saturday:
		return dt.AddDate(0, 0, -1)
	case time.Sunday:
		return dt.AddDate(0, 0, -2)
	default:
		return dt
	}
}

// clampStartToWorkday moves a placement start date off the weekend, forward.
func clampStartToWorkday(dt time.Time) time.Time {
	switch dt.Weekday() {
	case time.Saturday:
		return dt.AddDate(0, 0, 2)
	case time.Sunday:
		return dt.AddDate(0, 0, 1)
	default:
		return dt
	}
}
