package rateio

import "time"

const dateLayout = "2006-01-02"

// Week inclusive 7-day window
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekWindow returns the week containing day, anchored on the given weekday
func WeekWindow(day time.Time, anchor time.Weekday) Week {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) - int(anchor) + 7) % 7
	start := d.AddDate(0, 0, -offset)
	return Week{Start: start, End: start.AddDate(0, 0, 6)}
}

// WeekOf parses a YYYY-MM-DD date and returns its week
func WeekOf(date string, anchor time.Weekday) (Week, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return Week{}, err
	}
	return WeekWindow(day, anchor), nil
}

// StartDate week start as YYYY-MM-DD
func (w Week) StartDate() string { return w.Start.Format(dateLayout) }

// EndDate week end as YYYY-MM-DD
func (w Week) EndDate() string { return w.End.Format(dateLayout) }

// Contains reports whether a YYYY-MM-DD date falls inside the week
func (w Week) Contains(date string) bool {
	if len(date) < len(dateLayout) {
		return false
	}
	d := date[:len(dateLayout)]
	return d >= w.StartDate() && d <= w.EndDate()
}

// Next the following week
func (w Week) Next() Week {
	return Week{Start: w.Start.AddDate(0, 0, 7), End: w.End.AddDate(0, 0, 7)}
}

// Prev the previous week
func (w Week) Prev() Week {
	return Week{Start: w.Start.AddDate(0, 0, -7), End: w.End.AddDate(0, 0, -7)}
}
