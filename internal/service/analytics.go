package service

import (
	"math"
	"time"

	"github.com/taskflow/taskflow-go/internal/model"
)

const analyticsDays = 7

// computeAnalytics rolls up tasks as seen at now. Days are calendar days in
// now's location; the series ends with today.
func computeAnalytics(tasks []model.Task, now time.Time) model.Analytics {
	a := model.Analytics{Total: len(tasks)}

	for _, t := range tasks {
		switch t.Status {
		case model.StatusPending:
			a.StatusBreakdown.Pending++
		case model.StatusInProgress:
			a.StatusBreakdown.InProgress++
		case model.StatusCompleted:
			a.StatusBreakdown.Completed++
		}

		switch t.Priority {
		case model.PriorityLow:
			a.PriorityBreakdown.Low++
		case model.PriorityMedium:
			a.PriorityBreakdown.Medium++
		case model.PriorityHigh:
			a.PriorityBreakdown.High++
		case model.PriorityUrgent:
			a.PriorityBreakdown.Urgent++
		}

		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != model.StatusCompleted {
			a.Overdue++
		}
	}

	if a.Total > 0 {
		a.CompletionRate = int(math.Round(100 * float64(a.StatusBreakdown.Completed) / float64(a.Total)))
	}

	a.Daily = dailySeries(tasks, now)
	return a
}

func dailySeries(tasks []model.Task, now time.Time) []model.DailyActivity {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := today.AddDate(0, 0, -(analyticsDays - 1))

	daily := make([]model.DailyActivity, analyticsDays)
	for i := range daily {
		day := start.AddDate(0, 0, i)
		daily[i] = model.DailyActivity{
			Day:  day.Format("Mon"),
			Date: day.Format("2006-01-02"),
		}
	}

	for _, t := range tasks {
		created := t.CreatedAt.In(loc)
		if created.Before(start) || !created.Before(today.AddDate(0, 0, 1)) {
			continue
		}
		i := dayIndex(start, created)
		daily[i].Created++
		if t.Status == model.StatusCompleted {
			daily[i].Completed++
		}
	}

	return daily
}

// dayIndex counts calendar days from start to t. AddDate keeps it correct
// across DST changes, where a day is not 24 hours.
func dayIndex(start, t time.Time) int {
	i := 0
	for next := start.AddDate(0, 0, 1); !t.Before(next); next = next.AddDate(0, 0, 1) {
		i++
	}
	return i
}
