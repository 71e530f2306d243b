// Package analytics aggregates priorities into the dashboard figures.
// Every function is pure; callers fetch the collections first.
package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"prioritytracker/internal/model"
	"prioritytracker/internal/week"
)

// UserStat summarizes one user's priorities.
type UserStat struct {
	UserID         uuid.UUID `json:"userId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	CompletionRate float64   `json:"completionRate"`
	AvgCompletion  float64   `json:"avgCompletion"`
}

// InitiativeStat counts the priorities tagged with one initiative.
type InitiativeStat struct {
	InitiativeID uuid.UUID `json:"initiativeId"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	Count        int       `json:"count"`
	Share        float64   `json:"share"`
}

// WeekStat is one row of the history view.
type WeekStat struct {
	WeekKey       string    `json:"week"`
	WeekStart     time.Time `json:"weekStart"`
	WeekEnd       time.Time `json:"weekEnd"`
	Label         string    `json:"label"`
	Count         int       `json:"count"`
	Completed     int       `json:"completed"`
	AvgCompletion float64   `json:"avgCompletion"`
}

// Summary is the dashboard header.
type Summary struct {
	Total         int                          `json:"total"`
	Completed     int                          `json:"completed"`
	AvgCompletion float64                      `json:"avgCompletion"`
	ByStatus      map[model.PriorityStatus]int `json:"byStatus"`
}

var hundred = decimal.NewFromInt(100)

// Percent returns part/whole*100 rounded to one decimal, or 0 when whole is 0.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(whole))).
		Round(1).
		InexactFloat64()
}

// Mean returns sum/count rounded to one decimal, or 0 when count is 0.
func Mean(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(count))).
		Round(1).
		InexactFloat64()
}

type tally struct {
	count      int
	completed  int
	percentSum int
}

func (t *tally) add(p model.Priority) {
	t.count++
	t.percentSum += p.CompletionPercentage
	if p.IsCompleted() {
		t.completed++
	}
}

// UserStats returns one row per user with role USER, in the order given.
func UserStats(users []model.User, priorities []model.Priority) []UserStat {
	byUser := make(map[uuid.UUID]*tally)
	for _, p := range priorities {
		t, ok := byUser[p.UserID]
		if !ok {
			t = &tally{}
			byUser[p.UserID] = t
		}
		t.add(p)
	}

	stats := make([]UserStat, 0, len(users))
	for _, u := range users {
		if u.Role != model.RoleUser {
			continue
		}
		stat := UserStat{UserID: u.ID, Name: u.Name, Email: u.Email}
		if t, ok := byUser[u.ID]; ok {
			stat.Total = t.count
			stat.Completed = t.completed
			stat.CompletionRate = Percent(t.completed, t.count)
			stat.AvgCompletion = Mean(t.percentSum, t.count)
		}
		stats = append(stats, stat)
	}
	return stats
}

// InitiativeStats counts priorities per initiative, most used first.
// Ties keep the order of the initiatives slice.
func InitiativeStats(initiatives []model.StrategicInitiative, priorities []model.Priority) []InitiativeStat {
	counts := make(map[uuid.UUID]int)
	for _, p := range priorities {
		counts[p.InitiativeID]++
	}

	stats := make([]InitiativeStat, 0, len(initiatives))
	for _, i := range initiatives {
		n := counts[i.ID]
		stats = append(stats, InitiativeStat{
			InitiativeID: i.ID,
			Name:         i.Name,
			Color:        i.Color,
			Count:        n,
			Share:        Percent(n, len(priorities)),
		})
	}
	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].Count > stats[b].Count
	})
	return stats
}

// History groups priorities by the date of their week start, newest week first.
// Week starts are converted to loc before grouping.
func History(priorities []model.Priority, loc *time.Location) []WeekStat {
	if loc == nil {
		loc = time.UTC
	}
	groups := make(map[string]*tally)
	weeks := make(map[string]week.Week)
	for _, p := range priorities {
		w := week.Of(p.WeekStart.In(loc))
		key := week.DateKey(w.Start)
		t, ok := groups[key]
		if !ok {
			t = &tally{}
			groups[key] = t
			weeks[key] = w
		}
		t.add(p)
	}

	history := make([]WeekStat, 0, len(groups))
	for key, t := range groups {
		w := weeks[key]
		history = append(history, WeekStat{
			WeekKey:       key,
			WeekStart:     w.Start,
			WeekEnd:       w.End,
			Label:         w.Label(),
			Count:         t.count,
			Completed:     t.completed,
			AvgCompletion: Mean(t.percentSum, t.count),
		})
	}
	sort.Slice(history, func(a, b int) bool {
		return history[a].WeekKey > history[b].WeekKey
	})
	return history
}

// Summarize computes totals over priorities.
func Summarize(priorities []model.Priority) Summary {
	var t tally
	byStatus := map[model.PriorityStatus]int{
		model.StatusOnTrack:   0,
		model.StatusAtRisk:    0,
		model.StatusBlocked:   0,
		model.StatusCompleted: 0,
	}
	for _, p := range priorities {
		t.add(p)
		byStatus[p.Status]++
	}
	return Summary{
		Total:         t.count,
		Completed:     t.completed,
		AvgCompletion: Mean(t.percentSum, t.count),
		ByStatus:      byStatus,
	}
}
