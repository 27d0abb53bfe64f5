// Package standings totals session points per player.
package standings

import (
	"sort"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/session"
)

// Row is one player's line in the session table.
type Row struct {
	PlayerID     uuid.UUID `json:"player_id"`
	Points       int       `json:"points"`
	WeeksPlayed  int       `json:"weeks_played"`
	WeeksAbsent  int       `json:"weeks_absent"`
	SpecialWeeks int       `json:"special_weeks"`
}

// Table is the session standings as of a week.
type Table struct {
	SessionStartWeek int   `json:"session_start_week"`
	ThroughWeek      int   `json:"through_week"`
	Rows             []Row `json:"rows"`
}

// Compute sums points over the session containing week, through week.
// On special-points weeks every entry earns the week's special points,
// halved for absent players, in place of its recorded points.
func Compute(weeks []model.Week, entries []model.ScoreEntry, week int) Table {
	start := session.SessionStart(weeks, week)
	special := make(map[int]int)
	for _, w := range weeks {
		if w.SpecialPoints != nil {
			special[w.Number] = *w.SpecialPoints
		}
	}

	rows := make(map[uuid.UUID]*Row)
	for _, e := range entries {
		if e.WeekNumber < start || e.WeekNumber > week {
			continue
		}
		r, ok := rows[e.PlayerID]
		if !ok {
			r = &Row{PlayerID: e.PlayerID}
			rows[e.PlayerID] = r
		}

		absent := model.IsAbsent(e.Outcome)
		if absent {
			r.WeeksAbsent++
		} else {
			r.WeeksPlayed++
		}

		if pts, ok := special[e.WeekNumber]; ok {
			r.SpecialWeeks++
			if absent {
				pts /= 2
			}
			r.Points += pts
			continue
		}
		r.Points += e.PointsEarned
	}

	t := Table{SessionStartWeek: start, ThroughWeek: week, Rows: make([]Row, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, *r)
	}
	sort.Slice(t.Rows, func(i, j int) bool {
		if t.Rows[i].Points != t.Rows[j].Points {
			return t.Rows[i].Points > t.Rows[j].Points
		}
		return t.Rows[i].PlayerID.String() < t.Rows[j].PlayerID.String()
	})
	return t
}
