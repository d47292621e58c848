package rewards

import (
	"fmt"
	"time"

	"github.com/nutriwise/nutriwise-api/internal/catalog"
)

// cycleKey encodes the re-unlock window a timestamp falls in. Daily rewards
// key on the local calendar day, weekly ones on the ISO-8601 week. Two
// unlocks of the same reward collide exactly when their keys match.
func cycleKey(c catalog.Cycle, at time.Time) string {
	if c == catalog.CycleWeekly {
		year, week := at.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return at.Format("2006-01-02")
}

// startOfDay returns local midnight for the given time.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
