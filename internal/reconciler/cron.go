package reconciler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCron — каждые 5 минут.
const DefaultCron = "*/5 * * * *"

// cronParser — стандартный 5-польный формат (минута, час, день, месяц, день недели).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule разбирает cron-выражение.
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// NextTick возвращает время следующего тика после from (UTC).
func NextTick(expr string, from time.Time) (time.Time, error) {
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(from).UTC(), nil
}
