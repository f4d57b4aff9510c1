package timeline

import (
	"math"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
)

// DefaultGrainLength is used when no scheduled job allows deriving the grain
const DefaultGrainLength = 5

// DeriveGrainLength infers the backend's scheduling unit in minutes from the first job that
// carries both its duration in minutes and its duration in grains.
func DeriveGrainLength(schedule *models.Schedule) int {
	if schedule == nil {
		return DefaultGrainLength
	}
	for _, sj := range schedule.ScheduledJobs {
		if sj.Job.DurationMinutes == nil || sj.DurationInGrains == nil || *sj.DurationInGrains <= 0 {
			continue
		}
		grain := int(math.Round(float64(*sj.Job.DurationMinutes) / float64(*sj.DurationInGrains)))
		if grain < 1 {
			grain = 1
		}
		return grain
	}
	return DefaultGrainLength
}
