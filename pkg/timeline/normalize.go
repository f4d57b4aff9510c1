package timeline

import (
	"math"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
)

// minuteSanityBound limits relative minutes coming from corrupt payloads
const minuteSanityBound = 24 * 60

// NormalizeJob returns a copy of sj whose starting minute is relative to the window opening
// and whose date is YYYY-MM-DD (or empty when unparsable). Jobs whose start cannot be resolved
// are returned unchanged.
//
// Backends have sent both absolute clock minutes and window-relative minutes without saying
// which. A value inside [open, close] is read as absolute; a value in [0, open) is read as
// already relative. A value like 30 is therefore always treated as 07:30, never 00:30.
func NormalizeJob(sj models.ScheduledJob, grainLength int, w Window) models.ScheduledJob {
	raw, ok := rawStartMinute(sj.StartingTimeGrain, grainLength)
	if !ok {
		return sj
	}

	grain := *sj.StartingTimeGrain
	grain.StartingMinuteOfDay = models.IntPtr(w.relativeMinute(raw))
	if date, ok := NormalizeDateOnlyISO(grain.Date); ok {
		grain.Date = date
	} else {
		grain.Date = ""
	}
	sj.StartingTimeGrain = &grain
	return sj
}

// NormalizeJobs applies NormalizeJob to every job
func NormalizeJobs(jobs []models.ScheduledJob, grainLength int, w Window) []models.ScheduledJob {
	out := make([]models.ScheduledJob, len(jobs))
	for i, sj := range jobs {
		out[i] = NormalizeJob(sj, grainLength, w)
	}
	return out
}

func rawStartMinute(g *models.StartingTimeGrain, grainLength int) (int, bool) {
	if g == nil {
		return 0, false
	}
	if g.StartingMinuteOfDay != nil {
		return *g.StartingMinuteOfDay, true
	}
	if g.GrainIndex != nil {
		return int(math.Round(float64(*g.GrainIndex) * float64(grainLength))), true
	}
	return 0, false
}

func (w Window) relativeMinute(raw int) int {
	span := w.Span()
	var rel int
	switch {
	case raw >= w.OpenMinute && raw <= w.OpenMinute+span:
		rel = raw - w.OpenMinute
	case raw >= 0 && raw < w.OpenMinute:
		rel = clampInt(raw, 0, span)
	default:
		rel = raw
	}
	return clampInt(rel, -minuteSanityBound, minuteSanityBound)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
