package handlers

import (
	"html/template"
	"net/url"
	"strconv"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/timeline"
)

var funcMap = template.FuncMap{
	"px":          px,
	"pct":         pct,
	"deref":       deref,
	"timelineURL": timelineURL,
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "px"
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 0, 64) + "%"
}

func deref(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func machineLabel(m *models.Machine) string {
	if m == nil || timeline.MachineKey(m) == timeline.UnassignedKey {
		return timeline.UnassignedName
	}
	return timeline.DisplayName(*m)
}

// timelineURL builds a link back to a timeline page with its zoom and selection
func timelineURL(base string, zoom float64, jobID string) string {
	q := url.Values{}
	q.Set("zoom", strconv.FormatFloat(zoom, 'f', -1, 64))
	if jobID != "" {
		q.Set("job", jobID)
	}
	return base + "?" + q.Encode()
}
