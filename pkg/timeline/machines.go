package timeline

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
)

// Key and display name of the synthesized row holding jobs without a machine
const (
	UnassignedKey  = "unassigned"
	UnassignedName = "Unassigned"
)

// MachineKey returns the identity of a machine row. Nil or blank machines map to UnassignedKey.
func MachineKey(m *models.Machine) string {
	if !isAssigned(m) {
		return UnassignedKey
	}
	return strings.ToLower(strings.TrimSpace(m.MachineID))
}

func isAssigned(m *models.Machine) bool {
	return m != nil && strings.TrimSpace(m.MachineID) != ""
}

// DisplayName is the label shown for a machine row
func DisplayName(m models.Machine) string {
	if name := strings.TrimSpace(m.Name); name != "" {
		return name
	}
	return m.MachineID
}

type machineEntry struct {
	key     string
	machine models.Machine
}

// BuildMachines returns the deduplicated machine rows of a schedule sorted by display name.
// Explicit machines win over machines referenced by scheduled jobs, explicit machines without
// an id are skipped, and an Unassigned row is added when at least one job has no machine.
func BuildMachines(schedule *models.Schedule) []models.Machine {
	if schedule == nil {
		return nil
	}

	byKey := make(map[string]models.Machine)
	for i := range schedule.Machines {
		// no job can reference a machine without an id
		if !isAssigned(&schedule.Machines[i]) {
			continue
		}
		key := MachineKey(&schedule.Machines[i])
		if _, ok := byKey[key]; !ok {
			byKey[key] = schedule.Machines[i]
		}
	}

	missing := false
	for _, sj := range schedule.ScheduledJobs {
		if !isAssigned(sj.AssignedMachine) {
			missing = true
			continue
		}
		key := MachineKey(sj.AssignedMachine)
		if _, ok := byKey[key]; !ok {
			byKey[key] = *sj.AssignedMachine
		}
	}

	if missing {
		if _, ok := byKey[UnassignedKey]; !ok {
			byKey[UnassignedKey] = models.Machine{MachineID: UnassignedKey, Name: UnassignedName}
		}
	}

	entries := make([]machineEntry, 0, len(byKey))
	for key, m := range byKey {
		entries = append(entries, machineEntry{key: key, machine: m})
	}

	// collators are not safe for concurrent use
	col := collate.New(language.Und)
	sort.Slice(entries, func(i, j int) bool {
		if c := col.CompareString(DisplayName(entries[i].machine), DisplayName(entries[j].machine)); c != 0 {
			return c < 0
		}
		return entries[i].key < entries[j].key
	})

	out := make([]models.Machine, len(entries))
	for i, e := range entries {
		out[i] = e.machine
	}
	return out
}
