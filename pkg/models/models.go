package models

// Job is a job definition as stored by the scheduling backend
type Job struct {
	JobID                   string `json:"jobId"`
	Name                    string `json:"name"`
	Description             string `json:"description,omitempty"`
	DurationMinutes         *int   `json:"durationMinutes,omitempty"`
	Deadline                string `json:"deadline,omitempty"`
	RequiredMachineTypeUUID string `json:"requiredMachineTypeUuid,omitempty"`
}

// Machine represents a machine jobs can be assigned to
type Machine struct {
	MachineID   string `json:"machineId"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// MachineType groups machines with the same capabilities
type MachineType struct {
	MachineTypeUUID string `json:"machineTypeUuid"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
}

// StartingTimeGrain describes when a scheduled job starts.
// The three fields are not guaranteed to agree with each other: StartingMinuteOfDay may be an
// absolute clock minute, a minute relative to the business window, or absent.
type StartingTimeGrain struct {
	GrainIndex          *int   `json:"grainIndex,omitempty"`
	StartingMinuteOfDay *int   `json:"startingMinuteOfDay,omitempty"`
	Date                string `json:"date,omitempty"`
}

// ScheduledJob is one job instance placed on the weekly schedule
type ScheduledJob struct {
	ID                string             `json:"id"`
	Job               Job                `json:"job"`
	AssignedMachine   *Machine           `json:"assignedMachine,omitempty"`
	StartingTimeGrain *StartingTimeGrain `json:"startingTimeGrain,omitempty"`
	DurationInGrains  *int               `json:"durationInGrains,omitempty"`
}

// Schedule is the solver output for one calendar week
type Schedule struct {
	ScheduleID       string         `json:"scheduleId"`
	WeekStartDate    string         `json:"weekStartDate"`
	LastModifiedDate string         `json:"lastModifiedDate,omitempty"`
	CreatedBy        string         `json:"createdBy,omitempty"`
	Machines         []Machine      `json:"machines,omitempty"`
	ScheduledJobs    []ScheduledJob `json:"scheduledJobs"`
}

// SolveRequest is the payload for asking the backend to solve a week
type SolveRequest struct {
	WeekStartDate string `json:"weekStartDate" form:"weekStartDate" binding:"required"`
}

// LoginRequest carries dashboard credentials
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
