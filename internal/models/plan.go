package models

const (
	PlanFree = "free"
	PlanPro  = "pro"
	PlanTeam = "team"
)

// Unlimited marks a quota with no cap (team plan).
const Unlimited = -1

type PlanLimits struct {
	PunchItemsPerMonth int
	ProjectsLimit      int
	AIEnabled          bool
}

// PlanLimitTable is the static plan -> quota mapping. The webhook processor
// copies PunchItemsPerMonth onto the user row when the plan changes.
var PlanLimitTable = map[string]PlanLimits{
	PlanFree: {PunchItemsPerMonth: 25, ProjectsLimit: 2, AIEnabled: false},
	PlanPro:  {PunchItemsPerMonth: 500, ProjectsLimit: 50, AIEnabled: true},
	PlanTeam: {PunchItemsPerMonth: Unlimited, ProjectsLimit: Unlimited, AIEnabled: true},
}
