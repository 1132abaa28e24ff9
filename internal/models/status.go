package models

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
	StatusVerified   = "verified"
)

var ItemStatuses = []string{StatusOpen, StatusInProgress, StatusComplete, StatusVerified}

// validStatusTransitions is the fixed lifecycle graph. Self-transitions are
// not listed and therefore not permitted.
var validStatusTransitions = map[string][]string{
	StatusOpen:       {StatusInProgress, StatusComplete},
	StatusInProgress: {StatusComplete},
	StatusComplete:   {StatusVerified, StatusOpen},
	StatusVerified:   {StatusOpen},
}

// IsValidTransition reports whether a punch item may move from one status to
// another. Pure lookup; timestamp side effects belong to the lifecycle service.
func IsValidTransition(from, to string) bool {
	for _, next := range validStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
