package workflows

// StateMachine enforces impact report status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewReportStateMachine creates the state machine for the report lifecycle
func NewReportStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"draft":     {"final"},
			"final":     {"certified", "archived"},
			"certified": {"archived"},
			"archived":  {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
