package domain

// Edge describes one outgoing transition of a Node.
type Edge struct {
	To     string `json:"to" yaml:"to"`
	ToKind Kind   `json:"to_kind" yaml:"to_kind"`

	// Event is set for transitions leaving a state.
	Event string `json:"event,omitempty" yaml:"event,omitempty"`

	// Branch is set for transitions leaving a choicepoint.
	Branch *bool `json:"branch,omitempty" yaml:"branch,omitempty"`

	// HasAction reports whether the transition carries an action callback.
	HasAction bool `json:"has_action,omitempty" yaml:"has_action,omitempty"`
}

// Label returns the text used to annotate the edge: the event for state
// transitions, "true" or "false" for choicepoint branches.
func (e Edge) Label() string {
	if e.Branch != nil {
		if *e.Branch {
			return "true"
		}
		return "false"
	}
	return e.Event
}
