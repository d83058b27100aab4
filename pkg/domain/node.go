package domain

// Kind identifies which kind of component a graph node is.
type Kind int

const (
	// KindState is a stable point where the machine rests between events.
	KindState Kind = iota
	// KindChoicepoint routes to one of two branches based on a decision.
	KindChoicepoint
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindChoicepoint:
		return "choicepoint"
	default:
		return "unknown"
	}
}

// Node describes one component of the graph.
// Ids are rendered with fmt.Sprint so the description is independent of the
// machine's id types.
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Kind Kind   `json:"kind" yaml:"kind"`

	// Parent is the id of the enclosing state, empty for root states and
	// always empty for choicepoints.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Initial marks the first registered state.
	Initial bool `json:"initial,omitempty" yaml:"initial,omitempty"`

	// Container marks a state that is the parent of at least one other state.
	Container bool `json:"container,omitempty" yaml:"container,omitempty"`

	// Edges are the outgoing transitions, in registration order.
	Edges []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}
