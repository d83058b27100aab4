package definition

// Definition is the serialized form of a machine.
// The initial state is the first one registered. States are registered in
// list order, except that a parent listed after its child is registered just
// before that child, so listing a child first makes its parent initial.
type Definition struct {
	Name         string       `json:"name" mapstructure:"name"`
	States       []State      `json:"states" mapstructure:"states"`
	Choicepoints []Choice     `json:"choicepoints" mapstructure:"choicepoints"`
	Transitions  []Transition `json:"transitions" mapstructure:"transitions"`
}

// State declares a state, optionally nested under Parent.
type State struct {
	ID     string `json:"id" mapstructure:"id"`
	Parent string `json:"parent,omitempty" mapstructure:"parent"`
}

// Choice declares a choicepoint. Decision names a registry decision.
type Choice struct {
	ID       string `json:"id" mapstructure:"id"`
	Decision string `json:"decision" mapstructure:"decision"`
}

// Transition declares an edge.
//
// When From names a state, Event is required and Branch must be unset.
// When From names a choicepoint, Branch is required and Event must be unset.
// To resolves to a choicepoint when one with that id exists, otherwise to a
// state.
type Transition struct {
	Event  string `json:"event,omitempty" mapstructure:"event"`
	From   string `json:"from" mapstructure:"from"`
	To     string `json:"to" mapstructure:"to"`
	Branch *bool  `json:"branch,omitempty" mapstructure:"branch"`
	Action string `json:"action,omitempty" mapstructure:"action"`
}
