package choicefsm_test

type State int

const (
	A State = iota
	B
	C
	Parent
	Child
	Grandchild
)

func (s State) String() string {
	return [...]string{"A", "B", "C", "Parent", "Child", "Grandchild"}[s]
}

type Choice string

type Event string

const (
	Go   Event = "GO"
	Ev   Event = "EV"
	Back Event = "BACK"
	Stop Event = "STOP"
)

type counter struct{ n int }

func (c *counter) incr() { c.n++ }

type recorder struct{ calls []string }

func (r *recorder) action(name string) func() {
	return func() { r.calls = append(r.calls, name) }
}

func (r *recorder) decision(name string, result bool) func() bool {
	return func() bool {
		r.calls = append(r.calls, name)
		return result
	}
}
