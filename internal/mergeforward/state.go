package mergeforward

// State is a step of the merge-forward workflow.
type State string

// Workflow states. StateDone and StateFailed are terminal.
const (
	StateStart            State = State("start")
	StateClassified       State = State("classified")
	StateFetched          State = State("fetched")
	StateMerged           State = State("merged")
	StateRevisionComputed State = State("revision_computed")
	StateDone             State = State("done")
	StateFailed           State = State("failed")
)

func (state State) String() string {
	return string(state)
}

// Terminal reports whether no further transition is possible.
func (state State) Terminal() bool {
	return state == StateDone || state == StateFailed
}
