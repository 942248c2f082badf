package engine

import "fmt"

// State is the phase a run is in.
type State int

const (
	NotStarted State = iota
	RunningSetup
	RunningTasks
	RunningTeardown
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case RunningSetup:
		return "RunningSetup"
	case RunningTasks:
		return "RunningTasks"
	case RunningTeardown:
		return "RunningTeardown"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var transitions = map[State][]State{
	NotStarted:      {RunningSetup},
	RunningSetup:    {RunningTasks, RunningTeardown},
	RunningTasks:    {RunningTeardown},
	RunningTeardown: {Completed, Failed},
}

func isAllowedTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
