package intcode

// State is the execution state of a machine.
type State uint8

const (
	PAUSED  State = iota // not executing; initial state
	RUNNING              // only observable inside the step loop
	BLOCKED              // awaiting input, or awaiting the caller to drain output
	HALTED               // terminal
)

func (s State) String() string {
	switch s {
	case PAUSED:
		return "paused"
	case RUNNING:
		return "running"
	case BLOCKED:
		return "blocked"
	case HALTED:
		return "halted"
	}
	return "unknown"
}
