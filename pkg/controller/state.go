package controller

// State is a phase of the analysis cycle.
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() (name string) {
	switch s {
	case Idle:
		name = "idle"
	case Validating:
		name = "validating"
	case Submitting:
		name = "submitting"
	case Succeeded:
		name = "succeeded"
	case Failed:
		name = "failed"
	default:
		name = "unknown"
	}
	return name
}
