package mines

import "fmt"

type EventKind uint8

const (
	BoardChanged EventKind = iota + 1
	PhaseChanged
	TimeTick
	Restarted
)

func (k EventKind) String() string {
	switch k {
	case BoardChanged:
		return "board"
	case PhaseChanged:
		return "phase"
	case TimeTick:
		return "tick"
	case Restarted:
		return "restart"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is delivered to listeners after the mutation that caused it has
// completed. Cells is set for BoardChanged only.
type Event struct {
	Kind    EventKind
	Phase   Phase
	Elapsed int
	Cells   []Point

	timer *timer
}

type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}
