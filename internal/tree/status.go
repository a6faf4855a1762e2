package tree

// Status enumerates the learning states a path, topic or lesson can be in.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusOverdue    Status = "OVERDUE"
)

// statusCycle is the total transition table for one advance step.
var statusCycle = map[Status]Status{
	StatusNotStarted: StatusInProgress,
	StatusInProgress: StatusCompleted,
	StatusCompleted:  StatusOverdue,
	StatusOverdue:    StatusNotStarted,
}

// Valid reports whether the status is a member of the closed enum.
func (s Status) Valid() bool {
	_, ok := statusCycle[s]
	return ok
}

// Next returns the status one step further along the fixed cycle.
// Unknown values normalise to NOT_STARTED before advancing.
func (s Status) Next() Status {
	next, ok := statusCycle[s]
	if !ok {
		return statusCycle[StatusNotStarted]
	}
	return next
}

// Transition captures a single status change on a lesson.
type Transition struct {
	From Status
	To   Status
}

// EntersCompleted reports whether the transition crosses into COMPLETED.
func (t Transition) EntersCompleted() bool {
	return t.From != StatusCompleted && t.To == StatusCompleted
}

// LeavesCompleted reports whether the transition crosses out of COMPLETED.
func (t Transition) LeavesCompleted() bool {
	return t.From == StatusCompleted && t.To != StatusCompleted
}
