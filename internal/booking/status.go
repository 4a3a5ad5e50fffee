package booking

import "fmt"

type Status string

const (
	StatusInquiry   Status = "Inquiry"
	StatusPending   Status = "Pending" // legacy alias of Inquiry, still present on old rows
	StatusRequested Status = "Requested"
	StatusConfirmed Status = "Confirmed"
	StatusBooked    Status = "Booked"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// ReasonInvalidTransition is the denial reason for any pair absent from the table.
const ReasonInvalidTransition = "invalid_transition"

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusInquiry, StatusPending, StatusRequested, StatusConfirmed, StatusBooked, StatusRejected, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// canonical folds the legacy Pending alias into Inquiry for transition checks.
func (s Status) canonical() Status {
	if s == StatusPending {
		return StatusInquiry
	}
	return s
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusInquiry:   {StatusRequested: true, StatusRejected: true},
	StatusRequested: {StatusConfirmed: true, StatusInquiry: true, StatusRejected: true},
	StatusConfirmed: {StatusBooked: true, StatusRequested: true, StatusRejected: true},
	StatusBooked:    {StatusCancelled: true, StatusConfirmed: true},
	StatusRejected:  {StatusInquiry: true}, // restore
	StatusCancelled: {StatusInquiry: true}, // restore
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from.canonical()]
	if !ok {
		return false
	}
	return m[to.canonical()]
}

// Validate reports whether the requested transition is allowed. A denied
// transition must never be written to the store.
func Validate(from, to Status) (bool, string) {
	if CanTransition(from, to) {
		return true, ""
	}
	return false, ReasonInvalidTransition
}
